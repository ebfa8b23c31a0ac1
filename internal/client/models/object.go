package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Object is the live state of an on-chain object as returned by the
// ledger service.
type Object struct {
	ID      string
	Version uint64
	Digest  string
	Type    string
	JSON    json.RawMessage
}

type escrowObject struct {
	ID                 UID     `json:"id"`
	Creator            string  `json:"creator"`
	Recipient          string  `json:"recipient"`
	Arbiter            string  `json:"arbiter"`
	Balance            Balance `json:"balance"`
	State              U64     `json:"state"`
	CreatedAtMs        U64     `json:"created_at_ms"`
	TimeoutMs          U64     `json:"timeout_ms"`
	Description        string  `json:"description"`
	CreatorConfirmed   bool    `json:"creator_confirmed"`
	RecipientConfirmed bool    `json:"recipient_confirmed"`
}

type swapObject struct {
	ID                UID        `json:"id"`
	Creator           string     `json:"creator"`
	Recipient         string     `json:"recipient"`
	Deposit           Balance    `json:"deposit"`
	RequestedAmount   U64        `json:"requested_amount"`
	RequestedObjectID OptionalID `json:"requested_object_id"`
	State             U64        `json:"state"`
	CreatedAtMs       U64        `json:"created_at_ms"`
	TimeoutMs         U64        `json:"timeout_ms"`
	Description       string     `json:"description"`
}

// DecodeDeal turns a live object into a Deal of the given kind. The object
// type must be a well-formed <module>::<Struct> tag of that kind with the
// kind's number of type parameters.
func (s *KindSpec) DecodeDeal(obj Object) (Deal, error) {
	if err := ValidateTypeTag(obj.Type); err != nil {
		return Deal{}, fmt.Errorf("object %s: %w: %q", obj.ID, err, obj.Type)
	}
	suffix := "::" + s.Module + "::" + s.Struct
	if !strings.HasSuffix(TypeTagBase(obj.Type), suffix) {
		return Deal{}, fmt.Errorf("object %s: type %q is not a %s", obj.ID, obj.Type, s.Kind)
	}
	params := ExtractTypeParams(obj.Type)
	if len(params) != s.TypeArity {
		return Deal{}, fmt.Errorf("object %s: %w: want %d type params, got %d",
			obj.ID, ErrMalformedTypeTag, s.TypeArity, len(params))
	}

	var (
		deal Deal
		err  error
	)
	switch s.Kind {
	case KindEscrow:
		deal, err = s.decodeEscrow(obj.JSON)
	case KindSwap:
		deal, err = s.decodeSwap(obj.JSON)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, string(s.Kind))
	}
	if err != nil {
		return Deal{}, fmt.Errorf("object %s: %w", obj.ID, err)
	}

	if deal.ID == "" {
		deal.ID = obj.ID
	}
	deal.ObjectType = obj.Type
	deal.TypeParams = params
	return deal, nil
}

func (s *KindSpec) decodeEscrow(data json.RawMessage) (Deal, error) {
	var o escrowObject
	if err := json.Unmarshal(data, &o); err != nil {
		return Deal{}, fmt.Errorf("decode escrow: %w", err)
	}
	return Deal{
		ID:   string(o.ID),
		Kind: KindEscrow,
		Participants: Participants{
			Creator:   o.Creator,
			Recipient: o.Recipient,
			Arbiter:   o.Arbiter,
		},
		State:       s.StateForCode(uint64(o.State)),
		CreatedAt:   millis(o.CreatedAtMs),
		Timeout:     timeout(o.TimeoutMs),
		Description: o.Description,
		Terms: &EscrowTerms{
			Amount:             amountFromU64(uint64(o.Balance)),
			CreatorConfirmed:   o.CreatorConfirmed,
			RecipientConfirmed: o.RecipientConfirmed,
		},
	}, nil
}

func (s *KindSpec) decodeSwap(data json.RawMessage) (Deal, error) {
	var o swapObject
	if err := json.Unmarshal(data, &o); err != nil {
		return Deal{}, fmt.Errorf("decode swap: %w", err)
	}
	return Deal{
		ID:   string(o.ID),
		Kind: KindSwap,
		Participants: Participants{
			Creator:   o.Creator,
			Recipient: o.Recipient,
		},
		State:       s.StateForCode(uint64(o.State)),
		CreatedAt:   millis(o.CreatedAtMs),
		Timeout:     timeout(o.TimeoutMs),
		Description: o.Description,
		Terms: &SwapTerms{
			DepositAmount:     amountFromU64(uint64(o.Deposit)),
			RequestedAmount:   amountFromU64(uint64(o.RequestedAmount)),
			RequestedObjectID: string(o.RequestedObjectID),
		},
	}, nil
}
