package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMalformedPayload = errors.New("malformed event payload")

// EventID identifies an event by transaction digest and sequence number.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

func (id EventID) String() string {
	return id.TxDigest + ":" + id.EventSeq
}

// Event is one immutable state transition record of one deal.
type Event struct {
	ID EventID

	// Type is the fully qualified Move event type, Name its short struct
	// name with type parameters stripped.
	Type string
	Name string

	Sender    string
	Timestamp time.Time
	Payload   EventPayload
}

// DealID is the deal the event belongs to, empty for unknown payloads.
func (e Event) DealID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.DealID()
}

// EventName strips the module path and type parameters from a Move event
// type: "0xp::escrow::EscrowCreated<0x2::sui::SUI>" -> "EscrowCreated".
func EventName(eventType string) string {
	base := TypeTagBase(eventType)
	if i := strings.LastIndex(base, "::"); i >= 0 {
		return base[i+2:]
	}
	return base
}

// EventPayload is the decoded body of an event.
type EventPayload interface {
	DealID() string
}

// CreatedPayload is implemented by creation events, which carry enough to
// rebuild a deal once its object is gone.
type CreatedPayload interface {
	EventPayload
	Parties() Participants
	Deal(typeParams []string) Deal
}

type EscrowCreated struct {
	EscrowID    string          `json:"escrow_id"`
	Creator     string          `json:"creator"`
	Recipient   string          `json:"recipient"`
	Arbiter     string          `json:"arbiter"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	TimeoutMs   U64             `json:"timeout_ms"`
	CreatedAtMs U64             `json:"created_at_ms"`
}

func (p EscrowCreated) DealID() string { return p.EscrowID }

func (p EscrowCreated) Parties() Participants {
	return Participants{Creator: p.Creator, Recipient: p.Recipient, Arbiter: p.Arbiter}
}

func (p EscrowCreated) Deal(typeParams []string) Deal {
	return Deal{
		ID:           p.EscrowID,
		Kind:         KindEscrow,
		Participants: p.Parties(),
		State:        StateActive,
		CreatedAt:    millis(p.CreatedAtMs),
		Timeout:      timeout(p.TimeoutMs),
		Description:  p.Description,
		TypeParams:   typeParams,
		Terms:        &EscrowTerms{Amount: p.Amount},
	}
}

type EscrowConfirmed struct {
	EscrowID string `json:"escrow_id"`
	By       string `json:"by"`
}

func (p EscrowConfirmed) DealID() string { return p.EscrowID }

type EscrowDisputed struct {
	EscrowID string `json:"escrow_id"`
	By       string `json:"by"`
}

func (p EscrowDisputed) DealID() string { return p.EscrowID }

type EscrowReleased struct {
	EscrowID  string          `json:"escrow_id"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

func (p EscrowReleased) DealID() string { return p.EscrowID }

type EscrowRefunded struct {
	EscrowID string          `json:"escrow_id"`
	Creator  string          `json:"creator"`
	Amount   decimal.Decimal `json:"amount"`
}

func (p EscrowRefunded) DealID() string { return p.EscrowID }

type EscrowDestroyed struct {
	EscrowID string `json:"escrow_id"`
}

func (p EscrowDestroyed) DealID() string { return p.EscrowID }

type SwapCreated struct {
	SwapID            string          `json:"swap_id"`
	Creator           string          `json:"creator"`
	Recipient         string          `json:"recipient"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	RequestedObjectID OptionalID      `json:"requested_object_id"`
	Description       string          `json:"description"`
	TimeoutMs         U64             `json:"timeout_ms"`
	CreatedAtMs       U64             `json:"created_at_ms"`
}

func (p SwapCreated) DealID() string { return p.SwapID }

func (p SwapCreated) Parties() Participants {
	return Participants{Creator: p.Creator, Recipient: p.Recipient}
}

func (p SwapCreated) Deal(typeParams []string) Deal {
	return Deal{
		ID:           p.SwapID,
		Kind:         KindSwap,
		Participants: p.Parties(),
		State:        StatePending,
		CreatedAt:    millis(p.CreatedAtMs),
		Timeout:      timeout(p.TimeoutMs),
		Description:  p.Description,
		TypeParams:   typeParams,
		Terms: &SwapTerms{
			DepositAmount:     p.DepositAmount,
			RequestedAmount:   p.RequestedAmount,
			RequestedObjectID: string(p.RequestedObjectID),
		},
	}
}

type SwapExecuted struct {
	SwapID   string `json:"swap_id"`
	Executor string `json:"executor"`
}

func (p SwapExecuted) DealID() string { return p.SwapID }

type SwapCancelled struct {
	SwapID string `json:"swap_id"`
	By     string `json:"by"`
}

func (p SwapCancelled) DealID() string { return p.SwapID }

type SwapDestroyed struct {
	SwapID string `json:"swap_id"`
}

func (p SwapDestroyed) DealID() string { return p.SwapID }

// UnknownPayload keeps the raw body of an event this client does not model.
type UnknownPayload struct {
	Raw json.RawMessage
}

func (UnknownPayload) DealID() string { return "" }

// DecodePayload decodes the parsed JSON body of an event by its short name.
// Known payloads must carry a non-empty deal id.
func DecodePayload(name string, data json.RawMessage) (EventPayload, error) {
	switch name {
	case "EscrowCreated":
		return decodeAs[EscrowCreated](name, data)
	case "EscrowConfirmed":
		return decodeAs[EscrowConfirmed](name, data)
	case "EscrowDisputed":
		return decodeAs[EscrowDisputed](name, data)
	case "EscrowReleased":
		return decodeAs[EscrowReleased](name, data)
	case "EscrowRefunded":
		return decodeAs[EscrowRefunded](name, data)
	case "EscrowDestroyed":
		return decodeAs[EscrowDestroyed](name, data)
	case "SwapCreated":
		return decodeAs[SwapCreated](name, data)
	case "SwapExecuted":
		return decodeAs[SwapExecuted](name, data)
	case "SwapCancelled":
		return decodeAs[SwapCancelled](name, data)
	case "SwapDestroyed":
		return decodeAs[SwapDestroyed](name, data)
	default:
		return UnknownPayload{Raw: data}, nil
	}
}

func decodeAs[T EventPayload](name string, data json.RawMessage) (EventPayload, error) {
	var v T
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty body", ErrMalformedPayload, name)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, name, err)
	}
	if v.DealID() == "" {
		return nil, fmt.Errorf("%w: %s: missing deal id", ErrMalformedPayload, name)
	}
	return v, nil
}
