package models

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role names a participant field of a deal.
type Role string

const (
	RoleCreator   Role = "creator"
	RoleRecipient Role = "recipient"
	RoleArbiter   Role = "arbiter"
)

// RoleSet selects which participant fields count during discovery.
type RoleSet map[Role]bool

// AllRoles matches an address in any participant field.
func AllRoles() RoleSet {
	return RoleSet{RoleCreator: true, RoleRecipient: true, RoleArbiter: true}
}

// ParseRoles parses a comma separated list such as "creator,arbiter".
// An empty string or "all" selects every role.
func ParseRoles(s string) (RoleSet, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return AllRoles(), nil
	}
	set := RoleSet{}
	for _, part := range strings.Split(s, ",") {
		r := Role(strings.TrimSpace(part))
		switch r {
		case RoleCreator, RoleRecipient, RoleArbiter:
			set[r] = true
		case "":
		default:
			return nil, &RoleError{Role: string(r)}
		}
	}
	return set, nil
}

type RoleError struct {
	Role string
}

func (e *RoleError) Error() string {
	return "unknown role " + e.Role
}

// Participants holds the role addresses of a deal.
type Participants struct {
	Creator   string
	Recipient string
	Arbiter   string
}

// Has reports whether addr fills one of the selected roles.
func (p Participants) Has(addr string, roles RoleSet) bool {
	if roles[RoleCreator] && SameAddress(p.Creator, addr) {
		return true
	}
	if roles[RoleRecipient] && SameAddress(p.Recipient, addr) {
		return true
	}
	if roles[RoleArbiter] && p.Arbiter != "" && SameAddress(p.Arbiter, addr) {
		return true
	}
	return false
}

// RolesOf lists the roles addr fills.
func (p Participants) RolesOf(addr string) []Role {
	var roles []Role
	if SameAddress(p.Creator, addr) {
		roles = append(roles, RoleCreator)
	}
	if SameAddress(p.Recipient, addr) {
		roles = append(roles, RoleRecipient)
	}
	if p.Arbiter != "" && SameAddress(p.Arbiter, addr) {
		roles = append(roles, RoleArbiter)
	}
	return roles
}

// DealTerms is the kind-specific part of a deal: *EscrowTerms or *SwapTerms.
type DealTerms interface {
	termsKind() Kind
}

type EscrowTerms struct {
	Amount             decimal.Decimal
	CreatorConfirmed   bool
	RecipientConfirmed bool
}

func (*EscrowTerms) termsKind() Kind { return KindEscrow }

type SwapTerms struct {
	DepositAmount     decimal.Decimal
	RequestedAmount   decimal.Decimal
	RequestedObjectID string
}

func (*SwapTerms) termsKind() Kind { return KindSwap }

// Deal is one escrow or swap instance.
type Deal struct {
	ID   string
	Kind Kind
	Participants

	State       State
	CreatedAt   time.Time
	Timeout     time.Duration
	Description string

	// ObjectType is the raw type tag; empty when the deal was rebuilt from
	// events and the event type carried no parameters.
	ObjectType string
	TypeParams []string

	Terms DealTerms
}

// ExpiresAt is zero when the deal has no timeout.
func (d Deal) ExpiresAt() time.Time {
	if d.Timeout <= 0 || d.CreatedAt.IsZero() {
		return time.Time{}
	}
	return d.CreatedAt.Add(d.Timeout)
}

func (d Deal) Expired(now time.Time) bool {
	exp := d.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// DepositType is the first type parameter, the deposited asset.
func (d Deal) DepositType() string {
	if len(d.TypeParams) > 0 {
		return d.TypeParams[0]
	}
	return ""
}

// CounterType is the asset the swap creator asks for.
func (d Deal) CounterType() string {
	if len(d.TypeParams) > 1 {
		return d.TypeParams[1]
	}
	return ""
}

func amountFromU64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// maxTimeoutMs is the longest timeout a time.Duration can hold.
const maxTimeoutMs = math.MaxInt64 / int64(time.Millisecond)

// timeout converts an on-chain timeout in milliseconds. Values too large
// for a time.Duration mean the deal never expires.
func timeout(ms U64) time.Duration {
	if ms == 0 || uint64(ms) > uint64(maxTimeoutMs) {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// millis converts a unix timestamp in milliseconds; zero and values past
// the int64 range give the zero time.
func millis(v U64) time.Time {
	if v == 0 || uint64(v) > math.MaxInt64 {
		return time.Time{}
	}
	return time.UnixMilli(int64(v)).UTC()
}
