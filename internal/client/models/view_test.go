package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	alice = "0xa11ce"
	bob   = "0xb0b"
	carol = "0xca201"
)

func TestParticipants_Has(t *testing.T) {
	p := Participants{Creator: alice, Recipient: bob, Arbiter: carol}

	assert.True(t, p.Has(carol, AllRoles()))
	assert.True(t, p.Has(carol, RoleSet{RoleArbiter: true}))
	assert.False(t, p.Has(carol, RoleSet{RoleCreator: true, RoleRecipient: true}))
	assert.True(t, p.Has("0x000B0B", RoleSet{RoleRecipient: true}))
	assert.Equal(t, []Role{RoleArbiter}, p.RolesOf(carol))
}

func TestParseRoles(t *testing.T) {
	set, err := ParseRoles("creator, arbiter")
	assert.NoError(t, err)
	assert.Equal(t, RoleSet{RoleCreator: true, RoleArbiter: true}, set)

	set, err = ParseRoles("")
	assert.NoError(t, err)
	assert.Equal(t, AllRoles(), set)

	_, err = ParseRoles("creator,judge")
	assert.EqualError(t, err, "unknown role judge")
}

func TestView_AvailableActions(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	escrow := Deal{
		Kind:         KindEscrow,
		Participants: Participants{Creator: alice, Recipient: bob, Arbiter: carol},
		State:        StateActive,
		CreatedAt:    now.Add(-2 * time.Hour),
		Timeout:      time.Hour,
		Terms:        &EscrowTerms{CreatorConfirmed: true},
	}
	swap := Deal{
		Kind:         KindSwap,
		Participants: Participants{Creator: alice, Recipient: bob},
		State:        StatePending,
		Terms:        &SwapTerms{},
	}

	tests := []struct {
		name string
		view View
		addr string
		want []string
	}{
		{"escrow creator already confirmed, expired", View{Deal: escrow, Live: true}, alice,
			[]string{ActionDispute, ActionRefundExpired}},
		{"escrow recipient", View{Deal: escrow, Live: true}, bob,
			[]string{ActionConfirm, ActionDispute}},
		{"escrow arbiter while active", View{Deal: escrow, Live: true}, carol, nil},
		{"escrow arbiter while disputed", View{Deal: withState(escrow, StateDisputed), Live: true}, carol,
			[]string{ActionRelease, ActionRefund}},
		{"terminal escrow creator may destroy", View{Deal: withState(escrow, StateReleased), Live: true}, alice,
			[]string{ActionDestroy}},
		{"destroyed terminal offers nothing", View{Deal: withState(escrow, StateReleased), IsDestroyed: true}, alice, nil},
		{"swap recipient", View{Deal: swap, Live: true}, bob, []string{ActionExecute}},
		{"swap creator", View{Deal: swap, Live: true}, alice, []string{ActionCancel}},
		{"stranger", View{Deal: swap, Live: true}, carol, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.AvailableActions(tt.addr, now))
		})
	}
}

func withState(d Deal, s State) Deal {
	d.State = s
	return d
}

func TestTimeoutAndMillis_Clamp(t *testing.T) {
	assert.Equal(t, 90*time.Second, timeout(90_000))
	assert.Zero(t, timeout(0))
	assert.Zero(t, timeout(U64(maxTimeoutMs)+1))
	assert.Zero(t, timeout(U64(math.MaxUint64)))
	assert.Equal(t, time.Duration(maxTimeoutMs)*time.Millisecond, timeout(U64(maxTimeoutMs)))

	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), millis(1_700_000_000_000))
	assert.True(t, millis(U64(math.MaxInt64)+1).IsZero())
	assert.True(t, millis(U64(math.MaxUint64)).IsZero())
}

func TestSwapCreated_HugeTimeoutNeverExpires(t *testing.T) {
	d := SwapCreated{
		SwapID:      "0x51",
		Creator:     alice,
		Recipient:   bob,
		TimeoutMs:   U64(math.MaxUint64),
		CreatedAtMs: 1_700_000_000_000,
	}.Deal(nil)

	assert.Zero(t, d.Timeout)
	assert.True(t, d.ExpiresAt().IsZero())
	assert.False(t, d.Expired(time.Now()))
}
