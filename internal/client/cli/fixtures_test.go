package cli

import (
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/shopspring/decimal"
)

const (
	alice = "0xa11ce"
	bob   = "0xb0b"
	carol = "0xc0c"

	suiType = "0x2::sui::SUI"
	usdType = "0xd0::usd::USD"

	longID = "0x123400000000000000000000000000000000000000000000000000000000cdef"
)

var now = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

func at(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(name, digest, ts string) models.Event {
	return models.Event{
		ID:        models.EventID{TxDigest: digest, EventSeq: "0"},
		Name:      name,
		Timestamp: at(ts),
	}
}

// liveEscrow is an active escrow alice created for bob with carol as
// arbiter; alice has already confirmed.
func liveEscrow() *models.View {
	return &models.View{
		Deal: models.Deal{
			ID:           "0xe1",
			Kind:         models.KindEscrow,
			Participants: models.Participants{Creator: alice, Recipient: bob, Arbiter: carol},
			State:        models.StateActive,
			CreatedAt:    at("2026-03-01 10:00:00"),
			Timeout:      48 * time.Hour,
			Description:  "laptop",
			TypeParams:   []string{suiType},
			Terms:        &models.EscrowTerms{Amount: decimal.NewFromInt(1_500_000_000), CreatorConfirmed: true},
		},
		Timeline: []models.Event{
			ev("EscrowCreated", "5xq", "2026-03-01 10:00:00"),
			ev("EscrowConfirmed", "9ab", "2026-03-01 10:05:30"),
		},
		Live: true,
	}
}

// executedSwap is a swap bob offered alice, executed and destroyed since.
func executedSwap() *models.View {
	return &models.View{
		Deal: models.Deal{
			ID:           "0x51",
			Kind:         models.KindSwap,
			Participants: models.Participants{Creator: bob, Recipient: alice},
			State:        models.StateExecuted,
			CreatedAt:    at("2026-02-20 09:00:00"),
			TypeParams:   []string{suiType, usdType},
			Terms: &models.SwapTerms{
				DepositAmount:   decimal.NewFromInt(2_000_000_000),
				RequestedAmount: decimal.NewFromInt(250),
			},
		},
		Timeline: []models.Event{
			ev("SwapCreated", "a1", "2026-02-20 09:00:00"),
			ev("SwapExecuted", "b2", "2026-02-21 11:15:00"),
			ev("SwapDestroyed", "c3", "2026-02-21 11:20:00"),
		},
		IsDestroyed: true,
	}
}

// orphanSwap is gone from chain without a terminal event.
func orphanSwap() *models.View {
	return &models.View{
		Deal: models.Deal{
			ID:           longID,
			Kind:         models.KindSwap,
			Participants: models.Participants{Creator: alice, Recipient: carol},
			State:        models.StatePending,
			CreatedAt:    at("2026-02-27 08:00:00"),
			Timeout:      24 * time.Hour,
			Terms: &models.SwapTerms{
				DepositAmount:     decimal.NewFromInt(5),
				RequestedObjectID: "0xabc",
			},
		},
		IsDestroyed:  true,
		Inconsistent: true,
	}
}
