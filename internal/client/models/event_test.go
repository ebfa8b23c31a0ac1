package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventName(t *testing.T) {
	assert.Equal(t, "EscrowCreated", EventName("0xp::escrow::EscrowCreated<0x2::sui::SUI>"))
	assert.Equal(t, "SwapExecuted", EventName("0xp::swap::SwapExecuted"))
	assert.Equal(t, "Bare", EventName("Bare"))
}

func TestDecodePayload_EscrowCreated(t *testing.T) {
	raw := json.RawMessage(`{
		"escrow_id": "0xe1",
		"creator": "0xc",
		"recipient": "0xr",
		"arbiter": "0xa",
		"amount": "1500000000",
		"description": "laptop",
		"timeout_ms": "86400000",
		"created_at_ms": 1700000000000
	}`)

	p, err := DecodePayload("EscrowCreated", raw)
	require.NoError(t, err)

	created, ok := p.(EscrowCreated)
	require.True(t, ok)
	assert.Equal(t, "0xe1", created.DealID())
	assert.Equal(t, "1500000000", created.Amount.String())

	d := created.Deal([]string{"0x2::sui::SUI"})
	assert.Equal(t, KindEscrow, d.Kind)
	assert.Equal(t, StateActive, d.State)
	assert.Equal(t, 24*time.Hour, d.Timeout)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), d.CreatedAt)
	assert.Equal(t, "0xa", d.Arbiter)
	assert.Equal(t, "0x2::sui::SUI", d.DepositType())
}

func TestDecodePayload_SwapCreatedOptionForms(t *testing.T) {
	tests := []struct {
		name string
		opt  string
		want string
	}{
		{"null", `null`, ""},
		{"string", `"0xnft"`, "0xnft"},
		{"vec some", `{"vec":["0xnft"]}`, "0xnft"},
		{"vec none", `{"vec":[]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := json.RawMessage(`{"swap_id":"0xs","creator":"0xc","recipient":"0xr",
				"deposit_amount":"10","requested_amount":"20","requested_object_id":` + tt.opt + `,
				"description":"","timeout_ms":"0","created_at_ms":"1"}`)
			p, err := DecodePayload("SwapCreated", raw)
			require.NoError(t, err)
			d := p.(CreatedPayload).Deal(nil)
			terms := d.Terms.(*SwapTerms)
			assert.Equal(t, tt.want, terms.RequestedObjectID)
			assert.Equal(t, "20", terms.RequestedAmount.String())
		})
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	_, err := DecodePayload("SwapExecuted", json.RawMessage(`{"executor":"0x1"}`))
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodePayload("EscrowCreated", json.RawMessage(`{"escrow_id":"0x1","timeout_ms":"soon"}`))
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodePayload("EscrowDestroyed", nil)
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodePayload_UnknownNeverMatchesADeal(t *testing.T) {
	p, err := DecodePayload("PriceUpdated", json.RawMessage(`{"escrow_id":"0x1"}`))
	require.NoError(t, err)
	assert.IsType(t, UnknownPayload{}, p)
	assert.Empty(t, Event{Payload: p}.DealID())
}
