package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/client"
	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/shopspring/decimal"
)

const (
	testPkg = "0xpkg"

	alice = "0xa11ce"
	bob   = "0xb0b"
	carol = "0xca201"

	suiType = "0x2::sui::SUI"
	usdType = "0xc0::usd::USD"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// ---- fake event source ----

type fakeEvents struct {
	mu     sync.Mutex
	byType map[string][]models.Event
	errs   map[string]error
	calls  []string
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{byType: map[string][]models.Event{}, errs: map[string]error{}}
}

func (f *fakeEvents) add(evs ...models.Event) {
	for _, ev := range evs {
		key := models.TypeTagBase(ev.Type)
		f.byType[key] = append(f.byType[key], ev)
	}
}

func (f *fakeEvents) FetchAllEvents(ctx context.Context, eventType string, order client.Order) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, models.EventName(eventType))
	if err := f.errs[eventType]; err != nil {
		return nil, err
	}
	evs := append([]models.Event(nil), f.byType[eventType]...)
	if order == client.Descending {
		for i, j := 0, len(evs)-1; i < j; i, j = i+1, j-1 {
			evs[i], evs[j] = evs[j], evs[i]
		}
	}
	return evs, nil
}

func (f *fakeEvents) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// ---- fake object source ----

type fakeObjects struct {
	mu      sync.Mutex
	live    map[string]*models.Object
	failing map[string]error
	err     error

	batches [][]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{live: map[string]*models.Object{}, failing: map[string]error{}}
}

func (f *fakeObjects) lookup(id string) (*models.Object, error) {
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	if obj, ok := f.live[id]; ok {
		return obj, nil
	}
	return nil, &client.DeletedError{ID: id}
}

func (f *fakeObjects) FetchObject(ctx context.Context, id string) (*models.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.lookup(id)
}

func (f *fakeObjects) FetchObjects(ctx context.Context, ids []string) ([]client.ObjectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]client.ObjectResult, len(ids))
	for i, id := range ids {
		obj, err := f.lookup(id)
		out[i] = client.ObjectResult{ID: id, Object: obj, Err: err}
	}
	return out, nil
}

// ---- builders ----

func event(module, name, typeParams string, seq int, at time.Time, payload models.EventPayload) models.Event {
	typ := fmt.Sprintf("%s::%s::%s", testPkg, module, name)
	if typeParams != "" {
		typ += "<" + typeParams + ">"
	}
	return models.Event{
		ID:        models.EventID{TxDigest: fmt.Sprintf("tx-%s-%d", strings.ToLower(name), seq), EventSeq: "0"},
		Type:      typ,
		Name:      name,
		Timestamp: at,
		Payload:   payload,
	}
}

func swapCreated(id, creator, recipient string, at time.Time) models.Event {
	return event("swap", "SwapCreated", suiType+", "+usdType, 0, at, models.SwapCreated{
		SwapID:          id,
		Creator:         creator,
		Recipient:       recipient,
		DepositAmount:   decimal.NewFromInt(100),
		RequestedAmount: decimal.NewFromInt(250),
		Description:     "swap " + id,
		CreatedAtMs:     models.U64(at.UnixMilli()),
	})
}

func swapExecuted(id string, at time.Time) models.Event {
	return event("swap", "SwapExecuted", "", 0, at, models.SwapExecuted{SwapID: id, Executor: bob})
}

func swapCancelled(id string, at time.Time) models.Event {
	return event("swap", "SwapCancelled", "", 0, at, models.SwapCancelled{SwapID: id, By: alice})
}

func swapDestroyed(id string, at time.Time) models.Event {
	return event("swap", "SwapDestroyed", "", 0, at, models.SwapDestroyed{SwapID: id})
}

func escrowCreated(id, creator, recipient, arbiter string, at time.Time) models.Event {
	return event("escrow", "EscrowCreated", suiType, 0, at, models.EscrowCreated{
		EscrowID:    id,
		Creator:     creator,
		Recipient:   recipient,
		Arbiter:     arbiter,
		Amount:      decimal.NewFromInt(5),
		Description: "escrow " + id,
		TimeoutMs:   3600000,
		CreatedAtMs: models.U64(at.UnixMilli()),
	})
}

func escrowEvent(name, id string, at time.Time, payload models.EventPayload) models.Event {
	return event("escrow", name, "", 0, at, payload)
}

func swapObject(id, creator, recipient string, state int) *models.Object {
	return &models.Object{
		ID:      id,
		Version: 4,
		Type:    fmt.Sprintf("%s::swap::Swap<%s, %s>", testPkg, suiType, usdType),
		JSON: []byte(fmt.Sprintf(`{"id": {"id": %q}, "creator": %q, "recipient": %q,
			"deposit": "100", "requested_amount": "250", "requested_object_id": null,
			"state": %d, "created_at_ms": "%d", "timeout_ms": "0", "description": "live"}`,
			id, creator, recipient, state, t0.UnixMilli())),
	}
}

func escrowObject(id, creator, recipient, arbiter string, state int) *models.Object {
	return &models.Object{
		ID:      id,
		Version: 9,
		Type:    fmt.Sprintf("%s::escrow::Escrow<%s>", testPkg, suiType),
		JSON: []byte(fmt.Sprintf(`{"id": %q, "creator": %q, "recipient": %q, "arbiter": %q,
			"balance": "5", "state": %d, "created_at_ms": "%d", "timeout_ms": "3600000",
			"description": "live", "creator_confirmed": false, "recipient_confirmed": false}`,
			id, creator, recipient, arbiter, state, t0.UnixMilli())),
	}
}
