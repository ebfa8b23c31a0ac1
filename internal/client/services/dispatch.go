package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/client/signer"
	"github.com/dmitrijs2005/dealwatch/internal/logging"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrActionInFlight = errors.New("action already in flight")
)

// clockObject is the shared system clock passed to time-dependent entry
// functions.
const clockObject = "0x6"

const (
	inFlightTTL       = 5 * time.Minute
	invalidationQueue = 16
)

// Action is a user request to move a deal forward.
type Action struct {
	Kind       models.Kind
	Name       string
	DealID     string
	TypeParams []string
	// Args are the extra arguments the action needs after the deal id,
	// such as the payment coin of a swap.
	Args []string
}

// Invalidation tells views that a deal changed on chain.
type Invalidation struct {
	Kind   models.Kind
	DealID string
	Action string
	Digest string
}

type actionSpec struct {
	function string
	extra    int
	clock    bool
}

var actionTable = map[models.Kind]map[string]actionSpec{
	models.KindEscrow: {
		models.ActionConfirm:       {function: "confirm"},
		models.ActionDispute:       {function: "dispute"},
		models.ActionRelease:       {function: "release"},
		models.ActionRefund:        {function: "refund"},
		models.ActionRefundExpired: {function: "refund_expired", clock: true},
		models.ActionDestroy:       {function: "destroy"},
	},
	models.KindSwap: {
		models.ActionExecute: {function: "execute", extra: 1},
		models.ActionCancel:  {function: "cancel"},
		models.ActionDestroy: {function: "destroy"},
	},
}

// Dispatcher turns actions into Move calls, hands them to the signer and
// announces the changed deal on success. It does not retry.
type Dispatcher struct {
	signer  signer.Signer
	pkg     string
	log     logging.Logger
	metrics *metrics.Registry

	mu       sync.Mutex
	inFlight *ttlcache.Cache[string, string]
	updates  chan Invalidation
}

func NewDispatcher(s signer.Signer, pkg string, log logging.Logger, m *metrics.Registry) *Dispatcher {
	return &Dispatcher{
		signer:  s,
		pkg:     pkg,
		log:     log,
		metrics: m,
		inFlight: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](inFlightTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
		updates: make(chan Invalidation, invalidationQueue),
	}
}

// Invalidations delivers one message per successful dispatch. Messages are
// dropped when nobody drains the channel.
func (d *Dispatcher) Invalidations() <-chan Invalidation {
	return d.updates
}

// BuildCall maps an action onto the entry function that performs it.
func (d *Dispatcher) BuildCall(a Action) (signer.MoveCall, error) {
	spec, err := models.SpecFor(a.Kind)
	if err != nil {
		return signer.MoveCall{}, err
	}
	as, ok := actionTable[a.Kind][a.Name]
	if !ok {
		return signer.MoveCall{}, fmt.Errorf("%w: %s %q", ErrUnknownAction, a.Kind, a.Name)
	}
	if a.DealID == "" {
		return signer.MoveCall{}, fmt.Errorf("%s: missing deal id", a.Name)
	}
	if len(a.TypeParams) != spec.TypeArity {
		return signer.MoveCall{}, fmt.Errorf("%s: want %d type arguments, got %d", a.Name, spec.TypeArity, len(a.TypeParams))
	}
	if len(a.Args) != as.extra {
		return signer.MoveCall{}, fmt.Errorf("%s: want %d extra arguments, got %d", a.Name, as.extra, len(a.Args))
	}

	args := append([]string{a.DealID}, a.Args...)
	if as.clock {
		args = append(args, clockObject)
	}

	return signer.MoveCall{
		Package:  d.pkg,
		Module:   spec.Module,
		Function: as.function,
		TypeArgs: append([]string(nil), a.TypeParams...),
		Args:     args,
	}, nil
}

func (d *Dispatcher) acquire(key, requestID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight.Get(key) != nil {
		return false
	}
	d.inFlight.Set(key, requestID, ttlcache.DefaultTTL)
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight.Delete(key)
}

// Dispatch signs and submits a. A second dispatch of the same action on the
// same deal is refused while the first one is outstanding.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (signer.Receipt, error) {
	call, err := d.BuildCall(a)
	if err != nil {
		return signer.Receipt{}, err
	}

	requestID := uuid.NewString()
	log := d.log.With("request_id", requestID, "kind", a.Kind, "action", a.Name, "deal", a.DealID)

	key := a.DealID + "/" + a.Name
	if !d.acquire(key, requestID) {
		return signer.Receipt{}, fmt.Errorf("%s %s: %w", a.Name, a.DealID, ErrActionInFlight)
	}
	defer d.release(key)

	log.Info(ctx, "dispatching action", "target", call.Target())

	receipt, err := d.signer.SignAndSubmit(ctx, call)
	d.metrics.Dispatch(a.Name, err)
	if err != nil {
		log.Error(ctx, "action failed", "error", err)
		return receipt, err
	}

	log.Info(ctx, "action executed", "digest", receipt.Digest)

	select {
	case d.updates <- Invalidation{Kind: a.Kind, DealID: a.DealID, Action: a.Name, Digest: receipt.Digest}:
	default:
		log.Debug(ctx, "invalidation queue full, dropping")
	}
	return receipt, nil
}
