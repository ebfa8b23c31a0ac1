// Package services contains the client's application services: the
// reconciler that rebuilds deal views from live objects and the event log,
// the action dispatcher, and the single-slot result holder used by the REPL.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/dealwatch/internal/client/client"
	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/logging"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var ErrDealNotFound = errors.New("deal not found")

// EventSource lists every event of one Move event type.
type EventSource interface {
	FetchAllEvents(ctx context.Context, eventType string, order client.Order) ([]models.Event, error)
}

// ObjectSource reads live objects. Deleted objects are reported with an
// error matching client.ErrObjectDeleted.
type ObjectSource interface {
	FetchObject(ctx context.Context, id string) (*models.Object, error)
	FetchObjects(ctx context.Context, ids []string) ([]client.ObjectResult, error)
}

// ListQuery selects the deals of one kind in which Address holds any of
// Roles. An empty role set means every role.
type ListQuery struct {
	Kind    models.Kind
	Address string
	Roles   models.RoleSet
}

// Reconciler answers what state a deal is in and how it got there, for
// deals that are still live as well as for deals whose object is gone.
//
// Contract:
//   - ListMine: every deal of a kind the address takes part in, newest
//     first. Deleted deals get their state from the terminal event sets.
//   - Detail: one deal with its full timeline. A deleted deal is rebuilt
//     from its creation event and the replayed timeline.
type Reconciler interface {
	ListMine(ctx context.Context, q ListQuery) ([]models.View, error)
	Detail(ctx context.Context, kind models.Kind, id string) (*models.View, error)
}

type reconciler struct {
	events  EventSource
	objects ObjectSource
	pkg     string
	log     logging.Logger
	metrics *metrics.Registry
}

// NewReconciler builds a Reconciler for the contracts published in package
// pkg.
func NewReconciler(events EventSource, objects ObjectSource, pkg string, log logging.Logger, m *metrics.Registry) Reconciler {
	return &reconciler{events: events, objects: objects, pkg: pkg, log: log, metrics: m}
}

func (r *reconciler) ListMine(ctx context.Context, q ListQuery) (views []models.View, err error) {
	defer func() { r.metrics.Reconcile("list", err) }()

	spec, err := models.SpecFor(q.Kind)
	if err != nil {
		return nil, err
	}
	roles := q.Roles
	if len(roles) == 0 {
		roles = models.AllRoles()
	}

	created, err := r.events.FetchAllEvents(ctx, spec.EventType(r.pkg, spec.Created), client.Descending)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q.Kind, err)
	}

	var ids []string
	origins := make(map[string]models.Event)
	for _, ev := range created {
		p, ok := ev.Payload.(models.CreatedPayload)
		if !ok || !p.Parties().Has(q.Address, roles) {
			continue
		}
		id := p.DealID()
		if _, seen := origins[canonicalID(id)]; seen {
			continue
		}
		origins[canonicalID(id)] = ev
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	results, err := r.objects.FetchObjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q.Kind, err)
	}

	anyDeleted := false
	for _, res := range results {
		switch {
		case res.Err == nil:
		case errors.Is(res.Err, client.ErrObjectDeleted):
			anyDeleted = true
		default:
			return nil, fmt.Errorf("list %s: %w", q.Kind, res.Err)
		}
	}

	var executed, cancelled map[string]bool
	if anyDeleted {
		executed, cancelled, err = r.terminalSets(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", q.Kind, err)
		}
	}

	views = make([]models.View, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			deal, err := spec.DecodeDeal(*res.Object)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", q.Kind, err)
			}
			views = append(views, models.View{Deal: deal, Live: true})
			continue
		}

		origin := origins[canonicalID(res.ID)]
		deal := origin.Payload.(models.CreatedPayload).Deal(models.ExtractTypeParams(origin.Type))
		view := models.View{IsDestroyed: true}

		switch {
		case executed[canonicalID(res.ID)]:
			deal.State = terminalState(spec, spec.Executed)
		case cancelled[canonicalID(res.ID)]:
			deal.State = terminalState(spec, spec.Cancelled)
		default:
			view.Inconsistent = true
			r.log.Warn(ctx, "deleted deal has no terminal event", "kind", q.Kind, "deal", res.ID)
			r.metrics.Inconsistent(string(q.Kind))
		}
		view.Deal = deal
		views = append(views, view)
	}

	r.log.Info(ctx, "listed deals", "kind", q.Kind, "address", q.Address, "count", len(views))
	return views, nil
}

func terminalState(spec *models.KindSpec, event string) models.State {
	st, _ := spec.StateForEvent(event)
	return st
}

// terminalSets fetches the ids of every executed and every cancelled deal
// of a kind.
func (r *reconciler) terminalSets(ctx context.Context, spec *models.KindSpec) (map[string]bool, map[string]bool, error) {
	var executed, cancelled []models.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		executed, err = r.events.FetchAllEvents(gctx, spec.EventType(r.pkg, spec.Executed), client.Descending)
		return err
	})
	g.Go(func() error {
		var err error
		cancelled, err = r.events.FetchAllEvents(gctx, spec.EventType(r.pkg, spec.Cancelled), client.Descending)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return idSet(executed), idSet(cancelled), nil
}

func idSet(events []models.Event) map[string]bool {
	set := make(map[string]bool, len(events))
	for _, ev := range events {
		if id := ev.DealID(); id != "" {
			set[canonicalID(id)] = true
		}
	}
	return set
}

func canonicalID(id string) string {
	if n, err := models.NormalizeAddress(id); err == nil {
		return n
	}
	return id
}

func (r *reconciler) Detail(ctx context.Context, kind models.Kind, id string) (view *models.View, err error) {
	defer func() { r.metrics.Reconcile("detail", err) }()

	spec, err := models.SpecFor(kind)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s: empty id: %w", kind, ErrDealNotFound)
	}

	names := spec.EventNames()
	perType := make([][]models.Event, len(names))
	var (
		live    *models.Object
		deleted bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			events, err := r.events.FetchAllEvents(gctx, spec.EventType(r.pkg, name), client.Ascending)
			if err != nil {
				return err
			}
			perType[i] = events
			return nil
		})
	}
	g.Go(func() error {
		obj, err := r.objects.FetchObject(gctx, id)
		if errors.Is(err, client.ErrObjectDeleted) {
			deleted = true
			return nil
		}
		live = obj
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, err)
	}

	timeline := buildTimeline(perType, id)
	view = &models.View{Timeline: timeline}
	for _, ev := range timeline {
		if ev.Name == spec.Destroyed {
			view.IsDestroyed = true
		}
	}

	if !deleted {
		deal, err := spec.DecodeDeal(*live)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, id, err)
		}
		view.Deal = deal
		view.Live = true
		return view, nil
	}

	created, ok := findEvent(timeline, spec.Created)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrDealNotFound)
	}

	deal := created.Payload.(models.CreatedPayload).Deal(models.ExtractTypeParams(created.Type))
	state, skipped := spec.Replay(timeline)
	if skipped > 0 {
		r.log.Warn(ctx, "ignored events that would regress the deal", "kind", kind, "deal", id, "skipped", skipped)
	}
	deal.State = state

	view.Deal = deal
	view.IsDestroyed = true
	if !spec.IsTerminal(state) {
		view.Inconsistent = true
		r.log.Warn(ctx, "deleted deal has no terminal event", "kind", kind, "deal", id, "state", state)
		r.metrics.Inconsistent(string(kind))
	}
	return view, nil
}

// buildTimeline keeps the events of deal id, ordered by timestamp. Events
// with equal timestamps keep the order of perType.
func buildTimeline(perType [][]models.Event, id string) []models.Event {
	var timeline []models.Event
	for _, events := range perType {
		for _, ev := range events {
			if models.SameAddress(ev.DealID(), id) {
				timeline = append(timeline, ev)
			}
		}
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp.Before(timeline[j].Timestamp)
	})
	return timeline
}

func findEvent(timeline []models.Event, name string) (models.Event, bool) {
	for _, ev := range timeline {
		if ev.Name == name {
			return ev, true
		}
	}
	return models.Event{}, false
}
