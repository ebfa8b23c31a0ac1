package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/client/services"
)

var errUsage = errors.New("usage")

func parseListArgs(args []string) (viewRef, error) {
	ref := viewRef{kinds: models.Kinds, raw: "list all"}
	if len(args) > 2 {
		return ref, fmt.Errorf("%w: list [escrow|swap|all] [roles]", errUsage)
	}

	rolesArg := ""
	if len(args) > 0 {
		if args[0] == "all" {
			args = args[1:]
		} else if k, err := models.ParseKind(args[0]); err == nil {
			ref.kinds = []models.Kind{k}
			ref.raw = "list " + string(k)
			args = args[1:]
		}
	}
	if len(args) > 0 {
		rolesArg = args[0]
	}
	if len(args) > 1 {
		return ref, fmt.Errorf("%w: list [escrow|swap|all] [roles]", errUsage)
	}

	roles, err := models.ParseRoles(rolesArg)
	if err != nil {
		return ref, err
	}
	ref.roles = roles
	if rolesArg != "" {
		ref.raw += " " + rolesArg
	}
	return ref, nil
}

func parseShowArgs(args []string) (viewRef, error) {
	if len(args) != 2 {
		return viewRef{}, fmt.Errorf("%w: show <escrow|swap> <id>", errUsage)
	}
	k, err := models.ParseKind(args[0])
	if err != nil {
		return viewRef{}, err
	}
	return viewRef{kind: k, id: args[1]}, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	ref, err := parseListArgs(args)
	if err != nil {
		return err
	}
	a.current = &ref
	return a.load(ctx, ref)
}

func (a *App) Show(ctx context.Context, args []string) error {
	ref, err := parseShowArgs(args)
	if err != nil {
		return err
	}
	a.current = &ref
	return a.load(ctx, ref)
}

func (a *App) Refresh(ctx context.Context) error {
	if a.current == nil {
		printlnFn("nothing to refresh")
		return nil
	}
	return a.load(ctx, *a.current)
}

// load fetches and prints ref. Results of a request that was superseded by
// a newer one are discarded.
func (a *App) load(ctx context.Context, ref viewRef) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if ref.isShow() {
		a.lists.Clear()
		ctx, ticket := a.details.Begin(ctx, ref.key())
		view, err := a.reconciler.Detail(ctx, ref.kind, ref.id)
		if err != nil {
			return err
		}
		if !a.details.Apply(ticket, view) {
			a.log.Debug(ctx, "discarded stale response", "view", ticket.Key())
			return nil
		}
		renderDetail(a.out, view, a.config.Address, a.now())
		return nil
	}

	a.details.Clear()
	ctx, ticket := a.lists.Begin(ctx, ref.key())
	var all []models.View
	for _, k := range ref.kinds {
		views, err := a.reconciler.ListMine(ctx, services.ListQuery{Kind: k, Address: a.config.Address, Roles: ref.roles})
		if err != nil {
			return err
		}
		all = append(all, views...)
	}
	if !a.lists.Apply(ticket, all) {
		a.log.Debug(ctx, "discarded stale response", "view", ticket.Key())
		return nil
	}
	renderList(a.out, all, a.config.Address, a.now())
	return nil
}

// Do signs and submits an action: do <action> <kind> <id> [args...]. The
// deal is reloaded first so the action is checked against its current
// state and the caller's roles.
func (a *App) Do(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: do <action> <escrow|swap> <id> [args...]", errUsage)
	}
	action := args[0]
	kind, err := models.ParseKind(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	view, err := a.reconciler.Detail(ctx, kind, args[2])
	if err != nil {
		return err
	}

	available := view.AvailableActions(a.config.Address, a.now())
	if !slices.Contains(available, action) {
		if len(available) == 0 {
			return fmt.Errorf("%s is not available on %s %s: no actions in state %s", action, kind, args[2], view.Deal.State)
		}
		return fmt.Errorf("%s is not available on %s %s, try: %s", action, kind, args[2], strings.Join(available, ", "))
	}

	receipt, err := a.dispatcher.Dispatch(ctx, services.Action{
		Kind:       kind,
		Name:       action,
		DealID:     view.Deal.ID,
		TypeParams: view.Deal.TypeParams,
		Args:       args[3:],
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s submitted, digest %s\n", action, receipt.Digest)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if a.metrics == nil {
		printlnFn("metrics are disabled")
		return nil
	}
	var buf bytes.Buffer
	if err := a.metrics.WriteSummary(&buf); err != nil {
		return err
	}
	if buf.Len() == 0 {
		fmt.Fprintln(a.out, "no requests yet")
		return nil
	}
	_, err := buf.WriteTo(a.out)
	return err
}

func (a *App) Whoami(ctx context.Context) error {
	fmt.Fprintf(a.out, "address: %s\npackage: %s\nnode:    %s (grpc %s)\n",
		a.config.Address, a.config.PackageID, a.config.RPCURL, a.config.GRPCAddr)
	return nil
}

// affects reports whether inv touches the deals shown by ref.
func (ref viewRef) affects(inv services.Invalidation) bool {
	if ref.isShow() {
		return ref.kind == inv.Kind && models.SameAddress(ref.id, inv.DealID)
	}
	return slices.Contains(ref.kinds, inv.Kind)
}

// drainInvalidations consumes pending invalidations and reloads the
// current view once if any of them touched it.
func (a *App) drainInvalidations(ctx context.Context) {
	if a.dispatcher == nil {
		return
	}
	stale := false
	for {
		select {
		case inv := <-a.dispatcher.Invalidations():
			a.log.Debug(ctx, "deal changed", "kind", inv.Kind, "deal", inv.DealID, "action", inv.Action)
			if a.current != nil && a.current.affects(inv) {
				stale = true
			}
		default:
			if stale {
				if err := a.Refresh(ctx); err != nil {
					printlnFn("error:", err)
				}
			}
			return
		}
	}
}
