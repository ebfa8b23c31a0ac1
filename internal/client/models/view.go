package models

import "time"

// Action names understood by the dispatcher.
const (
	ActionConfirm       = "confirm"
	ActionDispute       = "dispute"
	ActionRelease       = "release"
	ActionRefund        = "refund"
	ActionRefundExpired = "refund_expired"
	ActionExecute       = "execute"
	ActionCancel        = "cancel"
	ActionDestroy       = "destroy"
)

// View is the reconciled representation of one deal: live state when the
// object exists, otherwise a deal rebuilt from its Created event.
type View struct {
	Deal     Deal
	Timeline []Event

	// IsDestroyed is the authoritative deletion signal. It is set when a
	// Destroyed event was observed or the live fetch reported the object
	// gone, which can disagree for a short while after deletion.
	IsDestroyed bool
	Live        bool

	// Inconsistent marks a deleted deal for which no terminal event was
	// found. The state is then whatever the events replay to.
	Inconsistent bool
}

// AvailableActions lists the actions addr may request on the deal at now.
// It only reflects roles and states; the chain enforces the rest.
func (v View) AvailableActions(addr string, now time.Time) []string {
	spec, err := SpecFor(v.Deal.Kind)
	if err != nil {
		return nil
	}
	d := v.Deal
	roles := RoleSet{}
	for _, r := range d.RolesOf(addr) {
		roles[r] = true
	}

	var actions []string
	if spec.IsTerminal(d.State) {
		if roles[RoleCreator] && !v.IsDestroyed && v.Live {
			actions = append(actions, ActionDestroy)
		}
		return actions
	}
	if v.IsDestroyed {
		return nil
	}

	switch d.Kind {
	case KindEscrow:
		terms, _ := d.Terms.(*EscrowTerms)
		if d.State == StateActive {
			if roles[RoleCreator] && (terms == nil || !terms.CreatorConfirmed) ||
				roles[RoleRecipient] && (terms == nil || !terms.RecipientConfirmed) {
				actions = append(actions, ActionConfirm)
			}
			if roles[RoleCreator] || roles[RoleRecipient] {
				actions = append(actions, ActionDispute)
			}
			if roles[RoleCreator] && d.Expired(now) {
				actions = append(actions, ActionRefundExpired)
			}
		}
		if d.State == StateDisputed && roles[RoleArbiter] {
			actions = append(actions, ActionRelease, ActionRefund)
		}
	case KindSwap:
		if roles[RoleRecipient] && !d.Expired(now) {
			actions = append(actions, ActionExecute)
		}
		if roles[RoleCreator] {
			actions = append(actions, ActionCancel)
		}
	}
	return actions
}
