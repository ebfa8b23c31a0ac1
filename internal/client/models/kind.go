// Package models defines deal kinds, their state machines, the tagged event
// payloads emitted by the escrow and swap Move modules, and the reconciled
// view handed to the presentation layer.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a deal contract.
type Kind string

const (
	KindEscrow Kind = "escrow"
	KindSwap   Kind = "swap"
)

// State is a domain state of a deal. Destroyed is not a state, see View.
type State string

const (
	StateActive   State = "active"
	StateDisputed State = "disputed"
	StateReleased State = "released"
	StateRefunded State = "refunded"

	StatePending   State = "pending"
	StateExecuted  State = "executed"
	StateCancelled State = "cancelled"

	StateUnknown State = "unknown"
)

var ErrUnknownKind = errors.New("unknown deal kind")

// KindSpec describes how one contract kind shows up on chain: its Move
// module and struct, event names, and state machine.
type KindSpec struct {
	Kind      Kind
	Module    string
	Struct    string
	TypeArity int
	Initial   State

	Created   string
	Progress  []string
	Executed  string
	Cancelled string
	Destroyed string

	// Transitions lists the allowed forward moves: from -> []to.
	Transitions map[State][]State

	// codes maps the u8 state field of the on-chain object.
	codes map[uint64]State
	// effects maps an event name to the state it moves the deal into.
	effects map[string]State
}

var escrowSpec = &KindSpec{
	Kind:      KindEscrow,
	Module:    "escrow",
	Struct:    "Escrow",
	TypeArity: 1,
	Initial:   StateActive,

	Created:   "EscrowCreated",
	Progress:  []string{"EscrowConfirmed", "EscrowDisputed"},
	Executed:  "EscrowReleased",
	Cancelled: "EscrowRefunded",
	Destroyed: "EscrowDestroyed",

	Transitions: map[State][]State{
		StateActive:   {StateDisputed, StateReleased, StateRefunded},
		StateDisputed: {StateReleased, StateRefunded},
		StateReleased: {},
		StateRefunded: {},
	},
	codes: map[uint64]State{
		0: StateActive,
		1: StateDisputed,
		2: StateReleased,
		3: StateRefunded,
	},
	effects: map[string]State{
		"EscrowDisputed": StateDisputed,
		"EscrowReleased": StateReleased,
		"EscrowRefunded": StateRefunded,
	},
}

var swapSpec = &KindSpec{
	Kind:      KindSwap,
	Module:    "swap",
	Struct:    "Swap",
	TypeArity: 2,
	Initial:   StatePending,

	Created:   "SwapCreated",
	Executed:  "SwapExecuted",
	Cancelled: "SwapCancelled",
	Destroyed: "SwapDestroyed",

	Transitions: map[State][]State{
		StatePending:   {StateExecuted, StateCancelled},
		StateExecuted:  {},
		StateCancelled: {},
	},
	codes: map[uint64]State{
		0: StatePending,
		1: StateExecuted,
		2: StateCancelled,
	},
	effects: map[string]State{
		"SwapExecuted":  StateExecuted,
		"SwapCancelled": StateCancelled,
	},
}

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindEscrow, KindSwap}

// SpecFor returns the descriptor of k.
func SpecFor(k Kind) (*KindSpec, error) {
	switch k {
	case KindEscrow:
		return escrowSpec, nil
	case KindSwap:
		return swapSpec, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := SpecFor(k); err != nil {
		return "", err
	}
	return k, nil
}

// EventNames returns every event name of the kind in lifecycle order:
// Created, progress events, the two terminal events, Destroyed.
func (s *KindSpec) EventNames() []string {
	names := make([]string, 0, len(s.Progress)+4)
	names = append(names, s.Created)
	names = append(names, s.Progress...)
	names = append(names, s.Executed, s.Cancelled, s.Destroyed)
	return names
}

// EventType builds the fully qualified Move event type.
func (s *KindSpec) EventType(pkg, name string) string {
	return fmt.Sprintf("%s::%s::%s", pkg, s.Module, name)
}

// StructType is the object type without type parameters.
func (s *KindSpec) StructType(pkg string) string {
	return fmt.Sprintf("%s::%s::%s", pkg, s.Module, s.Struct)
}

// StateForCode maps the on-chain u8 state field.
func (s *KindSpec) StateForCode(code uint64) State {
	if st, ok := s.codes[code]; ok {
		return st
	}
	return StateUnknown
}

// StateForEvent reports the state an event moves a deal into, if any.
func (s *KindSpec) StateForEvent(name string) (State, bool) {
	st, ok := s.effects[name]
	return st, ok
}

// IsTerminal reports whether no further domain transition exists from st.
func (s *KindSpec) IsTerminal(st State) bool {
	next, ok := s.Transitions[st]
	return ok && len(next) == 0
}

// CanTransition reports whether from -> to is a forward move of the kind.
func (s *KindSpec) CanTransition(from, to State) bool {
	for _, st := range s.Transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

// Replay folds a timeline through the state machine starting at the
// initial state. Events that would not advance the state are skipped and
// counted.
func (s *KindSpec) Replay(timeline []Event) (State, int) {
	state := s.Initial
	skipped := 0
	for _, ev := range timeline {
		to, ok := s.StateForEvent(ev.Name)
		if !ok {
			continue
		}
		if !s.CanTransition(state, to) {
			skipped++
			continue
		}
		state = to
	}
	return state, skipped
}
