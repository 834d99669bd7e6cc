// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lifecycle defines the states a finding moves through from
// proposal to a terminal decision, and the transitions between them.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// State is a finding's position in its lifecycle.
type State string

const (
	Proposed           State = "PROPOSED"
	Consolidated       State = "CONSOLIDATED"
	Conflicted         State = "CONFLICTED"
	Resolved           State = "RESOLVED"
	AutoApplied        State = "AUTO_APPLIED"
	PendingApproval    State = "PENDING_APPROVAL"
	Reported           State = "REPORTED"
	ApprovedAndApplied State = "APPROVED_AND_APPLIED"
	Skipped            State = "SKIPPED"
	EditedAndApplied   State = "EDITED_AND_APPLIED"
)

// ErrInvalidTransition is returned for a transition the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	Proposed:        {Consolidated, Conflicted},
	Conflicted:      {Resolved},
	Consolidated:    {AutoApplied, PendingApproval, Reported},
	Resolved:        {AutoApplied, PendingApproval, Reported},
	PendingApproval: {ApprovedAndApplied, Skipped, EditedAndApplied},
	Reported:        {ApprovedAndApplied, Skipped, EditedAndApplied},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a move and returns the new state.
func Transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Awaiting reports whether s waits on a human decision.
func (s State) Awaiting() bool {
	return s == PendingApproval || s == Reported
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case Proposed, Consolidated, Conflicted, Resolved, AutoApplied, PendingApproval,
		Reported, ApprovedAndApplied, Skipped, EditedAndApplied:
		return true
	}
	return false
}

// Initial returns the state a consolidated finding enters: CONFLICTED
// when workers disagreed on the value, CONSOLIDATED otherwise.
func Initial(f types.ConsolidatedFinding) State {
	if f.Conflict != nil {
		return Conflicted
	}
	return Consolidated
}

// Triage decides where a consolidated or resolved finding goes next.
// Auto-fixable findings are applied unattended; MEDIUM findings, and HIGH
// findings that carry alternatives but no single value, wait for approval;
// everything else is reported.
func Triage(f types.Finding, th types.Thresholds) State {
	if f.AutoFixable(th) {
		return AutoApplied
	}
	switch th.Level(f.Confidence) {
	case types.LevelMedium:
		return PendingApproval
	case types.LevelHigh:
		if len(f.Alternatives) > 0 {
			return PendingApproval
		}
	}
	return Reported
}

// Path returns the states a consolidated finding passes through up to
// triage, starting at PROPOSED.
func Path(f types.ConsolidatedFinding, th types.Thresholds) []State {
	p := []State{Proposed, Initial(f)}
	if f.Conflict != nil {
		if !f.Conflict.Resolved() {
			return p
		}
		p = append(p, Resolved)
	}
	return append(p, Triage(f.Finding, th))
}
