// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"

	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Decider carries out one reviewer decision.
type Decider interface {
	Decide(ctx context.Context, runID string, d persist.Decision) error
}

// Applier writes approved fixes to the dataset.
type Applier interface {
	ApplyApproved(ctx context.Context, decisions []persist.Decision) (types.PersistenceResult, error)
}

// Transitioner moves a recorded finding to a new state.
type Transitioner interface {
	Transition(ctx context.Context, runID, key string, to lifecycle.State) error
}

// LedgerDecider applies approvals and edits through the persistence layer
// and records every decision in the ledger. A fix that could not be
// applied leaves the ledger untouched.
type LedgerDecider struct {
	Applier Applier
	Ledger  Transitioner
}

// Decide implements Decider.
func (l LedgerDecider) Decide(ctx context.Context, runID string, d persist.Decision) error {
	key := d.Finding.Key()
	var to lifecycle.State
	switch d.Action {
	case persist.Approve:
		to = lifecycle.ApprovedAndApplied
	case persist.Edit:
		to = lifecycle.EditedAndApplied
	case persist.Skip:
		to = lifecycle.Skipped
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}

	if d.Action != persist.Skip {
		res, err := l.Applier.ApplyApproved(ctx, []persist.Decision{d})
		if err != nil {
			return fmt.Errorf("applying %s: %w", key, err)
		}
		if res.Applied == 0 {
			reason := "not applied"
			if len(res.Failures) > 0 {
				reason = res.Failures[0].Reason
			}
			return fmt.Errorf("applying %s: %s", key, reason)
		}
	}
	return l.Ledger.Transition(ctx, runID, key, to)
}
