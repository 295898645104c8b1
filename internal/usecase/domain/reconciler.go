package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobboykin/kots/internal/entities"
)

// ReconcileOutcome reports what a status application did to the watch's
// current-version pointer.
type ReconcileOutcome int

const (
	// OutcomeApplied means the status was written without touching the pointer.
	OutcomeApplied ReconcileOutcome = iota
	// OutcomeAdvanced means the pointer moved to the version's sequence.
	OutcomeAdvanced
	// OutcomeSkippedStale means a merge arrived for a sequence below the
	// current one and the pointer was left alone. An expected race, not
	// an error.
	OutcomeSkippedStale
)

func (o ReconcileOutcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeSkippedStale:
		return "skipped-stale"
	default:
		return "applied"
	}
}

// applyStatus writes the status to the version record and, on merged,
// advances the watch's current version under the monotonic ordering
// guarantee. The watch is mutated on advancement so a caller folding
// over several versions of one watch observes its own moves.
func (u *Usecase) applyStatus(ctx context.Context, w *entities.Watch, v entities.Version, status entities.VersionStatus, mergedAt *time.Time) (ReconcileOutcome, error) {
	if status != entities.StatusMerged {
		mergedAt = nil
	}
	if err := u.repo.UpdateVersionStatus(ctx, w.ID, v.Sequence, status, mergedAt); err != nil {
		return OutcomeApplied, fmt.Errorf("update version status: %w", err)
	}
	if status != entities.StatusMerged {
		return OutcomeApplied, nil
	}

	if w.CurrentSequence != nil && *w.CurrentSequence > v.Sequence {
		return OutcomeSkippedStale, nil
	}

	if err := u.repo.SetCurrentVersion(ctx, w.ID, v.Sequence, mergedAt); err != nil {
		return OutcomeApplied, fmt.Errorf("set current version: %w", err)
	}

	sequence := v.Sequence
	w.CurrentSequence = &sequence
	w.CurrentMergedAt = mergedAt
	u.log.Infow("current version advanced", "watch_id", w.ID, "sequence", sequence)
	return OutcomeAdvanced, nil
}
