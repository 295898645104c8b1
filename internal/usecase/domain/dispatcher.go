package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobboykin/kots/internal/entities"
)

// HandlePullRequestEvent reconciles one pull_request delivery against
// every tracked version it affects. A failure in one cluster or watch is
// logged and never aborts the siblings; the caller acknowledges the
// delivery regardless.
func (u *Usecase) HandlePullRequestEvent(ctx context.Context, ev entities.PullRequestEvent) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	switch ev.Action {
	case entities.ActionOpened, entities.ActionClosed, entities.ActionReopened:
	default:
		u.log.Debugw("ignoring pull request action", "action", ev.Action, "pr_number", ev.Number)
		return nil
	}

	// Merged is a modifier on the raw action, not an action of its own.
	status := entities.VersionStatus(ev.Action)
	if ev.Merged {
		status = entities.StatusMerged
	}

	clusters, err := u.repo.ListClustersForRepo(ctx, ev.RepoOwner, ev.RepoName)
	if err != nil {
		return fmt.Errorf("resolve clusters: %w", err)
	}
	if len(clusters) == 0 {
		u.log.Debugw("no clusters watch this repository", "owner", ev.RepoOwner, "repo", ev.RepoName)
		return nil
	}

	u.legacyPass(ctx, clusters, ev, status)
	u.commitPass(ctx, clusters, ev, status)
	return nil
}

// legacyPass correlates the pull request to versions created before
// commit tracking existed, by PR number. A watch has at most one such
// version per number, so the scan stops at the first match.
func (u *Usecase) legacyPass(ctx context.Context, clusters []entities.Cluster, ev entities.PullRequestEvent, status entities.VersionStatus) {
	for _, cluster := range clusters {
		watches, err := u.repo.ListWatchesForCluster(ctx, cluster.ID)
		if err != nil {
			u.log.Warnw("failed to list watches", "cluster_id", cluster.ID, "error", err)
			continue
		}
		for i := range watches {
			if err := u.reconcileLegacy(ctx, &watches[i], ev, status); err != nil {
				u.log.Warnw("legacy reconciliation failed",
					"cluster_id", cluster.ID, "watch_id", watches[i].ID, "error", err)
			}
		}
	}
}

func (u *Usecase) reconcileLegacy(ctx context.Context, w *entities.Watch, ev entities.PullRequestEvent, status entities.VersionStatus) error {
	pending, err := u.repo.ListPendingVersions(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("list pending versions: %w", err)
	}
	past, err := u.repo.ListPastVersions(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("list past versions: %w", err)
	}

	v := matchByLegacyNumber(pending, past, ev.Number)
	if v == nil {
		return nil
	}

	outcome, err := u.applyStatus(ctx, w, *v, status, ev.MergedAt)
	if err != nil {
		return err
	}
	u.log.Infow("legacy version reconciled",
		"watch_id", w.ID, "sequence", v.Sequence, "status", status, "outcome", outcome.String())
	return nil
}

// commitPass correlates the pull request's commits to pending versions
// per watch, for clusters bound to a GitOps installation. Token or fetch
// failures skip the cluster only.
func (u *Usecase) commitPass(ctx context.Context, clusters []entities.Cluster, ev entities.PullRequestEvent, status entities.VersionStatus) {
	for _, cluster := range clusters {
		if cluster.GitOps == nil {
			continue
		}

		token, _, err := u.scm.InstallationToken(ctx, cluster.GitOps.InstallationID)
		if err != nil {
			u.log.Warnw("failed to issue installation token",
				"cluster_id", cluster.ID, "installation_id", cluster.GitOps.InstallationID, "error", err)
			continue
		}

		shas, err := u.scm.ListPullRequestCommits(ctx, token, ev.RepoOwner, ev.RepoName, ev.Number)
		if err != nil {
			u.log.Warnw("failed to list pull request commits",
				"cluster_id", cluster.ID, "pr_number", ev.Number, "error", err)
			continue
		}

		watches, err := u.repo.ListWatchesForCluster(ctx, cluster.ID)
		if err != nil {
			u.log.Warnw("failed to list watches", "cluster_id", cluster.ID, "error", err)
			continue
		}

		for i := range watches {
			if err := u.reconcileCommits(ctx, &watches[i], shas, status, ev.MergedAt); err != nil {
				u.log.Warnw("commit reconciliation failed",
					"cluster_id", cluster.ID, "watch_id", watches[i].ID, "error", err)
			}
		}
	}
}

// reconcileCommits folds over the commit list in API order. Once a merge
// turns out stale for this watch, every later commit in the same scan is
// stale as well, so the fold stops there.
func (u *Usecase) reconcileCommits(ctx context.Context, w *entities.Watch, shas []string, status entities.VersionStatus, mergedAt *time.Time) error {
	for _, sha := range shas {
		v, err := u.repo.GetVersionForCommit(ctx, w.ID, sha)
		if err != nil {
			if errors.Is(err, entities.ErrVersionNotFound) {
				continue
			}
			return fmt.Errorf("get version for commit %s: %w", sha, err)
		}

		outcome, err := u.applyStatus(ctx, w, *v, status, mergedAt)
		if err != nil {
			return err
		}
		if outcome == OutcomeSkippedStale {
			u.log.Infow("stale merge skipped, stopping watch scan",
				"watch_id", w.ID, "sequence", v.Sequence, "commit_sha", sha)
			return nil
		}
	}
	return nil
}
