package domain

import (
	"context"
	"fmt"

	"github.com/jacobboykin/kots/internal/entities"
)

// RegisterCluster creates a deployment target, optionally bound to a
// GitOps installation and repository.
func (u *Usecase) RegisterCluster(ctx context.Context, cluster entities.Cluster) (*entities.Cluster, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if cluster.ID == "" || cluster.Name == "" {
		return nil, fmt.Errorf("%w: missing required fields", entities.ErrInvalidArgument)
	}
	if cluster.GitOps != nil {
		if cluster.GitOps.InstallationID == 0 || cluster.GitOps.Owner == "" || cluster.GitOps.Repo == "" {
			return nil, fmt.Errorf("%w: incomplete gitops reference", entities.ErrInvalidArgument)
		}
	}
	res, err := u.repo.CreateCluster(ctx, cluster)
	if err != nil {
		return nil, err
	}
	u.log.Infow("cluster create", "cluster_id", cluster.ID)
	return res, nil
}

// RegisterWatch creates a tracked application instance on a cluster.
func (u *Usecase) RegisterWatch(ctx context.Context, watch entities.Watch) (*entities.Watch, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if watch.ID == "" || watch.ClusterID == "" || watch.Name == "" {
		return nil, fmt.Errorf("%w: missing required fields", entities.ErrInvalidArgument)
	}
	res, err := u.repo.CreateWatch(ctx, watch)
	if err != nil {
		return nil, err
	}
	u.log.Infow("watch create", "watch_id", watch.ID)
	return res, nil
}

// ProposeVersion records a new pending deployment version on a watch.
// The sequence is assigned by the store.
func (u *Usecase) ProposeVersion(ctx context.Context, watchID, commitSHA string, pullRequestNumber *int) (*entities.Version, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if watchID == "" {
		return nil, fmt.Errorf("%w: watch_id is required", entities.ErrInvalidArgument)
	}
	if commitSHA == "" && pullRequestNumber == nil {
		return nil, fmt.Errorf("%w: commit_sha or pull_request_number is required", entities.ErrInvalidArgument)
	}
	return u.repo.CreateVersion(ctx, watchID, commitSHA, pullRequestNumber)
}

// WatchStatus returns a watch with its pending and past versions.
func (u *Usecase) WatchStatus(ctx context.Context, watchID string) (*entities.WatchDetail, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if watchID == "" {
		return nil, fmt.Errorf("%w: watch_id is required", entities.ErrInvalidArgument)
	}

	w, err := u.repo.GetWatch(ctx, watchID)
	if err != nil {
		return nil, err
	}
	pending, err := u.repo.ListPendingVersions(ctx, watchID)
	if err != nil {
		return nil, err
	}
	past, err := u.repo.ListPastVersions(ctx, watchID)
	if err != nil {
		return nil, err
	}

	return &entities.WatchDetail{
		Watch:           *w,
		PendingVersions: pending,
		PastVersions:    past,
	}, nil
}
