// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"
	"time"

	"github.com/jacobboykin/kots/internal/entities"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// ClusterInterface exposes cluster-related operations.
type ClusterInterface interface {
	CreateCluster(ctx context.Context, cluster entities.Cluster) (*entities.Cluster, error)
	ListClustersForRepo(ctx context.Context, owner, repo string) ([]entities.Cluster, error)
}

// WatchInterface exposes watch-related operations. SetCurrentVersion
// advances the current-version pointer only when the new sequence is not
// below the stored one; a stale write is a silent no-op.
type WatchInterface interface {
	CreateWatch(ctx context.Context, watch entities.Watch) (*entities.Watch, error)
	GetWatch(ctx context.Context, watchID string) (*entities.Watch, error)
	ListWatchesForCluster(ctx context.Context, clusterID string) ([]entities.Watch, error)
	SetCurrentVersion(ctx context.Context, watchID string, sequence int64, mergedAt *time.Time) error
}

// VersionInterface exposes version-related operations. Pending and past
// versions are separate queryable partitions of one watch's history.
type VersionInterface interface {
	CreateVersion(ctx context.Context, watchID, commitSHA string, pullRequestNumber *int) (*entities.Version, error)
	ListPendingVersions(ctx context.Context, watchID string) ([]entities.Version, error)
	ListPastVersions(ctx context.Context, watchID string) ([]entities.Version, error)
	GetVersionForCommit(ctx context.Context, watchID, commitSHA string) (*entities.Version, error)
	UpdateVersionStatus(ctx context.Context, watchID string, sequence int64, status entities.VersionStatus, mergedAt *time.Time) error
}

// InstallationInterface exposes app-installation bookkeeping.
type InstallationInterface interface {
	CreateInstallation(ctx context.Context, inst entities.Installation) (*entities.Installation, error)
	DeleteInstallation(ctx context.Context, installationID int64) error
}
