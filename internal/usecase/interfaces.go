package usecase

import (
	"context"

	"github.com/jacobboykin/kots/internal/entities"
)

// WebhookUsecaseInterface abstracts webhook event dispatch for the delivery layer.
type WebhookUsecaseInterface interface {
	HandlePullRequestEvent(ctx context.Context, ev entities.PullRequestEvent) error
	HandleInstallationEvent(ctx context.Context, ev entities.InstallationEvent) error
}

// WatchUsecaseInterface abstracts cluster/watch/version management.
type WatchUsecaseInterface interface {
	RegisterCluster(ctx context.Context, cluster entities.Cluster) (*entities.Cluster, error)
	RegisterWatch(ctx context.Context, watch entities.Watch) (*entities.Watch, error)
	ProposeVersion(ctx context.Context, watchID, commitSHA string, pullRequestNumber *int) (*entities.Version, error)
	WatchStatus(ctx context.Context, watchID string) (*entities.WatchDetail, error)
}
