// Package domain contains application services reconciling source-control
// events against tracked deployment versions.
package domain

import (
	"context"
	"time"

	"github.com/jacobboykin/kots/internal/repository"

	"go.uber.org/zap"
)

// SourceControl abstracts the platform calls the dispatchers need:
// installation-scoped token issue, pull-request commit listing and
// organization member counting.
type SourceControl interface {
	InstallationToken(ctx context.Context, installationID int64) (string, time.Time, error)
	ListPullRequestCommits(ctx context.Context, token, owner, repo string, number int) ([]string, error)
	OrgMembersCount(ctx context.Context, token, org string) (int, error)
}

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx     context.Context
	log     *zap.SugaredLogger
	repo    repository.Repository
	scm     SourceControl
	timeout time.Duration
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	scm SourceControl,
	timeout time.Duration,
) *Usecase {
	return &Usecase{
		ctx:     ctx,
		log:     log,
		repo:    repo,
		scm:     scm,
		timeout: timeout,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
