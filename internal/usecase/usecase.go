package usecase

import (
	"context"
	"time"

	"github.com/jacobboykin/kots/internal/repository"
	"github.com/jacobboykin/kots/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	WebhookUsecaseInterface
	WatchUsecaseInterface
}

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, scm domain.SourceControl, timeout time.Duration) InterfaceUsecase {
	return domain.New(log, ctx, repo, scm, timeout)
}
