// Package main wires the HTTP server for the deployment version tracker.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jacobboykin/kots/internal/transport/http/server/handlers-fiber"
	"github.com/jacobboykin/kots/internal/usecase"

	"github.com/jacobboykin/kots/config"
	"github.com/jacobboykin/kots/internal/repository"
	"github.com/jacobboykin/kots/internal/scm"
	"github.com/jacobboykin/kots/internal/transport/http/middleware"
	"github.com/jacobboykin/kots/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}

	repo, err := repository.New(ctx, "postgres", log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return
	}
	defer func() {
		_ = repo.OnStop(context.Background())
	}()

	github := scm.New(log, cfg.GitHub)

	timeout := cfg.HTTP.RequestTimeout
	uc := usecase.New(log, ctx, repo, github, timeout)

	serv := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New())
	serv.Use(middleware.RequestLogger(log))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	h := handlers_fiber.NewHandler(log, uc)
	serv.Post("/webhook", h.PostWebhook)
	serv.Post("/clusters", h.PostClusters)
	serv.Post("/watches", h.PostWatches)
	serv.Post("/watches/:watch_id/versions", h.PostWatchVersions)
	serv.Get("/watches/:watch_id", h.GetWatch)

	go func() {
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = serv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
}
