package handlers_fiber

import (
	"encoding/json"
	"net/http"

	"github.com/jacobboykin/kots/internal/mapper"
	"github.com/jacobboykin/kots/internal/payload"
	"github.com/gofiber/fiber/v2"
)

const eventTypeHeader = "X-GitHub-Event"

// PostWebhook accepts GitHub webhook deliveries. Every classified
// delivery is acknowledged, including intentionally ignored types and
// bodies that fail validation; retry semantics belong to the platform.
func (h *Handler) PostWebhook(c *fiber.Ctx) error {
	eventType := c.Get(eventTypeHeader)

	switch eventType {
	case payload.EventPullRequest:
		return h.handlePullRequest(c)
	case payload.EventInstallation:
		return h.handleInstallation(c)
	case payload.EventInstallationRepositories,
		payload.EventIntegrationInstallation,
		payload.EventIntegrationInstallationRepositories:
		h.log.Debugw("ignoring event type", "event", eventType)
		return ack(c)
	default:
		h.log.Infow("unrecognized event type", "event", eventType)
		return ack(c)
	}
}

func (h *Handler) handlePullRequest(c *fiber.Ctx) error {
	var body payload.PullRequestEvent
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		h.log.Warnw("malformed pull_request payload", "error", err.Error())
		return ack(c)
	}
	if err := body.Validate(); err != nil {
		h.log.Warnw("invalid pull_request payload", "error", err.Error())
		return ack(c)
	}

	if err := h.uc.HandlePullRequestEvent(c.Context(), mapper.FromPayloadPullRequestEvent(body)); err != nil {
		h.log.Errorw("pull_request dispatch failed", "pr_number", body.PullRequest.Number, "error", err.Error())
	}
	return ack(c)
}

func (h *Handler) handleInstallation(c *fiber.Ctx) error {
	var body payload.InstallationEvent
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		h.log.Warnw("malformed installation payload", "error", err.Error())
		return ack(c)
	}
	if err := body.Validate(); err != nil {
		h.log.Warnw("invalid installation payload", "error", err.Error())
		return ack(c)
	}

	if err := h.uc.HandleInstallationEvent(c.Context(), mapper.FromPayloadInstallationEvent(body)); err != nil {
		h.log.Errorw("installation dispatch failed", "installation_id", body.Installation.ID, "error", err.Error())
	}
	return ack(c)
}

func ack(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}
