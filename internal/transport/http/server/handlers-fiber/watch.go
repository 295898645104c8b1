package handlers_fiber

import (
	"net/http"

	"github.com/jacobboykin/kots/internal/mapper"
	"github.com/jacobboykin/kots/internal/payload"
	"github.com/gofiber/fiber/v2"
)

// PostClusters registers a deployment target.
func (h *Handler) PostClusters(c *fiber.Ctx) error {
	var body payload.CreateClusterRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse(payload.CodeInvalid, "invalid body"))
	}

	cluster, err := h.uc.RegisterCluster(c.Context(), mapper.FromPayloadCluster(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Cluster payload.Cluster `json:"cluster"`
	}{Cluster: mapper.ToPayloadCluster(*cluster)})
}

// PostWatches registers a tracked application instance.
func (h *Handler) PostWatches(c *fiber.Ctx) error {
	var body payload.CreateWatchRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse(payload.CodeInvalid, "invalid body"))
	}

	watch, err := h.uc.RegisterWatch(c.Context(), mapper.FromPayloadWatch(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Watch payload.Watch `json:"watch"`
	}{Watch: mapper.ToPayloadWatch(*watch)})
}

// PostWatchVersions proposes a new deployment version for a watch.
func (h *Handler) PostWatchVersions(c *fiber.Ctx) error {
	var body payload.ProposeVersionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse(payload.CodeInvalid, "invalid body"))
	}

	version, err := h.uc.ProposeVersion(c.Context(), c.Params("watch_id"), body.CommitSHA, body.PullRequestNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Version payload.Version `json:"version"`
	}{Version: mapper.ToPayloadVersion(*version)})
}

// GetWatch returns a watch with its pending and past versions.
func (h *Handler) GetWatch(c *fiber.Ctx) error {
	detail, err := h.uc.WatchStatus(c.Context(), c.Params("watch_id"))
	if err != nil {
		h.log.Errorw("failed to get watch status", "error", err.Error())
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Watch payload.WatchDetail `json:"watch"`
	}{Watch: mapper.ToPayloadWatchDetail(*detail)})
}
