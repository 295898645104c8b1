package handlers_fiber

import (
	"errors"
	"net/http"

	"github.com/jacobboykin/kots/internal/entities"
	"github.com/jacobboykin/kots/internal/payload"
	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := payload.CodeInternal
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = payload.CodeInvalid
		msg = err.Error()
	case errors.Is(err, entities.ErrClusterNotFound),
		errors.Is(err, entities.ErrWatchNotFound),
		errors.Is(err, entities.ErrVersionNotFound):
		status = http.StatusNotFound
		code = payload.CodeNotFound
		msg = "resource not found"
	case errors.Is(err, entities.ErrClusterExists):
		status = http.StatusConflict
		code = payload.CodeConflict
		msg = "cluster_id already exists"
	case errors.Is(err, entities.ErrWatchExists):
		status = http.StatusConflict
		code = payload.CodeConflict
		msg = "watch_id already exists"
	default:
		msg = err.Error()
	}

	return c.Status(status).JSON(errorResponse(code, msg))
}

func errorResponse(code payload.ErrorCode, msg string) payload.ErrorResponse {
	return payload.ErrorResponse{Error: payload.ErrorDetail{Code: code, Message: msg}}
}
