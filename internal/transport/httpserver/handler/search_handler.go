// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-search-service/internal/app/service"
	"media-search-service/internal/domain"
	"media-search-service/internal/transport/httpserver/dto"
	"media-search-service/internal/validator"
)

// SearchHandler handles title lookup requests.
type SearchHandler struct {
	service   *service.SearchService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, v *validator.Validator, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/:type/:name
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	req := dto.NewLookupRequest(c.Params("type"), c.Params("name"))
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "INVALID_INPUT",
			Details: err,
		})
	}

	media, err := h.service.Search(c.UserContext(), req.MediaType(), req.Name)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if media == nil {
		return c.Status(fiber.StatusNotFound).
			SendString(fmt.Sprintf("Search terms didn't match any %s", req.Type))
	}

	return c.JSON(dto.FromDomainMedia(media))
}

// writeError maps service errors onto responses. Upstream detail stays in
// the logs; callers only learn that the provider failed.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   invalid.Message,
			Code:    "INVALID_INPUT",
			Details: fiber.Map{"value": invalid.Value},
		})
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "upstream provider failed",
			Code:  "UPSTREAM_ERROR",
		})
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Error: "request timed out",
			Code:  "TIMEOUT",
		})
	}

	logger.Error("unexpected lookup error", zap.String("path", c.Path()), zap.Error(err))

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	})
}
