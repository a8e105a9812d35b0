package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-search-service/internal/app/service"
	"media-search-service/internal/transport/httpserver/dto"
)

// Warmer runs one warm-up pass.
type Warmer interface {
	WarmAll(ctx context.Context) []service.WarmResult
}

// AdminHandler handles operational requests.
type AdminHandler struct {
	warmer Warmer
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. warmer may be nil when no
// warm-up titles are configured.
func NewAdminHandler(warmer Warmer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		warmer: warmer,
		logger: logger,
	}
}

// Warmup handles POST /api/admin/warmup
func (h *AdminHandler) Warmup(c *fiber.Ctx) error {
	if h.warmer == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "no warm-up titles configured",
			Code:  "WARMUP_DISABLED",
		})
	}

	h.logger.Info("manual warm-up triggered")

	results := h.warmer.WarmAll(c.UserContext())

	return c.JSON(dto.FromWarmResults(results))
}
