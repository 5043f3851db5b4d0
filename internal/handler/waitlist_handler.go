package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/service"
	"github.com/skillcam-io/skillcam-api/internal/utils"
)

// WaitlistHandler manages the public signup endpoint.
type WaitlistHandler struct {
	service service.WaitlistService
	logger  zerolog.Logger
}

// NewWaitlistHandler builds a waitlist handler instance.
func NewWaitlistHandler(service service.WaitlistService, logger zerolog.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		service: service,
		logger:  logger.With().Str("component", "waitlist_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *WaitlistHandler) Register(router fiber.Router) {
	router.Post("/waitlist", h.join)
}

func (h *WaitlistHandler) join(c *fiber.Ctx) error {
	var payload dto.WaitlistJoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Join(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("waitlist signup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if !created {
		return utils.SendJSON(c, fiber.StatusOK, dto.WaitlistJoinResponse{Success: true, AlreadyJoined: true})
	}

	return utils.SendJSON(c, fiber.StatusCreated, dto.WaitlistJoinResponse{Success: true})
}
