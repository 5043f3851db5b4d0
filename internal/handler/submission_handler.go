package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/service"
	"github.com/skillcam-io/skillcam-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service  service.SubmissionService
	analysis service.AnalysisService
	logger   zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, analysis service.AnalysisService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:  service,
		analysis: analysis,
		logger:   logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Get("/:id/details", h.details)
	router.Patch("/:id/status", middleware.RequireRole(models.RoleTrainer), h.overrideStatus)
	router.Post("/:id/analyze", middleware.RequireRole(models.RoleTrainer), h.analyze)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	submissions, err := h.service.List(c.Context(), caller)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Create(c.Context(), caller, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	submission, err := h.service.Get(c.Context(), caller, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, submission)
}

func (h *SubmissionHandler) details(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	details, err := h.service.Details(c.Context(), caller, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, details)
}

func (h *SubmissionHandler) overrideStatus(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	var payload dto.StatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Status == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "status is required")
	}

	if err := h.service.OverrideStatus(c.Context(), caller, c.Params("id"), payload.Status); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, fiber.Map{"success": true})
}

func (h *SubmissionHandler) analyze(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	evaluation, err := h.analysis.Analyze(c.Context(), caller, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, evaluation)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrEvaluationExists):
		return utils.SendError(c, fiber.StatusConflict, "evaluation already exists for submission")
	case errors.Is(err, service.ErrAnalysisUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "analysis is not available")
	case errors.Is(err, service.ErrNoVideo):
		return utils.SendError(c, fiber.StatusBadRequest, "submission has no video")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
