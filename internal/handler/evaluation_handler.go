package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/service"
	"github.com/skillcam-io/skillcam-api/internal/utils"
)

// EvaluationHandler manages AI evaluation intake and retrieval.
type EvaluationHandler struct {
	evaluations service.EvaluationService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(evaluations service.EvaluationService, submissions service.SubmissionService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		submissions: submissions,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Get("/:submissionId", h.getBySubmission)
	router.Post("", h.create)
}

func (h *EvaluationHandler) getBySubmission(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	submissionID := c.Params("submissionId")

	// Access follows the owning submission.
	if _, err := h.submissions.Get(c.Context(), caller, submissionID); err != nil {
		return h.handleError(c, err)
	}

	evaluation, err := h.evaluations.GetBySubmission(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, evaluation)
}

func (h *EvaluationHandler) create(c *fiber.Ctx) error {
	evaluation, err := h.evaluations.Create(c.Context(), c.Body())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, evaluation)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.Is(err, service.ErrEvaluationExists):
		return utils.SendError(c, fiber.StatusConflict, "evaluation already exists for submission")
	case errors.Is(err, service.ErrEvaluationSchema):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
