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

// UploadHandler manages the object storage gateway endpoints.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler builds an upload handler instance.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/submission-video", h.uploadVideo)
	router.Post("/submission-video-url", h.signedUploadURL)
	router.Get("/signed-url", h.signedReadURL)
	router.Post("/trainer-attachment", middleware.RequireRole(models.RoleTrainer), h.uploadAttachment)
	router.Post("/profile-avatar", h.uploadAvatar)
	router.Delete("/:bucket/*", h.remove)
}

func (h *UploadHandler) uploadVideo(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	header, err := c.FormFile("video")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "video file is required")
	}
	data, err := readMultipartFile(header)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unreadable file")
	}

	result, err := h.service.UploadSubmissionVideo(c.Context(), caller, header.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

func (h *UploadHandler) uploadAttachment(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	header, err := c.FormFile("attachment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "attachment file is required")
	}
	data, err := readMultipartFile(header)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unreadable file")
	}

	result, err := h.service.UploadTrainerAttachment(c.Context(), caller, header.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

func (h *UploadHandler) uploadAvatar(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file is required")
	}
	data, err := readMultipartFile(header)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unreadable file")
	}

	result, err := h.service.UploadProfileAvatar(c.Context(), caller, header.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

func (h *UploadHandler) signedUploadURL(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	var payload dto.SignedUploadURLRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CreateSignedUploadURL(c.Context(), caller, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

func (h *UploadHandler) signedReadURL(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	bucket := c.Query("bucket")
	path := c.Query("path")
	if bucket == "" || path == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "bucket and path are required")
	}

	result, err := h.service.CreateSignedReadURL(c.Context(), caller, bucket, path)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

func (h *UploadHandler) remove(c *fiber.Ctx) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthenticated")
	}

	bucket := c.Params("bucket")
	path := c.Params("*")
	if path == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "path is required")
	}

	if err := h.service.Delete(c.Context(), caller, bucket, path); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, fiber.Map{"success": true})
}

func (h *UploadHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownBucket):
		return utils.SendError(c, fiber.StatusNotFound, "unknown bucket")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("upload operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
