package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"classtrack/domain/dto"
	"classtrack/domain/models"
	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type StreamHandler struct {
	pipelineService services.PipelineService
}

func NewStreamHandler(pipelineService services.PipelineService) *StreamHandler {
	return &StreamHandler{
		pipelineService: pipelineService,
	}
}

// ApplyConfig saves a new camera config and restarts the session
func (h *StreamHandler) ApplyConfig(c *fiber.Ctx) error {
	var req dto.StreamConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	err := h.pipelineService.ApplyConfig(c.Context(), models.StreamConfig{
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
		Enabled:  req.Enabled,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidStreamURL) {
			return utils.BadRequestResponse(c, "Invalid stream URL", err)
		}
		if errors.Is(err, services.ErrRecognitionDisabled) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Face recognition is disabled", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to apply config", err)
	}

	return utils.SuccessResponse(c, "Stream config applied", h.pipelineService.Status())
}

// GetConfig returns the stored camera config, credentials redacted
func (h *StreamHandler) GetConfig(c *fiber.Ctx) error {
	config, err := h.pipelineService.GetConfig(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load config", err)
	}
	if config == nil {
		return utils.NotFoundResponse(c, "No stream config saved")
	}

	return utils.SuccessResponse(c, "Stream config", dto.StreamConfigResponse{
		URL:      config.URL,
		Username: config.Username,
		Enabled:  config.Enabled,
	})
}

// Status returns the live session state
func (h *StreamHandler) Status(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Pipeline status", h.pipelineService.Status())
}

// Restart tears down and re-creates the session from the stored config
func (h *StreamHandler) Restart(c *fiber.Ctx) error {
	if err := h.pipelineService.Restart(c.Context()); err != nil {
		if errors.Is(err, services.ErrRecognitionDisabled) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Face recognition is disabled", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Restart failed", err)
	}
	return utils.SuccessResponse(c, "Pipeline restarted", h.pipelineService.Status())
}
