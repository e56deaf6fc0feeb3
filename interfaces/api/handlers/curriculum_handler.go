package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"classtrack/domain/dto"
	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type CurriculumHandler struct {
	curriculumService services.CurriculumService
}

func NewCurriculumHandler(curriculumService services.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{
		curriculumService: curriculumService,
	}
}

func (h *CurriculumHandler) Create(c *fiber.Ctx) error {
	var req dto.CurriculumRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "User not authenticated")
	}

	curriculum, err := h.curriculumService.Create(c.Context(), user.ID, services.CurriculumInput{
		Date:    req.Date,
		Subject: req.Subject,
		Topics:  req.Topics,
		Notes:   req.Notes,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create curriculum", err)
	}

	return utils.CreatedResponse(c, "Curriculum created", curriculum)
}

func (h *CurriculumHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}

	entries, err := h.curriculumService.List(c.Context(), c.Query("date"), limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list curriculum", err)
	}

	return utils.SuccessResponse(c, "Curriculum", fiber.Map{
		"entries": entries,
	})
}

func (h *CurriculumHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid curriculum ID", err)
	}

	var req dto.CurriculumRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	err = h.curriculumService.Update(c.Context(), id, services.CurriculumInput{
		Date:    req.Date,
		Subject: req.Subject,
		Topics:  req.Topics,
		Notes:   req.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrCurriculumNotFound) {
			return utils.NotFoundResponse(c, "Curriculum not found")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update curriculum", err)
	}

	return utils.SuccessResponse(c, "Curriculum updated", nil)
}
