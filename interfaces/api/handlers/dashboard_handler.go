package handlers

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Student returns the authenticated student's overview
func (h *DashboardHandler) Student(c *fiber.Ctx) error {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "User not authenticated")
	}
	if user.StudentID == "" {
		return utils.BadRequestResponse(c, "Account has no student ID", nil)
	}

	dashboard, err := h.dashboardService.StudentDashboard(c.Context(), user.StudentID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard", err)
	}

	return utils.SuccessResponse(c, "Student dashboard", dashboard)
}

// Teacher returns the class-wide overview
func (h *DashboardHandler) Teacher(c *fiber.Ctx) error {
	dashboard, err := h.dashboardService.TeacherDashboard(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard", err)
	}

	return utils.SuccessResponse(c, "Teacher dashboard", dashboard)
}
