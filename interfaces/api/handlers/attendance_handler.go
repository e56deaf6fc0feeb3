package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"classtrack/domain/dto"
	"classtrack/domain/models"
	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// Override lets a teacher set a student's attendance for a day
func (h *AttendanceHandler) Override(c *fiber.Ctx) error {
	var req dto.OverrideAttendanceRequest
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

	err = h.attendanceService.Override(c.Context(), req.StudentID, req.Date, models.AttendanceStatus(req.Status), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return utils.BadRequestResponse(c, "Invalid attendance status", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Override failed", err)
	}

	return utils.SuccessResponse(c, "Attendance overridden", fiber.Map{
		"student_id": req.StudentID,
		"date":       req.Date,
		"status":     req.Status,
	})
}

// StudentAttendance returns one student's records and stats
func (h *AttendanceHandler) StudentAttendance(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if studentID == "" {
		return utils.BadRequestResponse(c, "Missing student ID", nil)
	}

	records, stats, err := h.attendanceService.StudentAttendance(c.Context(), studentID, c.Query("from"), c.Query("to"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to query attendance", err)
	}

	return utils.SuccessResponse(c, "Attendance", fiber.Map{
		"records": records,
		"stats":   stats,
	})
}

// MyAttendance returns the authenticated student's own records
func (h *AttendanceHandler) MyAttendance(c *fiber.Ctx) error {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "User not authenticated")
	}
	if user.StudentID == "" {
		return utils.BadRequestResponse(c, "Account has no student ID", nil)
	}

	records, stats, err := h.attendanceService.StudentAttendance(c.Context(), user.StudentID, c.Query("from"), c.Query("to"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to query attendance", err)
	}

	return utils.SuccessResponse(c, "Attendance", fiber.Map{
		"records": records,
		"stats":   stats,
	})
}

// Daily returns all records for one day, defaulting to today
func (h *AttendanceHandler) Daily(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		date = h.attendanceService.Today()
	}

	entries, err := h.attendanceService.DailyAttendance(c.Context(), date)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to query attendance", err)
	}

	return utils.SuccessResponse(c, "Daily attendance", fiber.Map{
		"date":    date,
		"entries": entries,
	})
}
