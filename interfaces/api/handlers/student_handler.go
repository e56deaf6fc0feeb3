package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"classtrack/domain/dto"
	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type StudentHandler struct {
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

// BulkUpload enrolls a batch of students with their photos
func (h *StudentHandler) BulkUpload(c *fiber.Ctx) error {
	var req dto.BulkUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	uploads := make([]services.StudentUpload, 0, len(req.Students))
	for _, s := range req.Students {
		uploads = append(uploads, services.StudentUpload{
			StudentID: s.StudentID,
			Name:      s.Name,
			Email:     s.Email,
			Photos:    s.Photos,
		})
	}

	results, err := h.studentService.BulkUpload(c.Context(), uploads)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Bulk upload failed", err)
	}

	return utils.SuccessResponse(c, "Bulk upload processed", fiber.Map{
		"results": results,
	})
}

// List returns a page of students with enrollment state
func (h *StudentHandler) List(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}

	students, total, err := h.studentService.ListStudents(c.Context(), offset, limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list students", err)
	}

	return utils.SuccessResponse(c, "Students", fiber.Map{
		"students": students,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}

// EnrollPhoto adds reference embeddings from one uploaded photo
func (h *StudentHandler) EnrollPhoto(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if studentID == "" {
		return utils.BadRequestResponse(c, "Missing student ID", nil)
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return utils.BadRequestResponse(c, "Missing photo file", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequestResponse(c, "Failed to open photo", err)
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read photo", err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	count, err := h.studentService.EnrollPhoto(c.Context(), studentID, imageData, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFaceFound):
			return utils.BadRequestResponse(c, "No face detected in photo", err)
		case errors.Is(err, services.ErrInvalidEmbedding):
			return utils.BadRequestResponse(c, "Embedding dimensionality mismatch", err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment failed", err)
		}
	}

	return utils.SuccessResponse(c, "Photo enrolled", fiber.Map{
		"student_id":       studentID,
		"embeddings_added": count,
	})
}
