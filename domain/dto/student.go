package dto

type StudentUploadEntry struct {
	StudentID string   `json:"student_id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"omitempty,email"`
	Photos    []string `json:"photos" validate:"required,min=1"`
}

type BulkUploadRequest struct {
	Students []StudentUploadEntry `json:"students" validate:"required,min=1,dive"`
}
