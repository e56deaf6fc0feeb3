package dto

type CurriculumRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Subject string `json:"subject" validate:"required"`
	Topics  string `json:"topics" validate:"required"`
	Notes   string `json:"notes"`
}
