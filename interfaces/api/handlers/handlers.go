package handlers

import (
	"gorm.io/gorm"

	"classtrack/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	AuthService       services.AuthService
	StudentService    services.StudentService
	AttendanceService services.AttendanceService
	PipelineService   services.PipelineService
	CurriculumService services.CurriculumService
	DashboardService  services.DashboardService
	Embedder          services.Embedder
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth       *AuthHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Stream     *StreamHandler
	Curriculum *CurriculumHandler
	Dashboard  *DashboardHandler
	Health     *HealthHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(svcs *Services, db *gorm.DB) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svcs.AuthService),
		Student:    NewStudentHandler(svcs.StudentService),
		Attendance: NewAttendanceHandler(svcs.AttendanceService),
		Stream:     NewStreamHandler(svcs.PipelineService),
		Curriculum: NewCurriculumHandler(svcs.CurriculumService),
		Dashboard:  NewDashboardHandler(svcs.DashboardService),
		Health:     NewHealthHandler(db, svcs.Embedder),
	}
}
