package services

import (
	"context"

	"classtrack/domain/models"
)

// StudentDashboard is the student-facing overview.
type StudentDashboard struct {
	Stats            AttendanceStats           `json:"attendance"`
	RecentRecords    []models.AttendanceRecord `json:"recent_records"`
	RecentCurriculum []models.Curriculum       `json:"curriculum"`
}

// TeacherDashboard is the teacher-facing overview.
type TeacherDashboard struct {
	TotalStudents    int64               `json:"total_students"`
	EnrolledStudents int64               `json:"students_with_face_encoding"`
	Today            TodayAttendance     `json:"today_attendance"`
	RecentCurriculum []models.Curriculum `json:"recent_curriculum"`
	Pipeline         PipelineStatus      `json:"pipeline"`
}

type TodayAttendance struct {
	Total      int64   `json:"total"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Percentage float64 `json:"percentage"`
}

type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID string) (*StudentDashboard, error)
	TeacherDashboard(ctx context.Context) (*TeacherDashboard, error)
}
