package serviceimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/infrastructure/redis"
	"classtrack/pkg/logger"
)

const teacherDashboardCacheKey = "teacher_dashboard"

type DashboardServiceImpl struct {
	attendanceRepo    repositories.AttendanceRepository
	studentRepo       repositories.StudentRepository
	faceRepo          repositories.FaceEncodingRepository
	curriculumRepo    repositories.CurriculumRepository
	attendanceService services.AttendanceService
	pipelineService   services.PipelineService
	cache             *redis.Client
}

func NewDashboardService(
	attendanceRepo repositories.AttendanceRepository,
	studentRepo repositories.StudentRepository,
	faceRepo repositories.FaceEncodingRepository,
	curriculumRepo repositories.CurriculumRepository,
	attendanceService services.AttendanceService,
	pipelineService services.PipelineService,
	cache *redis.Client,
) services.DashboardService {
	return &DashboardServiceImpl{
		attendanceRepo:    attendanceRepo,
		studentRepo:       studentRepo,
		faceRepo:          faceRepo,
		curriculumRepo:    curriculumRepo,
		attendanceService: attendanceService,
		pipelineService:   pipelineService,
		cache:             cache,
	}
}

func (s *DashboardServiceImpl) StudentDashboard(ctx context.Context, studentID string) (*services.StudentDashboard, error) {
	records, stats, err := s.attendanceService.StudentAttendance(ctx, studentID, "", "")
	if err != nil {
		return nil, err
	}
	if len(records) > 10 {
		records = records[:10]
	}

	curriculum, err := s.curriculumRepo.List(ctx, "", 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load curriculum: %w", err)
	}

	return &services.StudentDashboard{
		Stats:            stats,
		RecentRecords:    records,
		RecentCurriculum: curriculum,
	}, nil
}

// TeacherDashboard aggregates counts across tables, so the result is cached
// briefly. The pipeline status is always read live.
func (s *DashboardServiceImpl) TeacherDashboard(ctx context.Context) (*services.TeacherDashboard, error) {
	if cached := s.cachedTeacherDashboard(ctx); cached != nil {
		cached.Pipeline = s.pipelineService.Status()
		return cached, nil
	}

	totalStudents, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	enrolled, err := s.faceRepo.CountStudentsWithEncodings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrolled students: %w", err)
	}

	today := s.attendanceService.Today()
	present, err := s.attendanceRepo.CountByDateAndStatus(ctx, today, models.AttendanceStatusPresent)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}
	absent, err := s.attendanceRepo.CountByDateAndStatus(ctx, today, models.AttendanceStatusAbsent)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}

	todayStats := services.TodayAttendance{
		Total:   totalStudents,
		Present: present,
		Absent:  absent,
	}
	if totalStudents > 0 {
		todayStats.Percentage = float64(present) / float64(totalStudents) * 100
	}

	curriculum, err := s.curriculumRepo.List(ctx, "", 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load curriculum: %w", err)
	}

	dashboard := &services.TeacherDashboard{
		TotalStudents:    totalStudents,
		EnrolledStudents: enrolled,
		Today:            todayStats,
		RecentCurriculum: curriculum,
		Pipeline:         s.pipelineService.Status(),
	}

	s.storeTeacherDashboard(ctx, dashboard)

	return dashboard, nil
}

func (s *DashboardServiceImpl) cachedTeacherDashboard(ctx context.Context) *services.TeacherDashboard {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.GetStats(ctx, teacherDashboardCacheKey)
	if err != nil {
		if !redis.IsCacheMiss(err) {
			logger.DB("TeacherDashboard", "stats cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}

	var dashboard services.TeacherDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil
	}
	return &dashboard
}

func (s *DashboardServiceImpl) storeTeacherDashboard(ctx context.Context, dashboard *services.TeacherDashboard) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	if err := s.cache.SetStats(ctx, teacherDashboardCacheKey, payload, 30*time.Second); err != nil {
		logger.DB("TeacherDashboard", "stats cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
