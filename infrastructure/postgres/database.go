package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"classtrack/domain/models"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		config.Host, config.User, config.Password, config.DBName, config.Port, config.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Enable pgvector extension for face embeddings
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.FaceEncoding{},
		&models.AttendanceRecord{},
		&models.StreamConfig{},
		&models.Curriculum{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %v", err)
	}

	// Constraints AutoMigrate cannot express. The attendance unique index is
	// what closes the check-then-insert race in RecordAutoMatch, so make sure
	// it exists even on databases migrated by older builds.
	migrations := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_student_date
			ON attendance_records(student_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_face_encodings_student_id
			ON face_encodings(student_id)`,
	}

	for _, sql := range migrations {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration failed: %v", err)
		}
	}

	return nil
}
