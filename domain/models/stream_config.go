package models

import (
	"time"

	"github.com/google/uuid"
)

// StreamConfig is the single camera configuration. Exactly one row exists; every
// change invalidates the running stream session.
type StreamConfig struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	URL      string    `gorm:"not null"`
	Username string
	Password string
	Enabled  bool `gorm:"default:false"`

	UpdatedAt time.Time
}

func (StreamConfig) TableName() string {
	return "stream_configs"
}

// Equal compares configs by value. The supervisor restarts the session only when
// the applied config actually differs.
func (c StreamConfig) Equal(other StreamConfig) bool {
	return c.URL == other.URL &&
		c.Username == other.Username &&
		c.Password == other.Password &&
		c.Enabled == other.Enabled
}
