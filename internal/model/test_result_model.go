package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestOutcome string

const (
	OutcomePass TestOutcome = "PASS"
	OutcomeFail TestOutcome = "FAIL"
)

// TestResult is append-only: every submission adds a row.
type TestResult struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	TestID     uuid.UUID   `gorm:"type:uuid;index" json:"test_id"`
	Score      int         `json:"score"`
	Total      int         `json:"total"`
	Percentage float64     `gorm:"type:float" json:"percentage"`
	Result     TestOutcome `gorm:"type:varchar(10)" json:"result"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (r *TestResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
