package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	Question   string   `json:"question"`
	Options    []string `json:"options,omitempty"`
	Type       string   `json:"type"`
	Difficulty string   `json:"difficulty"`
}

// SkillTest is a generated assessment. Answers is aligned index-for-index
// with Questions and never leaves the server.
type SkillTest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Role      string    `gorm:"type:varchar(255)" json:"role"`
	Questions string    `gorm:"type:jsonb" json:"questions"`
	Answers   string    `gorm:"type:jsonb" json:"-"`
	Fallback  bool      `gorm:"default:false" json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *SkillTest) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *SkillTest) QuestionList() ([]Question, error) {
	var qs []Question
	if t.Questions == "" {
		return qs, nil
	}
	if err := json.Unmarshal([]byte(t.Questions), &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

func (t *SkillTest) AnswerKey() ([]string, error) {
	var key []string
	if t.Answers == "" {
		return key, nil
	}
	if err := json.Unmarshal([]byte(t.Answers), &key); err != nil {
		return nil, fmt.Errorf("decode answer key: %w", err)
	}
	return key, nil
}
