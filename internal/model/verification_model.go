package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusVerified VerificationStatus = "VERIFIED"
	StatusRejected VerificationStatus = "REJECTED"
)

// Recommendation is the structured verdict synthesized from the analyses.
type Recommendation struct {
	StarRating      float64           `json:"star_rating"`
	Strengths       []string          `json:"strengths"`
	Weaknesses      []string          `json:"weaknesses"`
	RecommendedTags []VerificationTag `json:"recommended_tags"`
}

// Verification is one skill-verification attempt. Rows are never deleted;
// the current attempt is the most recent by created_at.
type Verification struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ResumeAnalysis string    `gorm:"type:text" json:"resume_analysis"`
	GithubAnalysis string    `gorm:"type:text" json:"github_analysis"`
	// Exactly one of Recommendation, RecommendationError and
	// RecommendationNarrative is set once an analysis has run.
	Recommendation          *string            `gorm:"type:jsonb" json:"-"`
	RecommendationError     string             `gorm:"type:text" json:"-"`
	RecommendationNarrative string             `gorm:"type:text" json:"-"`
	Status                  VerificationStatus `gorm:"type:varchar(20);index;default:PENDING" json:"status"`
	CreatedAt               time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = StatusPending
	}
	return nil
}

func (v *Verification) SetRecommendation(r Recommendation) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	s := string(b)
	v.Recommendation = &s
	v.RecommendationError = ""
	v.RecommendationNarrative = ""
	return nil
}

func (v *Verification) SetRecommendationError(reason string) {
	v.Recommendation = nil
	v.RecommendationError = reason
	v.RecommendationNarrative = ""
}

func (v *Verification) SetRecommendationNarrative(text string) {
	v.Recommendation = nil
	v.RecommendationError = ""
	v.RecommendationNarrative = text
}

// RecommendationValue decodes the stored structured recommendation. It returns
// nil when the last analysis produced an error or narrative text instead.
func (v *Verification) RecommendationValue() (*Recommendation, error) {
	if v.Recommendation == nil || *v.Recommendation == "" {
		return nil, nil
	}
	var r Recommendation
	if err := json.Unmarshal([]byte(*v.Recommendation), &r); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}
	return &r, nil
}

// RecommendationText renders whatever the last analysis left behind, for use
// as prompt context.
func (v *Verification) RecommendationText() string {
	switch {
	case v.Recommendation != nil && *v.Recommendation != "":
		return *v.Recommendation
	case v.RecommendationNarrative != "":
		return v.RecommendationNarrative
	case v.RecommendationError != "":
		b, _ := json.Marshal(map[string]string{"error": v.RecommendationError})
		return string(b)
	}
	return ""
}
