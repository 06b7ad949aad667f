package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type VerificationDTO struct {
	ID                  uuid.UUID                `json:"id"`
	UserID              uuid.UUID                `json:"user_id"`
	Status              model.VerificationStatus `json:"status"`
	ResumeAnalysis      string                   `json:"resume_analysis"`
	GithubAnalysis      string                   `json:"github_analysis"`
	Recommendation      *model.Recommendation    `json:"recommendation,omitempty"`
	RecommendationError string                   `json:"recommendation_error,omitempty"`
	RecommendationText  string                   `json:"recommendation_text,omitempty"` // narrative final analysis
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

func NewVerificationDTO(v *model.Verification) VerificationDTO {
	out := VerificationDTO{
		ID:                  v.ID,
		UserID:              v.UserID,
		Status:              v.Status,
		ResumeAnalysis:      v.ResumeAnalysis,
		GithubAnalysis:      v.GithubAnalysis,
		RecommendationError: v.RecommendationError,
		RecommendationText:  v.RecommendationNarrative,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
	if rec, err := v.RecommendationValue(); err == nil {
		out.Recommendation = rec
	}
	return out
}

// ReviewDTO is what a reviewer sees before finalizing. Suggestion is derived
// from the recommendation and never applied automatically.
type ReviewDTO struct {
	Verification VerificationDTO `json:"verification"`
	Profile      ProfileDTO      `json:"profile"`
	Suggestion   *Suggestion     `json:"suggestion,omitempty"`
}

type Suggestion struct {
	StarRating float64               `json:"star_rating"`
	Tag        model.VerificationTag `json:"tag"`
}

type ProfileDTO struct {
	UserID          uuid.UUID             `json:"user_id"`
	FullName        string                `json:"full_name"`
	Skills          string                `json:"skills"`
	GithubURL       string                `json:"github_url,omitempty"`
	HasResume       bool                  `json:"has_resume"`
	VerificationTag model.VerificationTag `json:"verification_tag"`
	StarRating      float64               `json:"star_rating"`
}

func NewProfileDTO(p *model.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:          p.UserID,
		FullName:        p.FullName,
		Skills:          p.Skills,
		GithubURL:       p.Github(),
		HasResume:       p.HasResume(),
		VerificationTag: p.VerificationTag,
		StarRating:      p.StarRating,
	}
}

// FinalizeRequest is the reviewer's verdict.
type FinalizeRequest struct {
	StarRating *float64              `json:"star_rating" validate:"required,gte=1,lte=5"`
	Tags       model.VerificationTag `json:"tags" validate:"required,oneof=Unverified Beginner Intermediate Expert"`
}

type HistoryQuery struct {
	Page     int `query:"page" validate:"gte=1"`
	PageSize int `query:"page_size" validate:"gte=1,lte=100"`
}
