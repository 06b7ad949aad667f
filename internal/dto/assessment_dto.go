package dto

import (
	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type GenerateTestRequest struct {
	NumQuestions int `json:"num_questions" validate:"omitempty,gte=1,lte=20"`
}

// AssessmentDTO is the candidate-facing test. The answer key is never part of
// it.
type AssessmentDTO struct {
	TestID    uuid.UUID        `json:"test_id"`
	Role      string           `json:"role"`
	Questions []model.Question `json:"questions"`
}

type GradeDTO struct {
	TestID     uuid.UUID         `json:"test_id"`
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Percentage float64           `json:"percentage"`
	Result     model.TestOutcome `json:"result"`
	Attempt    int               `json:"attempt"`
}
