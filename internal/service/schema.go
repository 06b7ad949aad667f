package service

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const recommendationSchema = `{
	"type": "object",
	"required": ["star_rating", "strengths", "weaknesses", "recommended_tags"],
	"properties": {
		"star_rating": {"type": "number", "minimum": 1, "maximum": 5},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"weaknesses": {"type": "array", "items": {"type": "string"}},
		"recommended_tags": {
			"type": "array",
			"items": {"type": "string", "enum": ["Beginner", "Intermediate", "Expert"]}
		}
	}
}`

const assessmentSchema = `{
	"type": "object",
	"required": ["questions", "answers"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question"],
				"properties": {
					"question": {"type": "string", "minLength": 1},
					"options": {"type": "array", "items": {"type": "string"}},
					"type": {"type": "string"},
					"difficulty": {"type": "string"},
					"correct_answer": {"type": "string"}
				}
			}
		},
		"answers": {"type": "array", "items": {"type": "string", "minLength": 1}}
	}
}`

var (
	recommendationLoader = gojsonschema.NewStringLoader(recommendationSchema)
	assessmentLoader     = gojsonschema.NewStringLoader(assessmentSchema)
)

// ValidateRecommendation checks a recommendation object against its schema.
func ValidateRecommendation(doc string) error {
	return validate(recommendationLoader, doc)
}

// ValidateAssessment checks a generated question set against its schema.
func ValidateAssessment(doc string) error {
	return validate(assessmentLoader, doc)
}

func validate(schema gojsonschema.JSONLoader, doc string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
