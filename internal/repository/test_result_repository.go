package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type TestResultRepositoryInterface interface {
	// Record stores a graded attempt. A non-nil v is the verification the
	// attempt resets; it and the profile are written in the same transaction.
	Record(ctx context.Context, r *model.TestResult, v *model.Verification, profile *model.Profile) error
	ListByTest(ctx context.Context, testID uuid.UUID) ([]model.TestResult, error)
}

type TestResultRepository struct {
	db *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{db}
}

func (r *TestResultRepository) Record(ctx context.Context, result *model.TestResult, v *model.Verification, profile *model.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("create test result: %w", err)
		}
		if v == nil {
			return nil
		}
		return saveWithProfile(tx, v, profile)
	})
}

func (r *TestResultRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	return results, nil
}
