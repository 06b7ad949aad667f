package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type ProfileRepositoryInterface interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, "profile")
	}
	return &profile, nil
}
