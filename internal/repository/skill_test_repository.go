package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type SkillTestRepositoryInterface interface {
	Create(ctx context.Context, t *model.SkillTest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SkillTest, error)
}

type SkillTestRepository struct {
	db *gorm.DB
}

func NewSkillTestRepository(db *gorm.DB) *SkillTestRepository {
	return &SkillTestRepository{db}
}

func (r *SkillTestRepository) Create(ctx context.Context, t *model.SkillTest) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *SkillTestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SkillTest, error) {
	var t model.SkillTest
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "skill test")
	}
	return &t, nil
}
