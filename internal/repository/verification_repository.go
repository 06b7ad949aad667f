package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/model"
)

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *model.Verification) error
	Save(ctx context.Context, v *model.Verification) error
	LatestByUser(ctx context.Context, userID uuid.UUID) (*model.Verification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Verification, int64, error)
	// SaveWithProfile writes the verification and the profile's tag and
	// rating atomically.
	SaveWithProfile(ctx context.Context, v *model.Verification, profile *model.Profile) error
}

// VerificationRepository keeps every attempt; "current" is always the most
// recent row by created_at.
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db}
}

func (r *VerificationRepository) Create(ctx context.Context, v *model.Verification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VerificationRepository) Save(ctx context.Context, v *model.Verification) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *VerificationRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*model.Verification, error) {
	var v model.Verification
	err := r.latestQuery(r.db.WithContext(ctx), userID).First(&v).Error
	if err != nil {
		return nil, notFound(err, "verification")
	}
	return &v, nil
}

func (r *VerificationRepository) latestQuery(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Where("user_id = ?", userID).Order("created_at DESC")
}

func (r *VerificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Verification, int64, error) {
	var (
		items []model.Verification
		total int64
	)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Verification{}).Where("user_id = ?", userID)
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count verifications: %w", err)
	}
	err := base().Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list verifications: %w", err)
	}
	return items, total, nil
}

func (r *VerificationRepository) SaveWithProfile(ctx context.Context, v *model.Verification, profile *model.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveWithProfile(tx, v, profile)
	})
}

func saveWithProfile(tx *gorm.DB, v *model.Verification, profile *model.Profile) error {
	if err := tx.Save(v).Error; err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	err := tx.Model(&model.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"verification_tag": profile.VerificationTag,
			"star_rating":      profile.StarRating,
		}).Error
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
