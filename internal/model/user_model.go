package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Role      Role      `gorm:"type:varchar(20)" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsReviewer reports whether the user may finalize or reject verifications.
func (u *User) IsReviewer() bool {
	return u != nil && u.Role == RoleAdmin
}
