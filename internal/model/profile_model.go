package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationTag is the proficiency level shown on a public profile.
type VerificationTag string

const (
	TagUnverified   VerificationTag = "Unverified"
	TagBeginner     VerificationTag = "Beginner"
	TagIntermediate VerificationTag = "Intermediate"
	TagExpert       VerificationTag = "Expert"
)

func (t VerificationTag) Valid() bool {
	switch t {
	case TagUnverified, TagBeginner, TagIntermediate, TagExpert:
		return true
	}
	return false
}

// Profile is owned by the account layer; the verification pipeline only reads
// the resume, GitHub URL and skills and writes back the tag and rating.
type Profile struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	FullName        string          `gorm:"type:varchar(255)" json:"full_name"`
	Skills          string          `gorm:"type:text" json:"skills"`
	GithubURL       *string         `gorm:"type:varchar(255)" json:"github_url"`
	Resume          *string         `gorm:"type:varchar(512)" json:"resume"` // stored document path
	VerificationTag VerificationTag `gorm:"type:varchar(20);default:Unverified" json:"verification_tag"`
	StarRating      float64         `gorm:"type:decimal(2,1);default:0" json:"star_rating"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VerificationTag == "" {
		p.VerificationTag = TagUnverified
	}
	return nil
}

func (p *Profile) HasResume() bool {
	return p.Resume != nil && strings.TrimSpace(*p.Resume) != ""
}

func (p *Profile) HasGithub() bool {
	return p.GithubURL != nil && strings.TrimSpace(*p.GithubURL) != ""
}

func (p *Profile) Github() string {
	if !p.HasGithub() {
		return ""
	}
	return strings.TrimSpace(*p.GithubURL)
}

// SkillList splits the free-text skills field on commas and newlines.
func (p *Profile) SkillList() []string {
	fields := strings.FieldsFunc(p.Skills, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
