package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile carries the demographic fields the standards resolver
// stratifies on. Gender is deliberately nullable: enrichment refuses to run
// against a guessed value.
type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Age          int      `gorm:"not null" json:"age"`
	Gender       *string  `gorm:"type:text" json:"gender,omitempty"`
	BodyweightKg *float64 `gorm:"column:bodyweight_kg" json:"bodyweight_kg,omitempty"`
	HeightCm     *float64 `gorm:"column:height_cm" json:"height_cm,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

// HasGender reports whether the profile can be queried against gender-
// stratified standards.
func (p *UserProfile) HasGender() bool {
	return p != nil && p.Gender != nil && *p.Gender != ""
}
