package domain

import (
	"time"

	"github.com/google/uuid"
)

type EvidenceLevel string

const (
	EvidencePeerReviewed    EvidenceLevel = "peer_reviewed"
	EvidenceProfessionalOrg EvidenceLevel = "professional_org"
	EvidenceAIDiscovered    EvidenceLevel = "ai_discovered"
	EvidenceCommunity       EvidenceLevel = "community"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderAll    = "all"
)

// Standard is a durable, sourced reference value or range for a metric,
// stratified by age band and gender. Discovered rows enter unverified.
type Standard struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	MetricKey    string `gorm:"column:metric_key;type:text;not null;uniqueIndex:idx_standard_stratum,priority:1" json:"metric_key"`
	StandardType string `gorm:"column:standard_type;type:text;not null" json:"standard_type"`
	Category     string `gorm:"type:text;not null;index" json:"category"`

	AgeMin int    `gorm:"column:age_min;not null;uniqueIndex:idx_standard_stratum,priority:3" json:"age_min"`
	AgeMax int    `gorm:"column:age_max;not null;uniqueIndex:idx_standard_stratum,priority:4" json:"age_max"`
	Gender string `gorm:"type:text;not null;uniqueIndex:idx_standard_stratum,priority:2" json:"gender"`

	ValueMin    *float64 `gorm:"column:value_min" json:"value_min,omitempty"`
	ValueMax    *float64 `gorm:"column:value_max" json:"value_max,omitempty"`
	ValueSingle *float64 `gorm:"column:value_single" json:"value_single,omitempty"`
	Unit        string   `gorm:"type:text;not null" json:"unit"`

	Percentile *float64 `gorm:"column:percentile" json:"percentile,omitempty"`
	Level      *string  `gorm:"column:level;type:text" json:"level,omitempty"`

	SourceName        string  `gorm:"column:source_name;type:text;not null" json:"source_name"`
	SourceURL         *string `gorm:"column:source_url;type:text" json:"source_url,omitempty"`
	SourceDescription string  `gorm:"column:source_description;type:text" json:"source_description"`

	ConfidenceScore float64 `gorm:"column:confidence_score;not null" json:"confidence_score"`
	EvidenceLevel   string  `gorm:"column:evidence_level;type:text;not null" json:"evidence_level"`

	VerifiedByAdmin bool `gorm:"column:verified_by_admin;not null;default:false" json:"verified_by_admin"`
	UsageCount      int  `gorm:"column:usage_count;not null;default:0" json:"usage_count"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Standard) TableName() string { return "standard" }

// MatchesAge reports whether an age falls inside the standard's band.
func (s *Standard) MatchesAge(age int) bool {
	return age >= s.AgeMin && age <= s.AgeMax
}
