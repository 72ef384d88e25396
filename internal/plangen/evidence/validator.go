package evidence

import (
	"strings"
	"unicode"

	types "github.com/strivekit/strivekit-backend/internal/domain"
)

// Result is the trust classification for a claimed information source.
type Result struct {
	Reputable       bool
	EvidenceLevel   types.EvidenceLevel
	ConfidenceScore float64
	Reason          string
}

// Tier 1: major standards bodies, public-health organizations and
// peer-review indicators. Long names are substring matched, short acronyms
// whole-word only ("who" must not match "Whole Foods"), case-insensitive.
var tier1Sources = []string{
	"american college of sports medicine",
	"acsm",
	"national strength and conditioning association",
	"nsca",
	"world health organization",
	"who",
	"centers for disease control",
	"cdc",
	"national institutes of health",
	"nih",
	"american heart association",
	"american council on exercise",
	"international society of sports nutrition",
	"issn",
	"cooper institute",
	"pubmed",
	"journal of",
	"medicine & science in sports",
	"british journal of sports medicine",
}

// Tier 2: established fitness-standards resources and named domain experts.
var tier2Sources = []string{
	"exrx",
	"strength level",
	"strengthlevel",
	"examine.com",
	"stronger by science",
	"brad schoenfeld",
	"mike israetel",
	"renaissance periodization",
	"jack daniels",
	"usa triathlon",
	"usa weightlifting",
	"usa track & field",
}

// Validate classifies a source into a trust tier. It is the single gate that
// decides whether a discovered standard is ever persisted. The returned
// confidence can only lower a claimed score, never raise it.
func Validate(sourceName string, claimedLevel types.EvidenceLevel) Result {
	name := strings.ToLower(strings.TrimSpace(sourceName))

	for _, s := range tier1Sources {
		if matchesSource(name, s) {
			level := types.EvidenceProfessionalOrg
			if claimedLevel == types.EvidencePeerReviewed {
				level = types.EvidencePeerReviewed
			}
			return Result{
				Reputable:       true,
				EvidenceLevel:   level,
				ConfidenceScore: 1.0,
				Reason:          "recognized standards body or peer-reviewed source",
			}
		}
	}

	for _, s := range tier2Sources {
		if matchesSource(name, s) {
			return Result{
				Reputable:       true,
				EvidenceLevel:   types.EvidenceProfessionalOrg,
				ConfidenceScore: 0.85,
				Reason:          "established domain expert or standards resource",
			}
		}
	}

	return Result{
		Reputable:       false,
		EvidenceLevel:   types.EvidenceAIDiscovered,
		ConfidenceScore: 0.5,
		Reason:          "requires manual verification",
	}
}

// matchesSource matches multi-word and long terms as substrings, but short
// acronyms only as whole words.
func matchesSource(name, term string) bool {
	if strings.ContainsRune(term, ' ') || len(term) > 5 {
		return strings.Contains(name, term)
	}
	for _, tok := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == term {
			return true
		}
	}
	return false
}
