package entities

import (
	"strings"
	"time"
	"unicode"
)

const (
	SourceManual         = "manual"
	SourceManualOverride = "manual_override"
	SourceInterrogation  = "interrogation"
)

// ReputationRecord is the persisted judgment about one phone number.
type ReputationRecord struct {
	PhoneNumber string    `json:"phone_number"`
	Normalized  string    `json:"normalized"`
	IsSpam      bool      `json:"is_spam"`
	Confidence  float64   `json:"confidence"`
	ReportCount int       `json:"report_count"`
	LastSeen    time.Time `json:"last_seen"`
	Source      string    `json:"source"`
}

// ReputationReport is one observation about a number fed to the reputation store.
type ReputationReport struct {
	PhoneNumber string  `json:"phone_number" yaml:"phone_number" validate:"required,min=3"`
	Confidence  float64 `json:"confidence_score" yaml:"confidence" validate:"gte=0,lte=1"`
	Source      string  `json:"source" yaml:"source"`
	IsSpam      *bool   `json:"is_spam,omitempty" yaml:"is_spam,omitempty"`
	ReportCount int     `json:"-" yaml:"reports"`
}

// Spam reports the is-spam flag, which defaults to true.
func (r ReputationReport) Spam() bool {
	return r.IsSpam == nil || *r.IsSpam
}

// NormalizeNumber strips every non-digit so provider formatting never causes a miss.
func NormalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
