package entities

import "time"

type Category string

const (
	CategoryCallerProfile Category = "caller_profile"
	CategorySuspectReport Category = "suspect_report"
	CategoryCallRecord    Category = "call_record"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCallerProfile, CategorySuspectReport, CategoryCallRecord:
		return true
	}
	return false
}

type KnowledgeDocument struct {
	ID        string         `json:"id" bson:"_id"`
	Title     string         `json:"title" bson:"title"`
	Content   string         `json:"content" bson:"content"`
	Category  Category       `json:"category" bson:"category"`
	Metadata  map[string]any `json:"metadata" bson:"metadata"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Embedding []float64      `json:"-" bson:"embedding"`
}

type ScoredDocument struct {
	Document KnowledgeDocument `json:"document"`
	Score    float64           `json:"similarity_score"`
}
