package Iservices

import (
	"call-sentinel/internal/domain/entities"
	"context"
)

type IKnowledgeService interface {
	Add(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) (string, error)
	AddBestEffort(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) string
	Search(ctx context.Context, query string, category entities.Category, topK int) ([]entities.ScoredDocument, error)
	Purge(ctx context.Context, category entities.Category) (int64, error)
}

// IEmbedder turns text into a vector. Vectors from different embedders are not comparable.
type IEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Name() string
}
