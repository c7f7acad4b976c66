package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	repoconstants "call-sentinel/internal/domain/interfaces/repository/constants"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultTopK = 5

// KnowledgeService is the append-only document store with category-scoped similarity search.
type KnowledgeService struct {
	Repository repository.Repository[entities.KnowledgeDocument]
	Embedder   Iservices.IEmbedder
	Logger     *logger.Logger
	Timeout    time.Duration
	Now        func() time.Time
}

func NewKnowledgeService(repo repository.Repository[entities.KnowledgeDocument], embedder Iservices.IEmbedder, logger *logger.Logger) *KnowledgeService {
	return &KnowledgeService{
		Repository: repo,
		Embedder:   embedder,
		Logger:     logger,
		Timeout:    5 * time.Second,
		Now:        time.Now,
	}
}

// Add embeds text and appends it under category.
func (ks *KnowledgeService) Add(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	embedding, err := runBounded(ctx, ks.Timeout, func(ctx context.Context) ([]float64, error) {
		return ks.Embedder.Embed(ctx, text)
	})
	if err != nil {
		return "", fmt.Errorf("embed document: %w", err)
	}

	doc := entities.KnowledgeDocument{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   text,
		Category:  category,
		Metadata:  metadata,
		CreatedAt: ks.Now().UTC(),
		Embedding: embedding,
	}
	_, err = runBounded(ctx, ks.Timeout, func(ctx context.Context) (entities.KnowledgeDocument, error) {
		return ks.Repository.Create(ctx, repoconstants.KNOWLEDGE_COLLECTION, doc)
	})
	if err != nil {
		metrics.KnowledgeWrites.WithLabelValues(string(category), "error").Inc()
		return "", fmt.Errorf("store document: %w", err)
	}
	metrics.KnowledgeWrites.WithLabelValues(string(category), "ok").Inc()
	return doc.ID, nil
}

// AddBestEffort retries a failed write once, then drops it with a warning.
// It returns the document id, or "" when the write was dropped.
func (ks *KnowledgeService) AddBestEffort(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) string {
	id, err := ks.Add(ctx, title, text, category, metadata)
	if err == nil {
		return id
	}
	ks.Logger.Warn(fmt.Sprintf("Knowledge write failed, retrying once: %v", err), logrus.Fields{"category": category})

	id, err = ks.Add(ctx, title, text, category, metadata)
	if err == nil {
		return id
	}
	metrics.KnowledgeWrites.WithLabelValues(string(category), "dropped").Inc()
	ks.Logger.Warn(fmt.Sprintf("Dropping knowledge write after retry: %v", err), logrus.Fields{
		"category":   category,
		"dependency": "knowledge",
	})
	return ""
}

// Search ranks documents by cosine similarity to query. An empty category searches
// everything. Filtering happens in the repository, before any scoring.
func (ks *KnowledgeService) Search(ctx context.Context, query string, category entities.Category, topK int) ([]entities.ScoredDocument, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	docs, err := runBounded(ctx, ks.Timeout, func(ctx context.Context) ([]entities.KnowledgeDocument, error) {
		if category == "" {
			return ks.Repository.FindAll(ctx, repoconstants.KNOWLEDGE_COLLECTION)
		}
		return ks.Repository.FindBy(ctx, repoconstants.KNOWLEDGE_COLLECTION, "category", string(category))
	})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return []entities.ScoredDocument{}, nil
	}

	queryVector, err := runBounded(ctx, ks.Timeout, func(ctx context.Context) ([]float64, error) {
		return ks.Embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]entities.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		score := cosine(queryVector, doc.Embedding)
		if score <= 0 {
			continue
		}
		results = append(results, entities.ScoredDocument{Document: doc, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Purge deletes every document in category.
func (ks *KnowledgeService) Purge(ctx context.Context, category entities.Category) (int64, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return ks.Repository.DeleteBy(ctx, repoconstants.KNOWLEDGE_COLLECTION, "category", string(category))
}
