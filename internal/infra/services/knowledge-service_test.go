package services

import (
	"context"
	"testing"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/infra/logger"
	infrarepo "call-sentinel/internal/infra/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKnowledge() *KnowledgeService {
	knowledge := NewKnowledgeService(infrarepo.NewMemoryRepository[entities.KnowledgeDocument](), NewTermFrequencyEmbedder(512), logger.NewNopLogger())
	knowledge.Now = fixedClock(noon)
	return knowledge
}

func TestKnowledgeService_EmptyCorpus(t *testing.T) {
	knowledge := newKnowledge()

	results, err := knowledge.Search(context.Background(), "anything at all", "", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestKnowledgeService_CategoryFilter(t *testing.T) {
	knowledge := newKnowledge()
	ctx := context.Background()

	_, err := knowledge.Add(ctx, "profile", "John prefers calls about his dentist appointment", entities.CategoryCallerProfile, nil)
	require.NoError(t, err)
	_, err = knowledge.Add(ctx, "report", "Caller pushed an extended warranty offer for a dentist", entities.CategorySuspectReport, nil)
	require.NoError(t, err)

	profiles, err := knowledge.Search(ctx, "dentist", entities.CategoryCallerProfile, 5)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, entities.CategoryCallerProfile, profiles[0].Document.Category)

	all, err := knowledge.Search(ctx, "dentist", "", 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	history, err := knowledge.Search(ctx, "dentist", entities.CategoryCallRecord, 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestKnowledgeService_RanksBySimilarity(t *testing.T) {
	knowledge := newKnowledge()
	ctx := context.Background()

	for _, text := range []string{
		"weather forecast for the weekend",
		"extended warranty robocall from an auto dealer",
		"warranty claim for a broken dishwasher",
	} {
		_, err := knowledge.Add(ctx, "doc", text, entities.CategoryCallRecord, map[string]any{"source": "test"})
		require.NoError(t, err)
	}

	results, err := knowledge.Search(ctx, "extended warranty robocall", entities.CategoryCallRecord, 0)
	require.NoError(t, err)
	require.Len(t, results, 2, "documents with no overlap score zero and are dropped")
	assert.Equal(t, "extended warranty robocall from an auto dealer", results[0].Document.Content)
	assert.Greater(t, results[0].Score, results[1].Score)

	top, err := knowledge.Search(ctx, "extended warranty robocall", entities.CategoryCallRecord, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestKnowledgeService_RejectsUnknownCategory(t *testing.T) {
	knowledge := newKnowledge()

	_, err := knowledge.Add(context.Background(), "x", "y", entities.Category("suspects"), nil)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = knowledge.Search(context.Background(), "y", entities.Category("suspects"), 5)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestKnowledgeService_PurgeCategory(t *testing.T) {
	knowledge := newKnowledge()
	ctx := context.Background()

	_, err := knowledge.Add(ctx, "a", "warranty scam", entities.CategorySuspectReport, nil)
	require.NoError(t, err)
	_, err = knowledge.Add(ctx, "b", "warranty question", entities.CategoryCallerProfile, nil)
	require.NoError(t, err)

	deleted, err := knowledge.Purge(ctx, entities.CategorySuspectReport)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	all, err := knowledge.Search(ctx, "warranty", "", 5)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entities.CategoryCallerProfile, all[0].Document.Category)
}

func TestKnowledgeService_BestEffortRetriesOnceThenDrops(t *testing.T) {
	repo := &failingRepository{}
	knowledge := NewKnowledgeService(repo, NewTermFrequencyEmbedder(64), logger.NewNopLogger())

	id := knowledge.AddBestEffort(context.Background(), "t", "text", entities.CategorySuspectReport, nil)

	assert.Empty(t, id)
	assert.EqualValues(t, 2, repo.creates.Load())
}

func TestTermFrequencyEmbedder(t *testing.T) {
	embedder := NewTermFrequencyEmbedder(0)
	ctx := context.Background()

	a, err := embedder.Embed(ctx, "Extended warranty, extended!")
	require.NoError(t, err)
	assert.Len(t, a, defaultEmbeddingDims)

	norm := 0.0
	for _, v := range a {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)

	same, err := embedder.Embed(ctx, "extended WARRANTY extended")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cosine(a, same), 1e-9)

	empty, err := embedder.Embed(ctx, "the and of")
	require.NoError(t, err)
	assert.Zero(t, cosine(a, empty))
}
