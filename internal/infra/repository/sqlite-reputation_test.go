package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"call-sentinel/internal/domain/entities"
	domainrepo "call-sentinel/internal/domain/interfaces/repository"
	client "call-sentinel/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepository(t *testing.T) *SQLiteReputationRepository {
	t.Helper()
	db, err := client.SQLiteClient(filepath.Join(t.TempDir(), "spam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteReputationRepository(context.Background(), db)
	require.NoError(t, err)
	return repo
}

func spamRecord(normalized string, confidence float64, spam bool) entities.ReputationRecord {
	return entities.ReputationRecord{
		PhoneNumber: "+" + normalized,
		Normalized:  normalized,
		IsSpam:      spam,
		Confidence:  confidence,
		LastSeen:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:      entities.SourceManual,
	}
}

func TestSQLiteReputation_FindMissing(t *testing.T) {
	repo := newSQLiteRepository(t)

	_, err := repo.Find(context.Background(), "15550000000")
	assert.ErrorIs(t, err, domainrepo.ErrNotFound)
}

func TestSQLiteReputation_UpsertKeepsHighestConfidence(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, spamRecord("15550104477", 0.7, true), false)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ReportCount)

	saved, err = repo.Upsert(ctx, spamRecord("15550104477", 0.4, false), false)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, saved.Confidence, 1e-9)
	assert.True(t, saved.IsSpam)
	assert.Equal(t, 2, saved.ReportCount)

	found, err := repo.Find(ctx, "15550104477")
	require.NoError(t, err)
	assert.Equal(t, saved, found)
	assert.True(t, found.LastSeen.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestSQLiteReputation_OverrideReplaces(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, spamRecord("15550104477", 0.9, true), false)
	require.NoError(t, err)

	saved, err := repo.Upsert(ctx, spamRecord("15550104477", 0.05, false), true)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, saved.Confidence, 1e-9)
	assert.False(t, saved.IsSpam)
}

func TestSQLiteReputation_ConflictingVerdicts(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, spamRecord("15550104477", 0.99, false), false)
	require.NoError(t, err)

	// A weak spam report must not inherit the confidence of the legitimate verdict.
	saved, err := repo.Upsert(ctx, spamRecord("15550104477", 0.3, true), false)
	require.NoError(t, err)
	assert.True(t, saved.IsSpam)
	assert.InDelta(t, 0.3, saved.Confidence, 1e-9)

	// A confident not-spam report does not raise the spam confidence either.
	saved, err = repo.Upsert(ctx, spamRecord("15550104477", 0.95, false), false)
	require.NoError(t, err)
	assert.True(t, saved.IsSpam)
	assert.InDelta(t, 0.3, saved.Confidence, 1e-9)
	assert.Equal(t, 3, saved.ReportCount)
}

func TestSQLiteReputation_SeedSkipsExisting(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, spamRecord("18004419593", 0.5, true), false)
	require.NoError(t, err)

	seeded := spamRecord("18004419593", 0.99, true)
	seeded.ReportCount = 40
	added, err := repo.Seed(ctx, []entities.ReputationRecord{seeded, spamRecord("18882223333", 0.8, true)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	existing, err := repo.Find(ctx, "18004419593")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, existing.Confidence, 1e-9)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteReputation_ConcurrentReports(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, spamRecord("15550104477", float64(i)/20, true), false)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	found, err := repo.Find(ctx, "15550104477")
	require.NoError(t, err)
	assert.Equal(t, 20, found.ReportCount)
	assert.InDelta(t, 0.95, found.Confidence, 1e-9)
}
