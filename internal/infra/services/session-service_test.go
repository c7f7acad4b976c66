package services

import (
	"context"
	"testing"
	"time"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_RoundTrip(t *testing.T) {
	sessions := NewSessionService(newBadgerStore(t), time.Hour)
	ctx := context.Background()

	call := entities.CallContext{
		SessionID:    "CA1",
		CallerNumber: "+15550104477",
		State:        entities.StateGathering,
		Turns:        []entities.Turn{{Text: "hello", RecognitionConfidence: 0.9, Timestamp: noon, Combined: 0.2}},
		StartedAt:    noon,
	}
	require.NoError(t, sessions.Save(ctx, call))

	loaded, err := sessions.Load(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, call.State, loaded.State)
	require.Len(t, loaded.Turns, 1)
	assert.Equal(t, "hello", loaded.Turns[0].Text)
	assert.True(t, noon.Equal(loaded.StartedAt))

	require.NoError(t, sessions.Delete(ctx, "CA1"))
	_, err = sessions.Load(ctx, "CA1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_RequiresSessionID(t *testing.T) {
	sessions := NewSessionService(newBadgerStore(t), time.Hour)

	_, err := sessions.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingSession)
	assert.ErrorIs(t, sessions.Save(context.Background(), entities.CallContext{}), ErrMissingSession)
}

func TestCallerPurposeService_KeyedByDigits(t *testing.T) {
	purposes := NewCallerPurposeService(newBadgerStore(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, purposes.Save(ctx, entities.CallerPurposeRecord{
		PhoneNumber: "+1 (555) 010-4477",
		SessionID:   "CA1",
		Purpose:     "extended warranty",
	}))

	record, err := purposes.Find(ctx, "15550104477")
	require.NoError(t, err)
	assert.Equal(t, "15550104477", record.PhoneNumber)
	assert.Equal(t, "extended warranty", record.Purpose)

	require.NoError(t, purposes.Expire(ctx, "+15550104477", time.Minute))
	assert.ErrorIs(t, purposes.Expire(ctx, "+15559999999", time.Minute), repository.ErrNotFound)
	assert.ErrorIs(t, purposes.Save(ctx, entities.CallerPurposeRecord{PhoneNumber: "private"}), ErrInvalidNumber)
}
