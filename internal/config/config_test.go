package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypedGetters(t *testing.T) {
	t.Setenv("SENTINEL_BOOL", "true")
	t.Setenv("SENTINEL_INT", "7")
	t.Setenv("SENTINEL_FLOAT", "0.25")
	t.Setenv("SENTINEL_DURATION", "90s")
	t.Setenv("SENTINEL_BLANK", "   ")
	t.Setenv("SENTINEL_BAD", "not-a-number")

	assert.True(t, GetBool("SENTINEL_BOOL", false))
	assert.Equal(t, 7, GetInt("SENTINEL_INT", 1))
	assert.InDelta(t, 0.25, GetFloat("SENTINEL_FLOAT", 1), 1e-9)
	assert.Equal(t, 90*time.Second, GetDuration("SENTINEL_DURATION", time.Second))
	assert.Equal(t, "fallback", GetEnvDefault("SENTINEL_BLANK", "fallback"))

	assert.False(t, GetBool("SENTINEL_BAD", false))
	assert.Equal(t, 3, GetInt("SENTINEL_BAD", 3))
	assert.InDelta(t, 0.5, GetFloat("SENTINEL_BAD", 0.5), 1e-9)
	assert.Equal(t, time.Minute, GetDuration("SENTINEL_BAD", time.Minute))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("MAX_TURNS", "")
	t.Setenv("REJECT_CUTOFF", "0.8")

	settings := Load()

	assert.Equal(t, "secret", settings.APIKey)
	assert.Equal(t, 5, settings.MaxTurns)
	assert.InDelta(t, 0.8, settings.RejectCutoff, 1e-9)
	assert.InDelta(t, 0.95, settings.ShortCircuitConfidence, 1e-9)
	assert.Equal(t, 2*time.Hour, settings.SessionTTL)
	assert.Equal(t, 24*time.Hour, settings.PurposeTTL)
	assert.Equal(t, 30*time.Minute, settings.PurposeGrace)
}
