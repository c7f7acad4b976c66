package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handoffRequest() dto.HandoffRequest {
	return dto.HandoffRequest{
		CallID:      "CA123",
		AssistantID: "assistant-1",
		Customer:    dto.HandoffCaller{Number: "+15550104477"},
		Metadata:    map[string]any{"spam_confidence": 0.8},
	}
}

func TestVoiceAgentProvider_Handoff(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/call", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"agent-call-9","status":"queued"}`))
	}))
	defer server.Close()

	provider := NewVoiceAgentProvider(logger.NewNopLogger(), server.Client(), server.URL+"/", "secret")
	res, err := provider.Handoff(context.Background(), handoffRequest())
	require.NoError(t, err)

	assert.Equal(t, dto.HandoffResponse{ID: "agent-call-9", Status: "queued"}, res)
	assert.Equal(t, "CA123", got["phoneCallProviderId"])
	assert.Equal(t, "assistant-1", got["assistantId"])
	assert.Equal(t, map[string]any{"number": "+15550104477"}, got["customer"])
}

func TestVoiceAgentProvider_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "assistant not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewVoiceAgentProvider(logger.NewNopLogger(), server.Client(), server.URL, "secret")
	_, err := provider.Handoff(context.Background(), handoffRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestVoiceAgentProvider_Validation(t *testing.T) {
	provider := NewVoiceAgentProvider(logger.NewNopLogger(), http.DefaultClient, "", "")

	_, err := provider.Handoff(context.Background(), dto.HandoffRequest{})
	assert.EqualError(t, err, "call id cannot be empty")

	_, err = provider.Handoff(context.Background(), handoffRequest())
	assert.EqualError(t, err, "voice agent platform is not configured")
}
