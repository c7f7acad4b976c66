package services

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

func TestRemoteClassifier_Score(t *testing.T) {
	var received dto.PredictTextRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict_text", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(dto.PredictTextResponse{IsSpam: true, Confidence: 0.82, ModelType: "tfidf"})
	}))
	defer server.Close()

	classifier := NewRemoteClassifierService(logger.NewNopLogger(), server.URL+"/", server.Client())
	score, err := classifier.Score(context.Background(), "free cruise", map[string]string{"Direction": "inbound"})

	require.NoError(t, err)
	assert.InDelta(t, 0.82, score, 1e-9)
	assert.Equal(t, "free cruise | Direction: inbound", received.Text)
	assert.InDelta(t, 0.5, received.Threshold, 1e-9)
}

func TestRemoteClassifier_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	classifier := NewRemoteClassifierService(logger.NewNopLogger(), server.URL, server.Client())
	_, err := classifier.Score(context.Background(), "free cruise", nil)
	assert.Error(t, err)

	empty, err := classifier.Score(context.Background(), "  ", nil)
	require.NoError(t, err)
	assert.Zero(t, empty)

	unconfigured := NewRemoteClassifierService(logger.NewNopLogger(), "", server.Client())
	_, err = unconfigured.Score(context.Background(), "free cruise", nil)
	assert.Error(t, err)
}
