package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/infra/logger"
)

// RemoteClassifierService delegates scoring to an external text classification service.
type RemoteClassifierService struct {
	Logger     *logger.Logger
	Host       string
	Threshold  float64
	HttpClient *http.Client
}

func NewRemoteClassifierService(logger *logger.Logger, host string, httpClient *http.Client) *RemoteClassifierService {
	return &RemoteClassifierService{
		Logger:     logger,
		Host:       strings.TrimRight(host, "/"),
		Threshold:  0.5,
		HttpClient: httpClient,
	}
}

func (th *RemoteClassifierService) Name() string {
	return "remote"
}

// Score posts the text and its metadata to the classification service and returns
// the confidence it reports.
//
// Parameters:
//   - ctx: bounds the request; the decision engine sets the deadline.
//   - text: the caller utterance, or the call description during triage.
//   - metadata: call metadata, folded into the text the same way the local model does.
//
// Returns:
//   - float64: the reported confidence clamped to [0,1]; 0 for empty text.
//   - error: transport, status or decoding failures. The caller decides how to degrade.
func (th *RemoteClassifierService) Score(ctx context.Context, text string, metadata map[string]string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if th.Host == "" {
		return 0, fmt.Errorf("QUERY_AI_API_HOST is not set")
	}

	payloadBytes, err := json.Marshal(dto.PredictTextRequest{
		Text:      representation(text, metadata),
		Threshold: th.Threshold,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, th.Host+"/predict_text", bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to send POST request: %s", err.Error()))
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", resp.Status, string(body)))
		return 0, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	var prediction dto.PredictTextResponse
	if err := json.Unmarshal(body, &prediction); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	if prediction.Error != "" {
		return 0, fmt.Errorf("classifier error: %s", prediction.Error)
	}

	return clamp(prediction.Confidence, 0, 1), nil
}
