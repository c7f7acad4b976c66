package provider

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

type VoiceAgentProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
	APIKey     string
}

func NewVoiceAgentProvider(logger *logger.Logger, httpClient *http.Client, baseURL, apiKey string) *VoiceAgentProvider {
	return &VoiceAgentProvider{
		Logger:     logger,
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
	}
}

// Handoff asks the voice-agent platform to take over an in-progress call.
//
// Parameters:
//   - ctx: bounds the request.
//   - request: the provider call id, the assistant that should answer, and the caller.
//
// Returns:
//   - dto.HandoffResponse: the platform's call id and status.
//   - error: validation, transport or non-2xx failures.
//
// Dependencies:
//   - VOICE_AGENT_API_URL and VOICE_AGENT_API_KEY, passed in at construction.
func (th *VoiceAgentProvider) Handoff(ctx context.Context, request dto.HandoffRequest) (dto.HandoffResponse, error) {
	if request.CallID == "" {
		return dto.HandoffResponse{}, fmt.Errorf("call id cannot be empty")
	}
	if th.BaseURL == "" || th.APIKey == "" {
		return dto.HandoffResponse{}, fmt.Errorf("voice agent platform is not configured")
	}

	payload, err := json.Marshal(request)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal payload %v", err))
		return dto.HandoffResponse{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/call", th.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to create HTTP request %v", err))
		return dto.HandoffResponse{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", th.APIKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("HTTP request failed %v", err))
		return dto.HandoffResponse{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return dto.HandoffResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", res.Status, string(body)))
		return dto.HandoffResponse{}, fmt.Errorf("unexpected HTTP status: %s", res.Status)
	}

	var handoff dto.HandoffResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &handoff); err != nil {
			return dto.HandoffResponse{}, fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	th.Logger.Info(fmt.Sprintf("Call handed off successfully %s", res.Status))
	return handoff, nil
}
