package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"venueplanner/core/config"
	"venueplanner/core/logger"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

// ErrAnalysisTimeout signals that the recommendation service did not answer
// within the configured window. Callers treat this as retriable.
var ErrAnalysisTimeout = errors.New("recommendation service timed out")

// AnalyzeRequest is the payload sent to the recommendation service
type AnalyzeRequest struct {
	EventID           string   `json:"event_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	ScheduledAt       string   `json:"scheduled_at,omitempty"`
	ExpectedAttendees int      `json:"expected_attendees"`
	ParticipantIDs    []string `json:"participant_ids"`
}

// VenueSuggestion is one candidate venue returned by the service
type VenueSuggestion struct {
	PlaceID            string  `json:"place_id,omitempty"`
	Name               string  `json:"name"`
	Address            string  `json:"address,omitempty"`
	Score              float64 `json:"score"`
	VerificationStatus string  `json:"verification_status,omitempty"`
}

// AnalyzeResponse is the full recommendation result
type AnalyzeResponse struct {
	EventID     string            `json:"event_id"`
	Suggestions []VenueSuggestion `json:"suggestions"`
}

// AIClient calls the external venue recommendation service
type AIClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

// AIClientInterface defines the recommendation client contract
type AIClientInterface interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error)
}

// NewAIClient builds the client with retry and timeout from config
func NewAIClient(cfg *config.Config) *AIClient {
	backoff := heimdall.NewConstantBackoff(2*time.Second, 500*time.Millisecond)
	retrier := heimdall.NewRetrier(backoff)

	httpClient := httpclient.NewClient(
		httpclient.WithHTTPTimeout(cfg.AIServiceTimeout),
		httpclient.WithRetrier(retrier),
		httpclient.WithRetryCount(cfg.AIServiceRetries),
	)

	return &AIClient{
		http:    httpClient,
		baseURL: cfg.AIServiceURL,
		apiKey:  cfg.AIServiceAPIKey,
	}
}

// Analyze asks the recommendation service for venue suggestions. Network
// timeouts come back as ErrAnalysisTimeout so callers can distinguish a slow
// service from a broken one.
func (c *AIClient) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.JoinPath(c.baseURL, "/v1/recommendations/analyze")
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			logger.Warn("AIClient:Analyze timeout", "event_id", req.EventID)
			return nil, ErrAnalysisTimeout
		}
		logger.Error("AIClient:Analyze", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("recommendation service returned %d: %s", resp.StatusCode, string(raw))
	}

	var result AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
