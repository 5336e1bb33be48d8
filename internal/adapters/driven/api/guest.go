package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure GuestClient implements the interface.
var _ driven.GuestBackend = (*GuestClient)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 120 * time.Second

	// defaultRequestRate paces outgoing requests. The backend runs
	// inference per request; hammering it buys nothing.
	defaultRequestRate = rate.Limit(5)
	defaultBurst       = 5
)

// GuestConfig holds configuration for the guest API client.
type GuestConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8080).
	BaseURL string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// GuestClient talks to the guest-mode endpoints. No credentials are
// attached; guest requests are anonymous by design.
type GuestClient struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// guestChatRequest is the POST /api/guest/chat request body.
type guestChatRequest struct {
	Message        string                 `json:"message"`
	Context        string                 `json:"context"`
	ContextSources []domain.ContextSource `json:"context_sources"`
}

// guestChatResponse is the POST /api/guest/chat response body.
type guestChatResponse struct {
	Response string `json:"response"`
}

// extractTextResponse is the POST /api/guest/extract-text response body.
type extractTextResponse struct {
	ExtractedText string `json:"extracted_text"`
}

// NewGuestClient creates a guest API client.
func NewGuestClient(cfg GuestConfig) *GuestClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GuestClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(defaultRequestRate, defaultBurst),
	}
}

// GenerateResponse sends a chat message with its assembled context and
// returns the assistant response text.
func (c *GuestClient) GenerateResponse(ctx context.Context, message, contextBlob string, sources []domain.ContextSource) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if sources == nil {
		sources = []domain.ContextSource{}
	}
	jsonBody, err := json.Marshal(guestChatRequest{
		Message:        message,
		Context:        contextBlob,
		ContextSources: sources,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/guest/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: chat returned status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	var chatResp guestChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return chatResp.Response, nil
}

// ExtractText uploads a file as multipart form data and returns the
// extracted plain text.
func (c *GuestClient) ExtractText(ctx context.Context, filename string, file io.Reader) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/guest/extract-text", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: extract-text returned status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	var extractResp extractTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&extractResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return extractResp.ExtractedText, nil
}
