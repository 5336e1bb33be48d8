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
)

// AuthClient talks to the authenticated endpoints. It is a thin
// forwarding path: all state lives on the server and no local logic is
// layered on top.
type AuthClient struct {
	client  *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

// RemoteUser is an account as returned by the backend.
type RemoteUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// AuthResult is the register/login response.
type AuthResult struct {
	Token string     `json:"token"`
	User  RemoteUser `json:"user"`
}

// RemoteDocument is a server-side document. Server ids are numeric,
// unlike the string ids of the guest collections.
type RemoteDocument struct {
	ID        int    `json:"id"`
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RemoteChatMessage is a server-side conversation turn.
type RemoteChatMessage struct {
	ID        int    `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// remoteChatRequest is the POST /api/chat request body.
type remoteChatRequest struct {
	Message           string `json:"message"`
	SelectedDocuments []int  `json:"selected_documents,omitempty"`
	UseAllDocuments   bool   `json:"use_all_documents,omitempty"`
}

// credentialsRequest is the register/login request body.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewAuthClient creates an authenticated API client. The token may be
// empty until Login or Register succeeds.
func NewAuthClient(baseURL, token string, timeout time.Duration) *AuthClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &AuthClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
		limiter: rate.NewLimiter(defaultRequestRate, defaultBurst),
	}
}

// SetToken replaces the bearer token after a successful login.
func (c *AuthClient) SetToken(token string) {
	c.token = token
}

// Register creates an account and returns the session token.
func (c *AuthClient) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

// Login authenticates and returns the session token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

// authenticate posts credentials and captures the returned token.
func (c *AuthClient) authenticate(ctx context.Context, path, email, password string) (*AuthResult, error) {
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, path, credentialsRequest{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// UploadDocument uploads a file for server-side extraction and storage.
func (c *AuthClient) UploadDocument(ctx context.Context, filename string, file io.Reader) (*RemoteDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuth(req)

	var doc RemoteDocument
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the server-side document collection.
func (c *AuthClient) ListDocuments(ctx context.Context) ([]RemoteDocument, error) {
	var docs []RemoteDocument
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument returns a single server-side document with content.
func (c *AuthClient) GetDocument(ctx context.Context, id int) (*RemoteDocument, error) {
	var doc RemoteDocument
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/documents/%d", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a server-side document.
func (c *AuthClient) DeleteDocument(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/documents/%d", id), nil, nil)
}

// Chat sends a message through the authenticated chat endpoint.
// Pass selected ids for selected-document context, or useAll for the
// whole server-side collection.
func (c *AuthClient) Chat(ctx context.Context, message string, selected []int, useAll bool) (*RemoteChatMessage, error) {
	var msg RemoteChatMessage
	body := remoteChatRequest{
		Message:           message,
		SelectedDocuments: selected,
		UseAllDocuments:   useAll,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ChatHistory returns the server-side conversation history.
func (c *AuthClient) ChatHistory(ctx context.Context) ([]RemoteChatMessage, error) {
	var msgs []RemoteChatMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/history", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// doJSON issues a JSON request against the API and decodes the
// response into out (when non-nil).
func (c *AuthClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	return c.do(req, out)
}

// do executes the request and decodes the response.
func (c *AuthClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrAuthRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrBackendUnavailable, req.URL.Path, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setAuth attaches the bearer token when one is present.
func (c *AuthClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
