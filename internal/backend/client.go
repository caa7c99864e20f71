// Package backend provides a client for the video platform REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipdeck/clipdeck/internal/clip"
)

const defaultBaseURL = "http://localhost:8800/api"

// ErrInvalidCount is returned when the backend reports a negative count.
var ErrInvalidCount = errors.New("invalid count")

// ErrUnauthenticated is returned when a call needs a credential and none was accepted.
var ErrUnauthenticated = errors.New("not authenticated")

// APIError is a non-2xx response the backend rejected with a reason.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("backend API error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithToken attaches a bearer credential to authenticated calls.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the video platform backend.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPClient
	logger     zerolog.Logger
}

// NewClient creates a new backend client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Authenticated reports whether the client carries a credential.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// FetchFeed retrieves the clips of a category in display order.
func (c *Client) FetchFeed(ctx context.Context, category string) ([]clip.Clip, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/videos/type/"+url.PathEscape(category), false)
	if err != nil {
		return nil, err
	}
	return decodeClips(body)
}

// FetchSaved retrieves the clips the authenticated user saved.
func (c *Client) FetchSaved(ctx context.Context) ([]clip.Clip, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/users/saved", true)
	if err != nil {
		return nil, err
	}
	return decodeClips(body)
}

// ToggleLike records a like toggle. The returned state is nil when the backend
// answered without reaction lists.
func (c *Client) ToggleLike(ctx context.Context, clipID string) (*ReactionState, error) {
	return c.react(ctx, "/users/like/", clipID)
}

// ToggleDislike records a dislike toggle.
func (c *Client) ToggleDislike(ctx context.Context, clipID string) (*ReactionState, error) {
	return c.react(ctx, "/users/dislike/", clipID)
}

// Save toggles the saved state server-side and returns the authoritative saved count.
func (c *Client) Save(ctx context.Context, clipID string) (int, error) {
	body, err := c.doRequest(ctx, http.MethodPut, "/users/save/"+url.PathEscape(clipID), true)
	if err != nil {
		return 0, err
	}

	var resp saveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse save response: %w", err)
	}
	if resp.SavedByCount == nil {
		return 0, fmt.Errorf("failed to parse save response: missing savedByCount")
	}
	if *resp.SavedByCount < 0 {
		return 0, fmt.Errorf("failed to parse save response: %w: savedByCount %d", ErrInvalidCount, *resp.SavedByCount)
	}
	return *resp.SavedByCount, nil
}

// Share records a share and returns the authoritative share count.
func (c *Client) Share(ctx context.Context, clipID string) (int, error) {
	body, err := c.doRequest(ctx, http.MethodPut, "/users/share/"+url.PathEscape(clipID), true)
	if err != nil {
		return 0, err
	}
	n, err := parseShareCount(body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse share response: %w", err)
	}
	return n, nil
}

// RecordView increments the view counter of a clip.
func (c *Client) RecordView(ctx context.Context, clipID string) error {
	_, err := c.doRequest(ctx, http.MethodPut, "/videos/view/"+url.PathEscape(clipID), false)
	return err
}

func (c *Client) react(ctx context.Context, prefix, clipID string) (*ReactionState, error) {
	body, err := c.doRequest(ctx, http.MethodPut, prefix+url.PathEscape(clipID), true)
	if err != nil {
		return nil, err
	}

	// The backend answers with either the updated clip or a plain status string.
	// Absent lists decode as nil, an empty list as a non-nil empty slice.
	var resp reactionResponse
	if err := json.Unmarshal(body, &resp); err != nil || (resp.Likes == nil && resp.Dislikes == nil) {
		return nil, nil
	}
	state := &ReactionState{}
	if resp.Likes != nil {
		state.LikedBy = resp.Likes
	}
	if resp.Dislikes != nil {
		state.DislikedBy = resp.Dislikes
	}
	return state, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, auth bool) ([]byte, error) {
	if auth && c.token == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		bearer := fmt.Sprintf("Bearer %s", c.token)
		req.Header.Set("Authorization", bearer)
		req.Header.Set("token", bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("backend request failed")
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleAPIError(resp.StatusCode, body)
		c.logger.Warn().Err(apiErr).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("backend rejected request")
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) handleAPIError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: backend refused the credential (status %d) - run 'clipdeck login'", ErrUnauthenticated, statusCode)
	default:
		return &APIError{StatusCode: statusCode, Message: errorMessage(body)}
	}
}

func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		return resp.Message
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func decodeClips(body []byte) ([]clip.Clip, error) {
	var items []clipResponse
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse clips response: %w", err)
	}

	clips := make([]clip.Clip, 0, len(items))
	for _, item := range items {
		clips = append(clips, item.toClip())
	}
	return clips, nil
}

// parseShareCount accepts {"shareCount": n}, a raw number, or a share list.
func parseShareCount(body []byte) (int, error) {
	trimmed := bytes.TrimSpace(body)
	if n, err := strconv.Atoi(string(trimmed)); err == nil {
		return nonNegative(n)
	}

	var resp shareResponse
	if err := json.Unmarshal(trimmed, &resp); err == nil && resp.ShareCount != nil {
		return nonNegative(*resp.ShareCount)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return len(list), nil
	}
	return 0, fmt.Errorf("unexpected share payload %q", truncate(string(trimmed), 64))
}

func nonNegative(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	return n, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
