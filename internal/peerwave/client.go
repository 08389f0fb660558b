package peerwave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"peerwave-widget/internal/lib/logger/sl"
	"peerwave-widget/internal/location"
	"peerwave-widget/internal/models"
)

const (
	DefaultEndpoint = "https://api.peerwave.ai/api/chat"
	DefaultModel    = "fastest"

	headerRedirect = "Redirect"
)

type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient builds a client for the chat endpoint. A zero timeout leaves the
// HTTP client without one.
func NewClient(endpoint, model string, timeout time.Duration, log *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = sl.Discard()
	}

	return &Client{
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
			// Auth handoffs are read from the Location header by hand.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}
}

// FetchChatCompletion sends message as the single user turn and returns the
// reply text. When the API answers with a failure carrying a Location header
// the page is navigated there and ErrAuthRedirect is returned.
func (c *Client) FetchChatCompletion(ctx context.Context, loc location.Location, message string) (string, error) {
	const op = "peerwave.FetchChatCompletion"

	log := c.log.With(slog.String("op", op))

	body, err := json.Marshal(models.ChatRequest{
		Model: c.model,
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRedirect, location.RedirectTarget(loc))

	token, hasToken := location.GetToken(loc)
	if hasToken {
		req.Header.Set("Authorization", token)
	}

	log.Debug("sending chat completion", slog.Bool("authenticated", hasToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if target := resp.Header.Get("Location"); target != "" {
			log.Info("auth required, redirecting",
				slog.Int("status", resp.StatusCode),
				slog.String("location", target),
			)
			loc.Navigate(target)
			return "", ErrAuthRedirect
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%s: reading error body: %w", op, err)
		}
		log.Warn("chat completion failed", slog.Int("status", resp.StatusCode))
		return "", &RequestError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var data models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &UnexpectedResponseError{Reason: err.Error()}
	}
	log.Debug("chat completion received", slog.Any("data", data))

	if data.Message == nil {
		return "", &UnexpectedResponseError{Reason: "missing message"}
	}
	if data.Message.Content == nil {
		return "", &UnexpectedResponseError{Reason: "missing message.content"}
	}

	return *data.Message.Content, nil
}
