package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.line.me"
	responseBodyReadLimit int64 = 1024
	maxMessagesPerPush          = 5
)

var errAccessTokenRequired = errors.New("line channel access token is required")

// Client wraps the LINE Messaging API push endpoint. Each organization has
// its own channel, so one Client is built per delivery with that channel's
// access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the LINE API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the LINE Messaging API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client
}

// TextMessage is the minimal message shape accepted by the push API.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PushRequest targets a single LINE user with up to five messages.
type PushRequest struct {
	To       string        `json:"to"`
	Messages []TextMessage `json:"messages"`
}

// PushText delivers plain-text messages to the given LINE user on the channel
// identified by accessToken.
func (c *Client) PushText(ctx context.Context, accessToken, lineUserID string, texts ...string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "line client not configured")
	}
	if strings.TrimSpace(accessToken) == "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errAccessTokenRequired, "push message")
	}
	if strings.TrimSpace(lineUserID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line user id is required")
	}
	if len(texts) == 0 || len(texts) > maxMessagesPerPush {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("push requires 1-%d messages", maxMessagesPerPush))
	}

	messages := make([]TextMessage, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, TextMessage{Type: "text", Text: text})
	}
	payload, err := json.Marshal(PushRequest{To: lineUserID, Messages: messages})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal push request")
	}

	url := fmt.Sprintf("%s/v2/bot/message/push", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build push request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(accessToken))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute push request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "push request failed")
	}
	return nil
}
