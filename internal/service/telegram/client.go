package telegram

import (
	"context"
	"fmt"
	"time"

	xhttp "MarketPulse/pkg/http"
)

const defaultBaseURL = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API. Delivery is
// fire-and-forget: the caller logs failures and never retries.
type Client struct {
	baseURL string
	token   string
	chatID  string
	client  *xhttp.Client
}

type Option func(*Client)

func New(token, chatID string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		chatID:  chatID,
		client:  xhttp.NewClient(xhttp.WithTimeout(20 * time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the API host, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds the send call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client = xhttp.NewClient(xhttp.WithTimeout(timeout)) }
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Deliver posts the text block to the configured chat with HTML markers
// enabled and link previews suppressed.
func (c *Client) Deliver(ctx context.Context, text string) error {
	var resp sendMessageResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token),
		Body: sendMessageRequest{
			ChatID:                c.chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram send: %s", resp.Description)
	}
	return nil
}
