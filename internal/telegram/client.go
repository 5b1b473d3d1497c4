// Package telegram is a minimal Telegram Bot API client: long-poll updates
// in, messages and inline keyboards out. Only the surface the bot needs.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.telegram.org/bot"

// Client is a Telegram Bot API client.
type Client struct {
	apiURL     string
	botToken   string
	httpClient *http.Client
}

// NewClient creates a new Telegram client.
func NewClient(botToken string) *Client {
	return &Client{
		apiURL:   defaultAPIURL,
		botToken: botToken,
		httpClient: &http.Client{
			// Above the long-poll timeout so getUpdates can complete.
			Timeout: 50 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client against a custom API URL and HTTP
// client (for testing).
func NewClientWithHTTP(apiURL, botToken string, httpClient *http.Client) *Client {
	return &Client{
		apiURL:     apiURL,
		botToken:   botToken,
		httpClient: httpClient,
	}
}

// apiResponse is the generic Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// call performs one Bot API method call and decodes the result when result
// is non-nil.
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	url := c.apiURL + c.botToken + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram API error on %s: %s (code: %d)",
			method, envelope.Description, envelope.ErrorCode)
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates retrieves updates using long polling.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]*Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeout,
	}
	var updates []*Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// sendMessageRequest is the sendMessage payload. Messages carry HTML markup
// and suppress link previews; the minutes link should not expand into a
// website card.
type sendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends an HTML-formatted message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	return c.send(ctx, sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
}

// SendMessageWithKeyboard sends an HTML-formatted message with an inline
// keyboard attached.
func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]InlineKeyboardButton) (*Message, error) {
	return c.send(ctx, sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		ReplyMarkup:           &InlineKeyboardMarkup{InlineKeyboard: keyboard},
	})
}

func (c *Client) send(ctx context.Context, req sendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// editMessageRequest is the editMessageText payload.
type editMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	MessageID             int64                 `json:"message_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageWithKeyboard replaces an existing message's text and keyboard.
func (c *Client) EditMessageWithKeyboard(ctx context.Context, chatID, messageID int64, text string, keyboard [][]InlineKeyboardButton) error {
	req := editMessageRequest{
		ChatID:                chatID,
		MessageID:             messageID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	if keyboard != nil {
		req.ReplyMarkup = &InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}
	return c.call(ctx, "editMessageText", req, nil)
}

// AnswerCallback acknowledges a callback query so the client stops showing
// its loading state.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	payload := map[string]string{"callback_query_id": callbackID}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}
