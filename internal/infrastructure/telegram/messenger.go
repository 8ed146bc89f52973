package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ListingRadar/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Messenger sends text messages to one chat via the Telegram bot API.
// Messages use Markdown parse mode for the bold titles and listing links.
type Messenger struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Messenger = (*Messenger)(nil)

// NewMessenger registers bot token and destination chat identifier.
func NewMessenger(botToken, chatID string) *Messenger {
	return &Messenger{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// SendText posts one Markdown message to the configured chat.
func (m *Messenger) SendText(ctx context.Context, text string) error {
	if m.botToken == "" || m.chatID == "" || m.client == nil {
		return fmt.Errorf("telegram messenger misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", m.apiBase, m.botToken)
	form := url.Values{}
	form.Set("chat_id", m.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
