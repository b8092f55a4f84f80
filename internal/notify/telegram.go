package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Telegram Bot APIのsendMessageを叩くMessenger実装。
type TelegramMessenger struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewTelegramMessenger(token string) *TelegramMessenger {
	return &TelegramMessenger{
		token:   token,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *TelegramMessenger) SendMessage(ctx context.Context, chatID string, text string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", m.baseURL, m.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		//エラーメッセージの先頭だけ残す
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram sendMessage: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
