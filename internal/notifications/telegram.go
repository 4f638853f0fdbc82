package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TelegramNotifier delivers events through the Telegram Bot API.
type TelegramNotifier struct {
	token  string
	chatID string
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
	}
}

// Notify formats the event and posts it to the configured chat.
func (t *TelegramNotifier) Notify(event Event) error {
	emoji := "ℹ️"
	switch event.Kind {
	case EventSignalAccepted:
		emoji = "🎯"
	case EventPositionOpened:
		emoji = "📈"
	case EventPositionClosed:
		emoji = "💰"
	case EventTradingHalted:
		emoji = "🛑"
	case EventError:
		emoji = "🚨"
	}

	text := fmt.Sprintf("%s *Signal Sentry*\n\n%s %s", emoji, event.Symbol, event.Message)

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := http.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
