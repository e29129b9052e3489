// Package notify pushes status-change notifications to complaint
// owners over Telegram. The notifier is optional: without a configured
// bot token the service runs with the no-op implementation.
package notify

import (
	"fmt"
	"log"

	"civicsense/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers status-change notifications. Implementations are
// best-effort; delivery failures must not affect the status change.
type Notifier interface {
	StatusChanged(owner *models.User, complaint *models.Complaint)
}

// Noop is the disabled notifier.
type Noop struct{}

func (Noop) StatusChanged(owner *models.User, complaint *models.Complaint) {}

// TelegramNotifier sends notifications through the Telegram Bot API.
type TelegramNotifier struct {
	BotAPI *tgbotapi.BotAPI
}

// NewTelegramNotifier authorizes the bot with the given token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Notifier authorized on account %s", bot.Self.UserName)
	return &TelegramNotifier{BotAPI: bot}, nil
}

// StatusChanged notifies the complaint owner, if they registered a
// Telegram chat id. Failures are logged and dropped.
func (n *TelegramNotifier) StatusChanged(owner *models.User, complaint *models.Complaint) {
	if owner == nil || owner.TelegramChatID == 0 {
		return
	}
	text := fmt.Sprintf("Your complaint %q is now %s.", complaint.Description, complaint.Status)
	msg := tgbotapi.NewMessage(owner.TelegramChatID, text)
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to notify user %s about complaint %s: %v", owner.ID, complaint.ID, err)
	}
}
