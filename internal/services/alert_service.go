package services

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AlertService notifies the ops channel about security-relevant events.
// Every method is fire-and-forget: a failed alert is logged, never surfaced
// into the auth flow.
type AlertService interface {
	AdminLoggedIn(email, ip string)
	AccountLocked(email string, until time.Time)
}

type telegramAlertService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramAlertService returns nil when the bot token is empty, so
// callers keep the teacher-style `if alerts != nil` guard.
func NewTelegramAlertService(botToken string, chatID int64) AlertService {
	if botToken == "" || chatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init] bot init failed, alerts disabled: %v", err)
		return nil
	}
	return &telegramAlertService{bot: bot, chatID: chatID}
}

func (t *telegramAlertService) AdminLoggedIn(email, ip string) {
	t.send(fmt.Sprintf("🔐 Admin login: <b>%s</b> from %s", email, ip))
}

func (t *telegramAlertService) AccountLocked(email string, until time.Time) {
	t.send(fmt.Sprintf("⛔ Account locked: <b>%s</b> until %s", email, until.Format(time.RFC3339)))
}

func (t *telegramAlertService) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] %v", err)
	}
}
