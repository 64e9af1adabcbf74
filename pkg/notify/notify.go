// Package notify sends shop events to the admin chat.
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"mechlog/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a plain-text message to the shop admins.
type Notifier interface {
	Notify(message string)
}

// Nop drops every message. Used when no bot is configured.
type Nop struct{}

func (Nop) Notify(string) {}

// Telegram posts messages to one chat through the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot token against the Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false
	log.Printf("Telegram notifier authorized on account %s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(message string) {
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("telegram send failed: %v", err)
	}
}

// FromConfig returns a Telegram notifier when token and chat are set, Nop otherwise.
func FromConfig(token string, chatID int64) Notifier {
	if token == "" || chatID == 0 {
		return Nop{}
	}
	t, err := NewTelegram(token, chatID)
	if err != nil {
		log.Printf("notifications disabled: %v", err)
		return Nop{}
	}
	return t
}

// CheckOutMessage summarizes a closed day. Times are shown in loc, the
// shop's timezone; nil keeps the timestamps' own zone.
func CheckOutMessage(name string, rec *models.Attendance, loc *time.Location) string {
	out := "-"
	if rec.CheckOut != nil {
		out = clockTime(*rec.CheckOut, loc)
	}
	return fmt.Sprintf("%s salió (%s)\nEntrada %s, salida %s\nNormales %.2f | Extra %.2f | Débito %.2f",
		name, rec.Date, clockTime(rec.CheckIn, loc), out,
		rec.NormalHours, rec.ExtraHours, rec.DebitHours)
}

// OpenShiftsMessage lists mechanics with no check-out on date.
func OpenShiftsMessage(date string, recs []models.Attendance, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sin salida registrada el %s:", date)
	for _, r := range recs {
		name := fmt.Sprintf("usuario %d", r.UserID)
		if r.User != nil && r.User.Name != "" {
			name = r.User.Name
		}
		fmt.Fprintf(&b, "\n- %s (entrada %s)", name, clockTime(r.CheckIn, loc))
	}
	return b.String()
}

// clockTime renders t as HH:MM in loc. Drivers hand back check-in times in
// the server zone, so both halves of a record are converted.
func clockTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04")
}
