// Package telegram forwards reminder notifications to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"guild-tasks/internal/service"
)

// Mirror sends a copy of every reminder to one chat.
type Mirror struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewMirror(token string, chatID int64) (*Mirror, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram api: %w", err)
	}

	log.Printf("[info] telegram mirror authorized on account %s", api.Self.UserName)

	return &Mirror{api: api, chatID: chatID}, nil
}

func (m *Mirror) Forward(ctx context.Context, view service.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(m.chatID, FormatView(view))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatView renders a view as Telegram HTML.
func FormatView(view service.View) string {
	var sb strings.Builder
	if view.Title != "" {
		sb.WriteString(fmt.Sprintf("🔔 <b>%s</b>\n", escape(view.Title)))
	}
	if view.Content != "" {
		sb.WriteString(escape(view.Content))
		sb.WriteByte('\n')
	}
	if view.Description != "" {
		sb.WriteString(markdownBold(view.Description))
		sb.WriteByte('\n')
	}
	for _, field := range view.Fields {
		sb.WriteString(fmt.Sprintf("• <b>%s:</b> %s\n", escape(field.Name), escape(field.Value)))
	}
	if view.Footer != "" {
		sb.WriteString(fmt.Sprintf("<i>%s</i>\n", escape(view.Footer)))
	}
	return strings.TrimSpace(sb.String())
}

// markdownBold escapes text and turns **pairs** into <b> tags.
func markdownBold(text string) string {
	parts := strings.Split(text, "**")
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 && i%2 == 1 && i < len(parts)-1 {
			sb.WriteString("<b>" + escape(part) + "</b>")
			continue
		}
		if i > 0 && i%2 == 1 {
			// Unpaired marker, keep it literal.
			sb.WriteString("**")
		}
		sb.WriteString(escape(part))
	}
	return sb.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}
