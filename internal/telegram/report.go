package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"apim/internal/reporting"
)

var ErrNoOwnerChat = errors.New("owner chat id is not configured")

func (b *Bot) handleReport(ctx context.Context, chatID int64, args string) {
	window := b.window
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			b.sendMessage(chatID, "Uso: /reporte [n]")
			return
		}
		window = n
	}
	if err := b.sendReport(ctx, chatID, window, false); err != nil {
		log.Printf("❌ Report generation failed: %v", err)
		b.sendMessage(chatID, "❌ No pude generar el reporte.")
	}
}

// SendWeeklyReport builds the weekly report, saves the snapshot and sends
// it to the owner chat. It is the scheduler's job.
func (b *Bot) SendWeeklyReport(ctx context.Context) error {
	if b.ownerChatID == 0 {
		return ErrNoOwnerChat
	}
	return b.sendReport(ctx, b.ownerChatID, b.window, true)
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, window int, persist bool) error {
	res, err := b.journal.WeeklyReport(ctx, window, persist)
	if err != nil {
		return err
	}
	text, err := b.formatReport(res)
	if err != nil {
		return err
	}
	if res.OK && b.narrator != nil {
		narration, err := b.narrator.Narrate(ctx, *res.Snapshot, res.Rows)
		if err != nil {
			log.Printf("⚠️ Report narration failed, sending without it: %v", err)
		} else {
			text += "\n💬 " + b.escapeIfNeeded(narration)
		}
	}
	b.sendMessage(chatID, text)
	return nil
}

// formatReport renders the table as preformatted text followed by the
// summary block.
func (b *Bot) formatReport(res reporting.Result) (string, error) {
	if !res.OK {
		return b.escapeIfNeeded(res.Summary()), nil
	}
	var table strings.Builder
	if err := reporting.RenderTable(&table, res.Rows); err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	body := b.escapeIfNeeded(table.String())
	switch b.parseModeValue() {
	case tgbotapi.ModeHTML:
		body = "<pre>" + body + "</pre>"
	case tgbotapi.ModeMarkdown, tgbotapi.ModeMarkdownV2:
		body = "```\n" + body + "```"
	}
	return body + "\n" + b.escapeIfNeeded(res.Summary()), nil
}
