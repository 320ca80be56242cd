package telegram

import (
	"context"
	"html"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"apim/internal/assessment"
	"apim/internal/journal"
	"apim/internal/reporting"
	"apim/internal/session"
)

// Narrator adds a coaching paragraph to a weekly report.
type Narrator interface {
	Narrate(ctx context.Context, snap reporting.WeeklySnapshot, rows []reporting.Row) (string, error)
}

type Options struct {
	Journal     *journal.Service
	Assessment  *assessment.Service
	Narrator    Narrator
	ParseMode   string
	Window      int
	OwnerChatID int64
	Now         func() time.Time
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	journal     *journal.Service
	assess      *assessment.Service
	narrator    Narrator
	sessions    *session.Manager
	parseMode   string
	window      int
	ownerChatID int64
	now         func() time.Time
}

func New(botToken string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, opts)
	b.api = api
	return b, nil
}

func newBot(s sender, opts Options) *Bot {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Window <= 0 {
		opts.Window = reporting.DefaultWindow
	}
	return &Bot{
		s:           s,
		journal:     opts.Journal,
		assess:      opts.Assessment,
		narrator:    opts.Narrator,
		sessions:    session.NewManager(),
		parseMode:   opts.ParseMode,
		window:      opts.Window,
		ownerChatID: opts.OwnerChatID,
		now:         opts.Now,
	}
}

// Start polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("✅ Bot @%s started", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.sendMessage(update.Message.Chat.ID, b.escapeIfNeeded(helpText))
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) parseModeValue() string {
	switch b.parseMode {
	case tgbotapi.ModeHTML, tgbotapi.ModeMarkdown, tgbotapi.ModeMarkdownV2:
		return b.parseMode
	}
	return ""
}

func (b *Bot) escapeIfNeeded(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return html.EscapeString(s)
	}
	return s
}

// sendMessage sends text as is; callers escape dynamic parts.
func (b *Bot) sendMessage(chatID int64, text string) {
	b.sendWithMarkup(chatID, text, nil)
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseModeValue()
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
