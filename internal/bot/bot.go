// Package bot is the Telegram transport: it routes incoming updates to the
// dialog machine, the transaction parser and the report engine, and renders
// their results back into the chat.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"budgetbot/internal/dialog"
	"budgetbot/internal/log"
	"budgetbot/internal/nav"
	"budgetbot/internal/report"
	"budgetbot/internal/services"
	"budgetbot/internal/storage"
)

// Options configures the Telegram connection.
type Options struct {
	Token         string
	Debug         bool
	UpdateTimeout time.Duration
}

// telegramClient is the outbound slice of the Telegram API the handlers
// use; the update loop keeps the concrete BotAPI.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wires the Telegram API to the application services.
type Bot struct {
	api     *tgbotapi.BotAPI
	client  telegramClient
	svc     *services.BudgetService
	reports *report.Engine
	dialogs *dialog.Manager
	years   *nav.YearMemory
	store   *storage.SQLiteStore
	logger  *log.Logger

	updateTimeout time.Duration
}

func New(opts Options, svc *services.BudgetService, reports *report.Engine, store *storage.SQLiteStore, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = opts.Debug

	timeout := opts.UpdateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Bot{
		api:           api,
		client:        api,
		svc:           svc,
		reports:       reports,
		dialogs:       dialog.NewManager(svc),
		years:         nav.NewYearMemory(),
		store:         store,
		logger:        logger.WithComponent(log.ComponentBot),
		updateTimeout: timeout,
	}, nil
}

// Run consumes updates until ctx is cancelled. Updates are handled one at a
// time; per-chat dialog state makes ordering within a chat matter.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.updateTimeout.Seconds())
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped", log.FieldOperation, log.OpShutdown)
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	// A pending dialog claims every non-command message for the chat.
	if b.dialogs.Pending(chatID) && !msg.IsCommand() {
		b.handleDialogMessage(ctx, chatID, text)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleTransactionText(ctx, chatID, text)
}

func (b *Bot) handleDialogMessage(ctx context.Context, chatID int64, text string) {
	state, _ := b.dialogs.Get(chatID)

	var out dialog.Outcome
	if state.Action == dialog.ActionSelectCategoryType {
		out = b.dialogs.SelectCategoryType(chatID, text)
	} else {
		out = b.dialogs.HandleInput(ctx, chatID, text)
	}

	if out.Kind == dialog.OutcomeForwarded {
		b.handleForwarded(chatID, state, text)
		return
	}
	b.respondToOutcome(ctx, chatID, out)
}

// handleForwarded covers pending actions the dialog machine only gates,
// currently the restore flow waiting for a document.
func (b *Bot) handleForwarded(chatID int64, state dialog.State, text string) {
	if strings.EqualFold(strings.TrimSpace(text), dialog.CancelKeyword) {
		b.dialogs.Clear(chatID)
		b.sendPlain(chatID, "Cancelled.")
		return
	}
	if state.Action == dialog.ActionWaitingRestoreFile {
		b.sendPlain(chatID, "Send the backup file as a document, or CANCEL to abort.")
	}
}

func (b *Bot) respondToOutcome(ctx context.Context, chatID int64, out dialog.Outcome) {
	switch out.Kind {
	case dialog.OutcomeCancelled:
		b.sendRemovingKeyboard(chatID, "Cancelled.")
	case dialog.OutcomeReturnToIdle:
		b.sendRemovingKeyboard(chatID, "I did not understand that. Nothing pending anymore.")
	case dialog.OutcomePrompt:
		b.sendRemovingKeyboard(chatID, out.Prompt.Text)
	case dialog.OutcomeCategoryCreated:
		b.sendRemovingKeyboard(chatID, fmt.Sprintf("Category %s (%s) created.", out.Category.Name, out.Category.Type))
	case dialog.OutcomeFailed:
		b.logger.ErrorContext(ctx, "dialog flow failed",
			log.FieldChatID, chatID, log.FieldError, out.Err)
		b.sendRemovingKeyboard(chatID, failureText(out.Err))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.client.Send(c); err != nil {
		b.logger.Error("failed to send message", log.FieldError, err)
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendHTML(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	b.send(msg)
}

func (b *Bot) sendRemovingKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(msg)
}
