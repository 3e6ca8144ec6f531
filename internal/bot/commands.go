package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"budgetbot/internal/core"
	"budgetbot/internal/log"
)

const helpText = `I track your family budget.

Send a transaction as free text:
<code>amount category description</code>
for example <code>1500 PRODUCTS groceries</code>

Commands:
/report - spending report for the current month
/addcategory - create a new category
/categories - list expense categories
/incategories - list income categories
/backup - receive the database file
/restore - replace the database from a backup
/help - this message`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Any command interrupts whatever dialog was pending.
	b.dialogs.Clear(chatID)

	switch msg.Command() {
	case "start":
		greeting := tgbotapi.NewMessage(chatID, "Hi! "+helpText)
		greeting.ParseMode = tgbotapi.ModeHTML
		greeting.ReplyMarkup = mainMenuKeyboard()
		b.send(greeting)
	case "help":
		b.sendHTML(chatID, helpText, nil)
	case "addcategory":
		b.startAddCategory(chatID)
	case "categories":
		b.listCategories(ctx, chatID, core.Expense)
	case "incategories":
		b.listCategories(ctx, chatID, core.Income)
	case "report":
		b.showCurrentReport(ctx, chatID)
	case "backup":
		b.sendBackup(ctx, chatID)
	case "restore":
		b.startRestore(chatID)
	default:
		b.sendPlain(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) startAddCategory(chatID int64) {
	prompt := b.dialogs.BeginAddCategory(chatID)

	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	msg.ReplyMarkup = categoryTypeKeyboard()
	b.send(msg)
}

func (b *Bot) listCategories(ctx context.Context, chatID int64, t core.TransactionType) {
	cats, err := b.svc.CategoriesByType(ctx, t)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to list categories",
			log.FieldChatID, chatID, log.FieldError, err)
		b.sendPlain(chatID, "Could not load the categories, try again later.")
		return
	}
	b.sendHTML(chatID, renderCategoryList(t, cats), nil)
}

func (b *Bot) showCurrentReport(ctx context.Context, chatID int64) {
	period := b.reports.CurrentPeriod()
	res, err := b.reports.Generate(ctx, period)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to generate report",
			log.FieldChatID, chatID, log.FieldError, err)
		b.sendPlain(chatID, "Could not build the report, try again later.")
		return
	}

	markup := navigationKeyboard(res.Navigation)
	b.sendHTML(chatID, renderReport(res), &markup)
}

func (b *Bot) handleTransactionText(ctx context.Context, chatID int64, text string) {
	res, err := b.svc.AddTransactionMessage(ctx, text)
	if err != nil {
		b.logger.WarnContext(ctx, "transaction message rejected",
			log.FieldChatID, chatID, log.FieldOperation, log.OpParse, log.FieldError, err)
		b.sendHTML(chatID, rejectionText(err), nil)
		return
	}

	b.logger.InfoContext(ctx, "transaction added",
		log.FieldChatID, chatID,
		log.FieldTxID, res.Transaction.ID,
		log.FieldCategory, res.Category.Name,
		log.FieldAmount, res.Transaction.Amount.String())
	b.sendPlain(chatID, res.Confirmation)
}

// rejectionText translates parser errors into messages the user can act on.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, core.ErrMalformedInput):
		return "I could not read that. Send a transaction as <code>amount category description</code>, for example <code>1500 PRODUCTS groceries</code>."
	case errors.Is(err, core.ErrInvalidAmount):
		return "The amount must be a positive number, for example <code>99.90</code>."
	case errors.Is(err, core.ErrUnknownCategory):
		return "I do not know that category. List them with /categories or create one with /addcategory."
	default:
		return "Something went wrong saving the transaction, try again later."
	}
}

func failureText(err error) string {
	if errors.Is(err, core.ErrDuplicateCategory) {
		return "A category with that name already exists."
	}
	if errors.Is(err, core.ErrEmptyName) {
		return "The category name cannot be empty."
	}
	return "Could not create the category, try again later."
}
