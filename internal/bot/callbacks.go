package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"budgetbot/internal/log"
	"budgetbot/internal/nav"
	"budgetbot/internal/report"
)

// handleCallback decodes the button payload and routes it. Malformed or
// unknown payloads (stale buttons from older versions included) are logged
// and dropped without a user-visible error.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Always acknowledge so the client stops its spinner.
	if _, err := b.client.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Error("failed to answer callback", log.FieldError, err)
	}

	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID

	token, err := nav.Parse(q.Data)
	if err != nil {
		b.logger.WarnContext(ctx, "ignoring navigation token",
			log.FieldChatID, chatID,
			log.FieldToken, q.Data,
			log.FieldOperation, log.OpDecode,
			log.FieldError, err)
		return
	}

	msgID := q.Message.MessageID

	switch token.Verb {
	case nav.VerbNoAction:
		// Separator buttons do nothing.
	case nav.VerbSelectReportPeriod:
		b.showPeriodSelection(ctx, chatID, msgID)
	case nav.VerbSelectReportYear:
		b.years.Set(chatID, token.Year)
		b.showMonthSelection(ctx, chatID, msgID, token.Year)
	case nav.VerbSelectMonth:
		// The year half of the choice lives in per-chat memory.
		year := b.years.Get(chatID)
		b.showMonthReport(ctx, chatID, msgID, year, token.Month)
	case nav.VerbReportMonth, nav.VerbBackToReport:
		b.showMonthReport(ctx, chatID, msgID, token.Year, token.Month)
	case nav.VerbDetailedReport:
		b.showDetailedReport(ctx, chatID, msgID, token.Year, token.Month)
	case nav.VerbCategoryDetails:
		b.showCategoryDetails(ctx, chatID, msgID, token)
	}
}

func (b *Bot) showPeriodSelection(ctx context.Context, chatID int64, msgID int) {
	periods, err := b.reports.PeriodsWithData(ctx)
	if err != nil {
		b.reportCallbackError(ctx, chatID, msgID, err)
		return
	}
	if len(periods) == 0 {
		b.edit(chatID, msgID, "No transactions recorded yet.", nil)
		return
	}

	markup := yearKeyboard(periods)
	b.edit(chatID, msgID, "Choose a year", &markup)
}

func (b *Bot) showMonthSelection(ctx context.Context, chatID int64, msgID int, year int) {
	periods, err := b.reports.PeriodsWithData(ctx)
	if err != nil {
		b.reportCallbackError(ctx, chatID, msgID, err)
		return
	}

	var months []int
	for _, p := range periods {
		if p.Year == year {
			months = p.Months
			break
		}
	}
	if len(months) == 0 {
		b.edit(chatID, msgID, "No transactions recorded for that year.", nil)
		return
	}

	markup := monthKeyboard(months)
	b.edit(chatID, msgID, "Choose a month", &markup)
}

func (b *Bot) showMonthReport(ctx context.Context, chatID int64, msgID int, year, month int) {
	res, err := b.reports.Generate(ctx, report.MonthPeriod(year, month))
	if err != nil {
		b.reportCallbackError(ctx, chatID, msgID, err)
		return
	}

	markup := navigationKeyboard(res.Navigation)
	b.edit(chatID, msgID, renderReport(res), &markup)
}

func (b *Bot) showDetailedReport(ctx context.Context, chatID int64, msgID int, year, month int) {
	res, err := b.reports.Generate(ctx, report.MonthPeriod(year, month))
	if err != nil {
		b.reportCallbackError(ctx, chatID, msgID, err)
		return
	}
	if res.Empty {
		markup := navigationKeyboard(res.Navigation)
		b.edit(chatID, msgID, renderReport(res), &markup)
		return
	}

	markup := categoryDrilldownKeyboard(res)
	b.edit(chatID, msgID, "Pick a category for the details of "+res.PeriodLabel, &markup)
}

func (b *Bot) showCategoryDetails(ctx context.Context, chatID int64, msgID int, token nav.Token) {
	period := report.MonthPeriod(token.Year, token.Month)
	detail, err := b.reports.CategoryDetail(ctx, token.CategoryID, period)
	if err != nil {
		b.reportCallbackError(ctx, chatID, msgID, err)
		return
	}

	markup := navigationKeyboard(detail.Navigation)
	b.edit(chatID, msgID, renderCategoryDetail(detail), &markup)
}

func (b *Bot) reportCallbackError(ctx context.Context, chatID int64, msgID int, err error) {
	b.logger.ErrorContext(ctx, "report navigation failed",
		log.FieldChatID, chatID, log.FieldOperation, log.OpReport, log.FieldError, err)
	b.edit(chatID, msgID, "Could not build that view, try again later.", nil)
}

// edit replaces the text and keyboard of the message the button lives on,
// keeping the report navigation inside a single chat message.
func (b *Bot) edit(chatID int64, msgID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var c tgbotapi.Chattable
	if markup != nil {
		cfg := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, *markup)
		cfg.ParseMode = tgbotapi.ModeHTML
		c = cfg
	} else {
		cfg := tgbotapi.NewEditMessageText(chatID, msgID, text)
		cfg.ParseMode = tgbotapi.ModeHTML
		c = cfg
	}
	if _, err := b.client.Send(c); err != nil {
		b.logger.Error("failed to edit message", log.FieldError, err)
	}
}
