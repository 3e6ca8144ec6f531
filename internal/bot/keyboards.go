package bot

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"budgetbot/internal/core"
	"budgetbot/internal/dialog"
	"budgetbot/internal/nav"
	"budgetbot/internal/report"
)

// mainMenuKeyboard is the persistent menu offered on /start; the button
// labels double as the commands they trigger.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/report"),
			tgbotapi.NewKeyboardButton("/categories"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/addcategory"),
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// categoryTypeKeyboard is the reply keyboard for the category-creation
// dialog. The labels double as the keywords the dialog machine parses.
func categoryTypeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(core.Expense.String()),
			tgbotapi.NewKeyboardButton(core.Income.String()),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(core.Saving.String()),
			tgbotapi.NewKeyboardButton(core.Transfer.String()),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(dialog.CancelKeyword),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

// navigationKeyboard renders report navigation tokens as one button per row.
func navigationKeyboard(tokens []nav.Token) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(navigationLabel(t), t.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func navigationLabel(t nav.Token) string {
	switch t.Verb {
	case nav.VerbDetailedReport:
		return "🔍 Detailed report"
	case nav.VerbSelectReportPeriod:
		return "📅 Another period"
	case nav.VerbBackToReport:
		return "⬅️ Back to report"
	default:
		return string(t.Verb)
	}
}

// yearKeyboard lists the years that have data, newest first, three per row.
func yearKeyboard(periods []report.YearPeriods) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(periods))
	for _, p := range periods {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(p.Year), nav.SelectReportYear(p.Year).String(),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(chunkRows(buttons, 3)...)
}

// monthKeyboard lists one year's months with data, three per row.
func monthKeyboard(months []int) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(months))
	for _, m := range months {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			time.Month(m).String(), nav.SelectMonth(m).String(),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(chunkRows(buttons, 3)...)
}

// categoryDrilldownKeyboard offers every category that appears in the
// report, two per row, with inert section headers between income and
// expense groups and a back button at the bottom.
func categoryDrilldownKeyboard(res *report.Result) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	appendSection := func(title string, sums []report.CategorySum) {
		if len(sums) == 0 {
			return
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, nav.NoAction().String()),
		))
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(sums))
		for _, s := range sums {
			data := nav.CategoryDetails(res.Year, res.Month, s.CategoryID).String()
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(s.Name, data))
		}
		rows = append(rows, chunkRows(buttons, 2)...)
	}

	appendSection("📈 Income", res.IncomeByCategory)
	appendSection("📉 Expenses", res.ExpenseByCategory)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to report",
			nav.BackToReport(res.Year, res.Month).String()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func chunkRows(buttons []tgbotapi.InlineKeyboardButton, perRow int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > 0 {
		n := perRow
		if len(buttons) < n {
			n = len(buttons)
		}
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return rows
}
