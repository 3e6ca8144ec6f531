package bot

import (
	"fmt"
	"html"
	"strings"

	"budgetbot/internal/core"
	"budgetbot/internal/report"
)

// renderReport formats the aggregated report as Telegram HTML.
func renderReport(res *report.Result) string {
	if res.Empty {
		return fmt.Sprintf("📊 <b>Report for %s</b>\n\nNo transactions in this period.", html.EscapeString(res.PeriodLabel))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Report for %s</b>\n", html.EscapeString(res.PeriodLabel))

	if len(res.IncomeByCategory) > 0 {
		fmt.Fprintf(&sb, "\n📈 <b>Income: %s</b>\n", res.TotalIncome.StringFixed(2))
		writeCategorySums(&sb, res.IncomeByCategory)
	}
	if len(res.ExpenseByCategory) > 0 {
		fmt.Fprintf(&sb, "\n📉 <b>Expenses: %s</b>\n", res.TotalExpense.StringFixed(2))
		writeCategorySums(&sb, res.ExpenseByCategory)
	}

	fmt.Fprintf(&sb, "\n💰 <b>Balance: %s</b>", res.Balance.StringFixed(2))
	return sb.String()
}

func writeCategorySums(sb *strings.Builder, sums []report.CategorySum) {
	for _, s := range sums {
		fmt.Fprintf(sb, "  %s: %s\n", html.EscapeString(s.Name), s.Total.StringFixed(2))
	}
}

// renderCategoryDetail formats the per-category drill-down, newest first.
func renderCategoryDetail(d *report.CategoryDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 <b>%s, %s</b>\n", html.EscapeString(d.CategoryName), html.EscapeString(d.PeriodLabel))
	fmt.Fprintf(&sb, "%d transactions, total %s\n", d.Count, d.Total.StringFixed(2))

	for _, tx := range d.Transactions {
		fmt.Fprintf(&sb, "\n%s  <b>%s</b>  %s",
			tx.Date.Format("02 Jan"),
			tx.Amount.StringFixed(2),
			html.EscapeString(tx.Description))
	}
	return sb.String()
}

// renderCategoryList formats one type's categories for /categories and
// /incategories.
func renderCategoryList(t core.TransactionType, cats []core.Category) string {
	if len(cats) == 0 {
		return fmt.Sprintf("No %s categories yet. Create one with /addcategory.", strings.ToLower(t.String()))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s categories</b>\n", t)
	for _, c := range cats {
		icon := c.Icon
		if icon == "" {
			icon = "•"
		}
		fmt.Fprintf(&sb, "\n%s %s", icon, html.EscapeString(c.Name))
	}
	return sb.String()
}
