package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
	"budgetbot/internal/nav"
	"budgetbot/internal/report"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderReport(t *testing.T) {
	res := &report.Result{
		PeriodLabel:  "March 2024",
		Year:         2024,
		Month:        3,
		TotalIncome:  dec("500"),
		TotalExpense: dec("400"),
		Balance:      dec("100"),
		IncomeByCategory: []report.CategorySum{
			{CategoryID: 2, Name: "SALARY", Total: dec("500")},
		},
		ExpenseByCategory: []report.CategorySum{
			{CategoryID: 1, Name: "PRODUCTS", Total: dec("400")},
		},
	}

	out := renderReport(res)

	for _, want := range []string{
		"Report for March 2024",
		"Income: 500.00",
		"SALARY: 500.00",
		"Expenses: 400.00",
		"PRODUCTS: 400.00",
		"Balance: 100.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	out := renderReport(&report.Result{PeriodLabel: "March 2024", Empty: true})
	if !strings.Contains(out, "No transactions") {
		t.Errorf("expected empty-period text, got:\n%s", out)
	}
}

func TestRenderReportEscapesHTML(t *testing.T) {
	res := &report.Result{
		PeriodLabel: "March 2024",
		ExpenseByCategory: []report.CategorySum{
			{CategoryID: 1, Name: "A<B>&C", Total: dec("1")},
		},
		TotalExpense: dec("1"),
	}

	out := renderReport(res)
	if strings.Contains(out, "A<B>") {
		t.Errorf("category name not escaped:\n%s", out)
	}
	if !strings.Contains(out, "A&lt;B&gt;&amp;C") {
		t.Errorf("expected escaped name, got:\n%s", out)
	}
}

func TestRenderCategoryDetail(t *testing.T) {
	d := &report.CategoryDetail{
		CategoryName: "PRODUCTS",
		PeriodLabel:  "March 2024",
		Total:        dec("150"),
		Count:        2,
		Transactions: []core.Transaction{
			{Amount: dec("100"), Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Description: "groceries"},
			{Amount: dec("50"), Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Description: "no description"},
		},
	}

	out := renderCategoryDetail(d)
	for _, want := range []string{"PRODUCTS, March 2024", "2 transactions, total 150.00", "10 Mar", "groceries"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCategoryList(t *testing.T) {
	out := renderCategoryList(core.Expense, []core.Category{
		{Name: "PRODUCTS", Icon: "🛒"},
		{Name: "TRANSPORT"},
	})
	for _, want := range []string{"EXPENSE categories", "🛒 PRODUCTS", "• TRANSPORT"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	empty := renderCategoryList(core.Income, nil)
	if !strings.Contains(empty, "No income categories") {
		t.Errorf("unexpected empty list text:\n%s", empty)
	}
}

func TestRejectionText(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", core.ErrMalformedInput), "could not read"},
		{fmt.Errorf("wrap: %w", core.ErrInvalidAmount), "positive number"},
		{fmt.Errorf("wrap: %w", core.ErrUnknownCategory), "/addcategory"},
		{errors.New("db exploded"), "try again later"},
	}
	for _, tc := range cases {
		got := rejectionText(tc.err)
		if !strings.Contains(strings.ToLower(got), strings.ToLower(tc.want)) {
			t.Errorf("rejectionText(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}

func TestNavigationKeyboard(t *testing.T) {
	markup := navigationKeyboard([]nav.Token{
		nav.DetailedReport(2024, 3),
		nav.SelectReportPeriod(),
	})

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	first := markup.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "detailed_report_2024_3" {
		t.Fatalf("unexpected callback data: %v", first.CallbackData)
	}
}

func TestCategoryDrilldownKeyboard(t *testing.T) {
	res := &report.Result{
		Year:  2024,
		Month: 3,
		IncomeByCategory: []report.CategorySum{
			{CategoryID: 2, Name: "SALARY", Total: dec("500")},
		},
		ExpenseByCategory: []report.CategorySum{
			{CategoryID: 1, Name: "PRODUCTS", Total: dec("300")},
			{CategoryID: 3, Name: "TRANSPORT", Total: dec("100")},
			{CategoryID: 4, Name: "FUN", Total: dec("50")},
		},
	}

	markup := categoryDrilldownKeyboard(res)

	// header + 1 income row + header + 2 expense rows + back row
	if len(markup.InlineKeyboard) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(markup.InlineKeyboard))
	}

	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}

	wantData := map[string]bool{
		"category_details_2024_3_1": false,
		"category_details_2024_3_2": false,
		"back_to_report_2024_3":     false,
		"no_action":                 false,
	}
	for _, d := range data {
		if _, ok := wantData[d]; ok {
			wantData[d] = true
		}
	}
	for d, seen := range wantData {
		if !seen {
			t.Errorf("missing callback payload %q in %v", d, data)
		}
	}

	// Category rows hold at most two buttons.
	for i, row := range markup.InlineKeyboard {
		if len(row) > 2 {
			t.Errorf("row %d has %d buttons", i, len(row))
		}
	}
}

func TestYearAndMonthKeyboards(t *testing.T) {
	years := yearKeyboard([]report.YearPeriods{
		{Year: 2024, Months: []int{1, 3}},
		{Year: 2023, Months: []int{12}},
	})
	if len(years.InlineKeyboard) != 1 || len(years.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected year keyboard shape: %v", years.InlineKeyboard)
	}
	if *years.InlineKeyboard[0][0].CallbackData != "select_report_year_2024" {
		t.Fatalf("unexpected year payload: %s", *years.InlineKeyboard[0][0].CallbackData)
	}

	months := monthKeyboard([]int{1, 2, 3, 4})
	if len(months.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 month rows, got %d", len(months.InlineKeyboard))
	}
	if *months.InlineKeyboard[0][2].CallbackData != "select_month_3" {
		t.Fatalf("unexpected month payload: %s", *months.InlineKeyboard[0][2].CallbackData)
	}
}
