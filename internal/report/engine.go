// Package report computes period-based income/expense summaries and the set
// of navigable periods.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budgetbot/internal/core"
	"budgetbot/internal/nav"

	"github.com/shopspring/decimal"
)

// Store is the read surface the engine needs from persistence.
type Store interface {
	GetTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
	GetTransactionsByCategory(ctx context.Context, categoryID int64, start, end time.Time) ([]core.Transaction, error)
	GetCategoryByID(ctx context.Context, id int64) (*core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	TransactionMonths(ctx context.Context) ([]time.Time, error)
}

// Engine aggregates transactions into navigable summaries. Aggregation is a
// pure computation over fetched data; the store reads are the only blocking
// operations.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Period is an inclusive aggregation window.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
	Year  int
	Month int
}

// MonthPeriod covers the entire calendar month.
func MonthPeriod(year, month int) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Second),
		Label: fmt.Sprintf("%s %d", time.Month(month), year),
		Year:  year,
		Month: month,
	}
}

// CurrentPeriod is the trailing default window: first calendar day of the
// current month through now. Distinct from a fully specified month request,
// which always covers the whole month.
func (e *Engine) CurrentPeriod() Period {
	now := e.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   now,
		Label: "current month",
		Year:  now.Year(),
		Month: int(now.Month()),
	}
}

// CategorySum is one category's total within a period.
type CategorySum struct {
	CategoryID int64
	Name       string
	Total      decimal.Decimal
}

// Result is the aggregated summary handed to the transport for rendering.
type Result struct {
	PeriodLabel       string
	Year              int
	Month             int
	Empty             bool
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	IncomeByCategory  []CategorySum
	ExpenseByCategory []CategorySum
	Navigation        []nav.Token
}

// YearPeriods lists the months of one year that have data.
type YearPeriods struct {
	Year   int
	Months []int
}

// CategoryDetail is the drill-down view of a single category.
type CategoryDetail struct {
	CategoryName string
	PeriodLabel  string
	Total        decimal.Decimal
	Count        int
	Transactions []core.Transaction
	Navigation   []nav.Token
}

// Generate aggregates the period's transactions by category and type.
//
// The default view itemizes Income and Expense groups next to the net
// balance; Saving and Transfer rows exist in the data model but are not
// itemized here. An empty period yields a distinguished no-data result, not
// an error.
func (e *Engine) Generate(ctx context.Context, p Period) (*Result, error) {
	res := &Result{
		PeriodLabel:  p.Label,
		Year:         p.Year,
		Month:        p.Month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}

	txs, err := e.store.GetTransactions(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) == 0 {
		res.Empty = true
		res.Navigation = []nav.Token{nav.SelectReportPeriod()}
		return res, nil
	}

	names, err := e.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	res.IncomeByCategory = groupByCategory(txs, core.Income, names)
	res.ExpenseByCategory = groupByCategory(txs, core.Expense, names)
	for _, g := range res.IncomeByCategory {
		res.TotalIncome = res.TotalIncome.Add(g.Total)
	}
	for _, g := range res.ExpenseByCategory {
		res.TotalExpense = res.TotalExpense.Add(g.Total)
	}
	res.Balance = res.TotalIncome.Sub(res.TotalExpense)

	res.Navigation = []nav.Token{
		nav.DetailedReport(p.Year, p.Month),
		nav.SelectReportPeriod(),
	}
	return res, nil
}

// CategoryDetail lists one category's transactions in the period, newest
// first, with their sum and count.
func (e *Engine) CategoryDetail(ctx context.Context, categoryID int64, p Period) (*CategoryDetail, error) {
	cat, err := e.store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, core.ErrUnknownCategory)
	}

	txs, err := e.store.GetTransactionsByCategory(ctx, categoryID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("load category transactions: %w", err)
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })

	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}

	return &CategoryDetail{
		CategoryName: cat.Name,
		PeriodLabel:  p.Label,
		Total:        total,
		Count:        len(txs),
		Transactions: txs,
		Navigation: []nav.Token{
			nav.DetailedReport(p.Year, p.Month),
			nav.BackToReport(p.Year, p.Month),
			nav.SelectReportPeriod(),
		},
	}, nil
}

// PeriodsWithData enumerates the periods that have at least one transaction:
// years descending for display, months ascending within each year. Derived
// by a single scan of the transaction dates, recomputed per call.
func (e *Engine) PeriodsWithData(ctx context.Context) ([]YearPeriods, error) {
	months, err := e.store.TransactionMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transaction months: %w", err)
	}

	byYear := make(map[int][]int)
	for _, m := range months {
		byYear[m.Year()] = append(byYear[m.Year()], int(m.Month()))
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	periods := make([]YearPeriods, 0, len(years))
	for _, y := range years {
		ms := byYear[y]
		sort.Ints(ms)
		periods = append(periods, YearPeriods{Year: y, Months: ms})
	}
	return periods, nil
}

func (e *Engine) categoryNames(ctx context.Context) (map[int64]string, error) {
	cats, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

// groupByCategory sums one type's transactions per category and orders the
// groups descending by sum, ties broken by ascending category id.
func groupByCategory(txs []core.Transaction, t core.TransactionType, names map[int64]string) []CategorySum {
	sums := make(map[int64]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		sums[tx.CategoryID] = sums[tx.CategoryID].Add(tx.Amount)
	}
	if len(sums) == 0 {
		return nil
	}

	groups := make([]CategorySum, 0, len(sums))
	for id, total := range sums {
		name, ok := names[id]
		if !ok {
			name = "UNKNOWN"
		}
		groups = append(groups, CategorySum{CategoryID: id, Name: name, Total: total})
	}
	sort.Slice(groups, func(i, j int) bool {
		cmp := groups[i].Total.Cmp(groups[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return groups[i].CategoryID < groups[j].CategoryID
	})
	return groups
}
