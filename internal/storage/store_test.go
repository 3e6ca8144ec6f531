package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetbot/internal/core"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "products", core.Expense)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if cat.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if cat.Name != "PRODUCTS" {
		t.Fatalf("expected normalized name PRODUCTS, got %q", cat.Name)
	}

	// Lookup is case-folded the same way as the write path.
	got, err := store.GetCategoryByName(ctx, "Products")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil || got.ID != cat.ID || got.Type != core.Expense {
		t.Fatalf("unexpected lookup result: %+v", got)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.CreateCategory(ctx, "RENT", core.Expense); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.CreateCategory(ctx, "rent", core.Income)
	if !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", err)
	}
}

func TestGetCategoryMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	got, err := store.GetCategoryByName(ctx, "NOPE")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing category, got %+v", got)
	}

	got, err = store.GetCategoryByID(ctx, 42)
	if err != nil {
		t.Fatalf("lookup by id: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing id, got %+v", got)
	}
}

func TestListCategoriesByType(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, c := range []struct {
		name string
		typ  core.TransactionType
	}{
		{"RENT", core.Expense},
		{"PRODUCTS", core.Expense},
		{"SALARY", core.Income},
	} {
		if _, err := store.CreateCategory(ctx, c.name, c.typ); err != nil {
			t.Fatalf("create %s: %v", c.name, err)
		}
	}

	expenses, err := store.ListCategoriesByType(ctx, core.Expense)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(expenses))
	}
	// Ordered by name.
	if expenses[0].Name != "PRODUCTS" || expenses[1].Name != "RENT" {
		t.Fatalf("unexpected order: %q, %q", expenses[0].Name, expenses[1].Name)
	}
}

func TestAddAndFilterTransactions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "PRODUCTS", core.Expense)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	dates := []time.Time{
		time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, err := store.AddTransaction(ctx, core.Transaction{
			Amount:      decimal.NewFromInt(int64(100 * (i + 1))),
			Date:        d,
			CategoryID:  cat.ID,
			Description: "t",
			Type:        cat.Type,
		})
		if err != nil {
			t.Fatalf("add transaction %d: %v", i, err)
		}
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	got, err := store.GetTransactions(ctx, start, end)
	if err != nil {
		t.Fatalf("get transactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions in March, got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatal("expected ascending date order")
	}
	if got[0].Amount.String() != "200" {
		t.Fatalf("expected exact amount 200, got %s", got[0].Amount)
	}
	if got[0].Type != core.Expense {
		t.Fatalf("expected denormalized type Expense, got %v", got[0].Type)
	}

	byCat, err := store.GetTransactionsByCategory(ctx, cat.ID, start, end)
	if err != nil {
		t.Fatalf("get by category: %v", err)
	}
	if len(byCat) != 2 {
		t.Fatalf("expected 2 transactions for category, got %d", len(byCat))
	}
}

func TestTransactionMonths(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "SALARY", core.Income)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	for _, d := range []time.Time{
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	} {
		if _, err := store.AddTransaction(ctx, core.Transaction{
			Amount:     decimal.NewFromInt(10),
			Date:       d,
			CategoryID: cat.ID,
			Type:       cat.Type,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	months, err := store.TransactionMonths(ctx)
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 distinct months, got %d", len(months))
	}
	if months[0].Year() != 2023 || months[0].Month() != time.December {
		t.Fatalf("unexpected first month: %v", months[0])
	}
	if months[1].Year() != 2024 || months[1].Month() != time.March {
		t.Fatalf("unexpected second month: %v", months[1])
	}
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddTransaction(ctx, core.Transaction{
		Amount:     decimal.Zero,
		Date:       time.Now(),
		CategoryID: 1,
		Type:       core.Expense,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
