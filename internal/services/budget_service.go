// Package services holds the budget business logic between the store and
// the chat transport.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbot/internal/core"
)

// noDescription substitutes for transactions sent without one.
const noDescription = "no description"

// Store is the persistence surface the service needs.
type Store interface {
	CreateCategory(ctx context.Context, name string, t core.TransactionType) (*core.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error)
	AddTransaction(ctx context.Context, tx core.Transaction) (int64, error)
}

// EventPublisher announces persisted transactions to external consumers.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, id int64) error
}

// BudgetService orchestrates category and transaction operations.
type BudgetService struct {
	store     Store
	publisher EventPublisher // optional; nil disables events
	now       func() time.Time
}

// ParseResult is the outcome of a successfully parsed transaction message.
type ParseResult struct {
	Transaction  core.Transaction
	Category     core.Category
	Confirmation string
}

func NewBudgetService(store Store, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddCategory creates a category through the explicit dialog flow. Names are
// normalized at the store boundary; duplicates surface as
// core.ErrDuplicateCategory.
func (s *BudgetService) AddCategory(ctx context.Context, name string, t core.TransactionType) (*core.Category, error) {
	cat, err := s.store.CreateCategory(ctx, name, t)
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	return cat, nil
}

// Categories returns every category ordered by name.
func (s *BudgetService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// CategoriesByType returns one type's categories ordered by name.
func (s *BudgetService) CategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	return s.store.ListCategoriesByType(ctx, t)
}

// AddTransactionMessage converts one line of free text into a persisted
// transaction, or rejects it without touching the store.
//
// Format: "amount category [description...]". Validation order, first
// failure wins:
//
//  1. at least two tokens           -> core.ErrMalformedInput
//  2. first token positive decimal  -> core.ErrInvalidAmount
//  3. category exists by name       -> core.ErrUnknownCategory
//
// The transaction's type is copied from the matched category; a leading sign
// on the amount is stripped and never consulted. Categories are never
// created here.
func (s *BudgetService) AddTransactionMessage(ctx context.Context, text string) (*ParseResult, error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return nil, fmt.Errorf("expected \"amount category [description]\": %w", core.ErrMalformedInput)
	}

	amount, err := core.ParseAmount(parts[0])
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", parts[0], err)
	}

	cat, err := s.store.GetCategoryByName(ctx, parts[1])
	if err != nil {
		return nil, fmt.Errorf("look up category: %w", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %q: %w", core.NormalizeCategoryName(parts[1]), core.ErrUnknownCategory)
	}

	description := noDescription
	if len(parts) > 2 {
		description = strings.Join(parts[2:], " ")
	}

	tx := core.Transaction{
		Amount:      amount,
		Date:        s.now(),
		CategoryID:  cat.ID,
		Description: description,
		Type:        cat.Type,
	}

	id, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	s.publishCreated(ctx, id)

	return &ParseResult{
		Transaction:  tx,
		Category:     *cat,
		Confirmation: fmt.Sprintf("added %s to %s", amount.String(), cat.Name),
	}, nil
}

func (s *BudgetService) publishCreated(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	// Events are best-effort; the transaction is already persisted.
	if err := s.publisher.PublishTransactionCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish transaction event", "id", id, "error", err)
	}
}
