package dialog

import (
	"context"
	"errors"
	"testing"

	"budgetbot/internal/core"
)

type fakeCategories struct {
	created []core.Category
	err     error
	nextID  int64
}

func (f *fakeCategories) AddCategory(_ context.Context, name string, t core.TransactionType) (*core.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	cat := core.Category{ID: f.nextID, Name: name, Type: t}
	f.created = append(f.created, cat)
	return &cat, nil
}

func TestAddCategoryFlow(t *testing.T) {
	ctx := context.Background()
	cats := &fakeCategories{}
	m := NewManager(cats)

	prompt := m.BeginAddCategory(7)
	if prompt.ExpectedNextAction != ActionSelectCategoryType {
		t.Fatalf("unexpected next action: %v", prompt.ExpectedNextAction)
	}

	out := m.HandleInput(ctx, 7, "EXPENSE")
	if out.Kind != OutcomePrompt {
		t.Fatalf("expected prompt for category name, got %v", out.Kind)
	}
	if out.Prompt.ExpectedNextAction != ActionAddCategory {
		t.Fatalf("unexpected next action: %v", out.Prompt.ExpectedNextAction)
	}

	out = m.HandleInput(ctx, 7, "products")
	if out.Kind != OutcomeCategoryCreated {
		t.Fatalf("expected category created, got %v (err=%v)", out.Kind, out.Err)
	}
	if out.Category.Name != "PRODUCTS" || out.Category.Type != core.Expense {
		t.Fatalf("unexpected category: %+v", out.Category)
	}
	if m.Pending(7) {
		t.Fatal("state must be cleared after a completed flow")
	}
}

func TestTypeSelectionCancel(t *testing.T) {
	m := NewManager(&fakeCategories{})
	m.BeginAddCategory(7)

	out := m.HandleInput(context.Background(), 7, "cancel")
	if out.Kind != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %v", out.Kind)
	}
	if m.Pending(7) {
		t.Fatal("state must be cleared after cancel")
	}
}

func TestTypeSelectionUnrecognized(t *testing.T) {
	m := NewManager(&fakeCategories{})
	m.BeginAddCategory(7)

	out := m.HandleInput(context.Background(), 7, "whatever")
	if out.Kind != OutcomeReturnToIdle {
		t.Fatalf("expected return to idle, got %v", out.Kind)
	}
	if m.Pending(7) {
		t.Fatal("state must be cleared")
	}
}

func TestCategoryNameCancel(t *testing.T) {
	ctx := context.Background()
	cats := &fakeCategories{}
	m := NewManager(cats)

	m.BeginAddCategory(7)
	m.HandleInput(ctx, 7, "INCOME")

	out := m.HandleInput(ctx, 7, "CANCEL")
	if out.Kind != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %v", out.Kind)
	}
	if len(cats.created) != 0 {
		t.Fatal("no category must be created on cancel")
	}
	if m.Pending(7) {
		t.Fatal("state must be cleared")
	}
}

func TestCategoryNameLeftoverTypeKeywordCancels(t *testing.T) {
	ctx := context.Background()
	cats := &fakeCategories{}
	m := NewManager(cats)

	m.BeginAddCategory(7)
	m.HandleInput(ctx, 7, "INCOME")

	out := m.HandleInput(ctx, 7, "EXPENSE")
	if out.Kind != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %v", out.Kind)
	}
	if len(cats.created) != 0 {
		t.Fatal("no category must be created")
	}
}

func TestStoreFailureClearsState(t *testing.T) {
	ctx := context.Background()
	cats := &fakeCategories{err: core.ErrDuplicateCategory}
	m := NewManager(cats)

	m.BeginAddCategory(7)
	m.HandleInput(ctx, 7, "EXPENSE")

	out := m.HandleInput(ctx, 7, "PRODUCTS")
	if out.Kind != OutcomeFailed {
		t.Fatalf("expected failed, got %v", out.Kind)
	}
	if !errors.Is(out.Err, core.ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", out.Err)
	}
	// No automatic retry: the dialog is cleared, not stuck.
	if m.Pending(7) {
		t.Fatal("state must be cleared on terminal failure")
	}
}

func TestForeignActionForwarded(t *testing.T) {
	m := NewManager(&fakeCategories{})
	m.Set(7, State{Action: ActionWaitingRestoreFile})

	out := m.HandleInput(context.Background(), 7, "anything")
	if out.Kind != OutcomeForwarded {
		t.Fatalf("expected forwarded, got %v", out.Kind)
	}
	// The owning component clears this state, not the machine.
	if !m.Pending(7) {
		t.Fatal("forwarded state must stay pending")
	}
}

func TestNoPendingDialog(t *testing.T) {
	m := NewManager(&fakeCategories{})
	out := m.HandleInput(context.Background(), 7, "1500 PRODUCTS")
	if out.Kind != OutcomeReturnToIdle {
		t.Fatalf("expected return to idle, got %v", out.Kind)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	m := NewManager(&fakeCategories{})
	m.Clear(7)
	m.Set(7, State{Action: ActionSelectCategoryType})
	m.Clear(7)
	m.Clear(7)
	if m.Pending(7) {
		t.Fatal("expected no pending state")
	}
}

func TestStatesAreIndependentPerChat(t *testing.T) {
	m := NewManager(&fakeCategories{})
	m.BeginAddCategory(1)
	m.BeginAddCategory(2)

	m.HandleInput(context.Background(), 1, "CANCEL")
	if m.Pending(1) {
		t.Fatal("chat 1 must be cleared")
	}
	if !m.Pending(2) {
		t.Fatal("chat 2 must keep its dialog")
	}
}
