// Package dialog tracks per-chat multi-step conversations.
//
// A chat with no entry has no pending dialog. Entries are overwritten on each
// transition and removed when a flow completes, is cancelled, or fails
// terminally, so stale state can never leak into unrelated input.
package dialog

import (
	"context"
	"errors"
	"sync"

	"budgetbot/internal/core"
)

// Action is the pending step of a multi-turn dialog.
type Action int

const (
	ActionNone Action = iota
	ActionSelectCategoryType
	ActionAddCategory
	ActionWaitingRestoreFile
	ActionSelectCategory
	ActionAddTransaction
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSelectCategoryType:
		return "select_category_type"
	case ActionAddCategory:
		return "add_category"
	case ActionWaitingRestoreFile:
		return "waiting_restore_file"
	case ActionSelectCategory:
		return "select_category"
	case ActionAddTransaction:
		return "add_transaction"
	default:
		return "unknown"
	}
}

// CancelKeyword aborts any pending dialog.
const CancelKeyword = "CANCEL"

// State is one chat's pending dialog. SelectedType is carried explicitly
// between the type-selection and the name step instead of being squeezed
// into an id field.
type State struct {
	Action       Action
	SelectedType *core.TransactionType
}

// Prompt tells the transport what to render next and which action the
// machine now expects.
type Prompt struct {
	Text               string
	ExpectedNextAction Action
}

// OutcomeKind classifies the result of feeding one message to the machine.
type OutcomeKind int

const (
	// OutcomeReturnToIdle means the dialog ended without a result.
	OutcomeReturnToIdle OutcomeKind = iota
	// OutcomeCancelled means the user aborted the dialog.
	OutcomeCancelled
	// OutcomePrompt means the dialog advanced and expects further input.
	OutcomePrompt
	// OutcomeCategoryCreated means an AddCategory flow completed.
	OutcomeCategoryCreated
	// OutcomeFailed means the flow ended with an error; state is cleared.
	OutcomeFailed
	// OutcomeForwarded means the pending action belongs to another
	// component (restore-file handling); the machine only gates
	// re-entrancy for it.
	OutcomeForwarded
)

// Outcome is the transition result handed back to the transport.
type Outcome struct {
	Kind     OutcomeKind
	Category *core.Category
	Prompt   *Prompt
	Err      error
}

// CategoryCreator is the store surface the machine needs.
type CategoryCreator interface {
	AddCategory(ctx context.Context, name string, t core.TransactionType) (*core.Category, error)
}

// Manager holds the pending dialog of every chat. Each chat's state is
// independent; concurrent events for different chats never contend beyond
// the map lock, and same-chat races resolve last-write-wins.
type Manager struct {
	mu         sync.RWMutex
	states     map[int64]State
	categories CategoryCreator
}

func NewManager(categories CategoryCreator) *Manager {
	return &Manager{
		states:     make(map[int64]State),
		categories: categories,
	}
}

// Set unconditionally overwrites the chat's pending state.
func (m *Manager) Set(chatID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = s
}

// Get returns the chat's pending state, if any.
func (m *Manager) Get(chatID int64) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[chatID]
	return s, ok
}

// Clear removes the chat's pending state. No-op when absent.
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}

// Pending reports whether the chat has a dialog in progress.
func (m *Manager) Pending(chatID int64) bool {
	_, ok := m.Get(chatID)
	return ok
}

// BeginAddCategory starts the category-creation flow.
func (m *Manager) BeginAddCategory(chatID int64) Prompt {
	m.Set(chatID, State{Action: ActionSelectCategoryType})
	return Prompt{
		Text:               "Select the category type",
		ExpectedNextAction: ActionSelectCategoryType,
	}
}

// HandleInput feeds one text message to the chat's pending dialog.
// Calling it without a pending dialog returns OutcomeReturnToIdle.
func (m *Manager) HandleInput(ctx context.Context, chatID int64, text string) Outcome {
	state, ok := m.Get(chatID)
	if !ok {
		return Outcome{Kind: OutcomeReturnToIdle}
	}

	switch state.Action {
	case ActionSelectCategoryType:
		return m.handleTypeSelection(chatID, text)
	case ActionAddCategory:
		return m.handleCategoryName(ctx, chatID, state, text)
	default:
		// Restore-file handling and other flows are owned by their own
		// components; the machine only reserves the slot for them.
		return Outcome{Kind: OutcomeForwarded}
	}
}

// SelectCategoryType applies a type choice (from a typed keyword or a
// callback button) and advances to the name step.
func (m *Manager) SelectCategoryType(chatID int64, text string) Outcome {
	return m.handleTypeSelection(chatID, text)
}

func (m *Manager) handleTypeSelection(chatID int64, text string) Outcome {
	norm := core.NormalizeCategoryName(text)
	if norm == CancelKeyword {
		m.Clear(chatID)
		return Outcome{Kind: OutcomeCancelled}
	}

	t, err := core.ParseTransactionType(norm)
	if err != nil {
		// Anything else during type selection drops back to the menu.
		m.Clear(chatID)
		return Outcome{Kind: OutcomeReturnToIdle}
	}

	m.Set(chatID, State{Action: ActionAddCategory, SelectedType: &t})
	return Outcome{
		Kind: OutcomePrompt,
		Prompt: &Prompt{
			Text:               "Enter the category name",
			ExpectedNextAction: ActionAddCategory,
		},
	}
}

func (m *Manager) handleCategoryName(ctx context.Context, chatID int64, state State, text string) Outcome {
	// A terminal failure must never leave the dialog stuck.
	m.Clear(chatID)

	norm := core.NormalizeCategoryName(text)
	if norm == CancelKeyword {
		return Outcome{Kind: OutcomeCancelled}
	}
	// A type keyword arriving one step late is a leftover keyboard press,
	// treated as a cancel.
	if _, err := core.ParseTransactionType(norm); err == nil {
		return Outcome{Kind: OutcomeCancelled}
	}

	if state.SelectedType == nil {
		return Outcome{Kind: OutcomeFailed, Err: errors.New("no category type selected")}
	}

	cat, err := m.categories.AddCategory(ctx, norm, *state.SelectedType)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
	return Outcome{Kind: OutcomeCategoryCreated, Category: cat}
}
