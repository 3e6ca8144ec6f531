package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a category and every transaction recorded
// against it. The numeric values are stored in SQLite and must stay stable.
type TransactionType int

const (
	Expense TransactionType = iota
	Income
	Saving
	Transfer
)

var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownType       = errors.New("unknown transaction type")
	ErrDuplicateCategory = errors.New("duplicate category name")
	ErrEmptyName         = errors.New("empty category name")
)

// String returns the keyword form used in dialogs and display.
func (t TransactionType) String() string {
	switch t {
	case Expense:
		return "EXPENSE"
	case Income:
		return "INCOME"
	case Saving:
		return "SAVING"
	case Transfer:
		return "TRANSFER"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the defined types.
func (t TransactionType) Valid() bool {
	return t >= Expense && t <= Transfer
}

// ParseTransactionType maps a dialog keyword to a type. Matching is
// case-insensitive; unknown keywords return ErrUnknownType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EXPENSE":
		return Expense, nil
	case "INCOME":
		return Income, nil
	case "SAVING":
		return Saving, nil
	case "TRANSFER":
		return Transfer, nil
	default:
		return 0, ErrUnknownType
	}
}

type (
	// Category is a named, typed bucket every transaction must reference.
	// Categories are created through an explicit dialog and never mutated.
	Category struct {
		ID    int64
		Name  string
		Type  TransactionType
		Color string
		Icon  string
	}

	// Transaction is a single dated amount tied to exactly one category.
	// Type is a denormalized copy of the owning category's type, fixed at
	// creation time.
	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Date        time.Time
		CategoryID  int64
		Description string
		Type        TransactionType
	}
)

// NormalizeCategoryName is the single case-folding rule for category names,
// applied on both the write and the lookup path.
func NormalizeCategoryName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrUnknownType
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if t.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if !t.Type.Valid() {
		return ErrUnknownType
	}
	if t.Date.IsZero() {
		return errors.New("zero transaction date")
	}
	return nil
}
