package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"EXPENSE", Expense, true},
		{"INCOME", Income, true},
		{"SAVING", Saving, true},
		{"TRANSFER", Transfer, true},
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"SALARY", 0, false},
		{"", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("case %d: expected %v, got %v (err=%v)", i, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestTransactionTypeRoundTrip(t *testing.T) {
	for _, tt := range []TransactionType{Expense, Income, Saving, Transfer} {
		got, err := ParseTransactionType(tt.String())
		if err != nil || got != tt {
			t.Fatalf("%v did not round-trip: got %v (err=%v)", tt, got, err)
		}
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	if got := NormalizeCategoryName(" products "); got != "PRODUCTS" {
		t.Fatalf("expected PRODUCTS, got %q", got)
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "PRODUCTS", Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "", Type: Expense}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := (Category{Name: "X", Type: TransactionType(9)}).Validate(); err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:     decimal.NewFromInt(100),
		Date:       time.Now(),
		CategoryID: 1,
		Type:       Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: decimal.Zero, Date: time.Now(), CategoryID: 1, Type: Expense},
		{Amount: decimal.NewFromInt(-5), Date: time.Now(), CategoryID: 1, Type: Expense},
		{Amount: decimal.NewFromInt(5), Date: time.Now(), CategoryID: 0, Type: Expense},
		{Amount: decimal.NewFromInt(5), Date: time.Time{}, CategoryID: 1, Type: Expense},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
