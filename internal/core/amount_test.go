package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"120.50", "120.5", true},
		{"120,50", "120.5", true},
		{"0", "0", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if want, _ := decimal.NewFromString(tc.out); !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, want, got)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSumAmounts(t *testing.T) {
	amt := func(s string) *decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad amount %q: %v", s, err)
		}
		return &d
	}

	t.Run("empty set", func(t *testing.T) {
		if got := SumAmounts(nil); !got.IsZero() {
			t.Fatalf("expected zero, got %s", got)
		}
	})

	t.Run("unset amount counts as zero", func(t *testing.T) {
		expenses := []Expense{
			{ID: uuid.New(), Name: "Hotel", Amount: amt("120.50")},
			{ID: uuid.New(), Name: "Food"},
		}
		got := SumAmounts(expenses)
		if want := decimal.RequireFromString("120.50"); !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("exact decimal addition", func(t *testing.T) {
		expenses := []Expense{
			{Amount: amt("0.1")},
			{Amount: amt("0.2")},
		}
		got := SumAmounts(expenses)
		if want := decimal.RequireFromString("0.3"); !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})
}
