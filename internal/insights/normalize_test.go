package insights

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"accents folded", "Café Müller", "cafe muller"},
		{"whitespace collapsed", "  REWE \t  Markt\n", "rewe markt"},
		{"sharp s kept", "Straße", "straße"},
		{"punctuation dropped", "Amazon*Mktp!", "amazonmktp"},
		{"allowed symbols kept", "pay-pal_de.com", "pay-pal_de.com"},
		{"dropped rune between spaces", "a ! b", "a b"},
		{"non-latin dropped", "Bäckerei 東京 7", "backerei 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Truncates(t *testing.T) {
	got := Canonicalize(strings.Repeat("ab", 100))
	if n := len([]rune(got)); n != 120 {
		t.Errorf("length = %d, want 120", n)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12.50", 12.5},
		{" 7 ", 7},
		{"-3", -3},
		{"1e2", 100},
		{"", 0},
		{"abc", 0},
		{"12,50", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseAmount(tt.raw); got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date civil.Date
		want bool
	}{
		{civil.Date{Year: 2024, Month: 6, Day: 1}, true},  // Saturday
		{civil.Date{Year: 2024, Month: 6, Day: 2}, true},  // Sunday
		{civil.Date{Year: 2024, Month: 6, Day: 3}, false}, // Monday
		{civil.Date{}, false},
	}

	for _, tt := range tests {
		if got := isWeekend(tt.date); got != tt.want {
			t.Errorf("isWeekend(%v) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestNormalize_DropsNonPositive(t *testing.T) {
	records := []domain.TransactionRecord{
		{Kind: domain.KindExpense, Amount: "10"},
		{Kind: domain.KindExpense, Amount: "0"},
		{Kind: domain.KindExpense, Amount: "-4"},
		{Kind: domain.KindExpense, Amount: "garbage"},
		{Kind: domain.KindIncome, Amount: "100"},
		{Kind: "Umbuchung", Amount: "50"},
	}

	expenses, income := normalize(records)
	if len(expenses) != 1 || expenses[0].value != 10 {
		t.Errorf("expenses = %+v, want one entry of 10", expenses)
	}
	if len(income) != 1 || income[0].value != 100 {
		t.Errorf("income = %+v, want one entry of 100", income)
	}
}
