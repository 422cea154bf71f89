package insights

import (
	"math"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxCanonicalLength = 120

var combiningMarks = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
})

// entry is a transaction with its amount coerced and description canonicalized.
type entry struct {
	domain.TransactionRecord
	value float64
	canon string
}

// parseAmount coerces stored amount text to a finite number, 0 when unparseable.
func parseAmount(raw string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Canonicalize folds free text into a comparison key: lowercased, accents removed,
// restricted to [a-z0-9äöüß -_.], single-spaced and at most 120 runes long.
func Canonicalize(s string) string {
	s = strings.ToLower(strings.TrimFunc(s, isSpace))
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(combiningMarks)), s)
	if err != nil {
		return ""
	}

	var b strings.Builder
	inSpace := false
	for _, r := range folded {
		switch {
		case isSpace(r):
			if !inSpace {
				b.WriteRune(' ')
			}
			inSpace = true
		case isCanonicalRune(r):
			b.WriteRune(r)
			inSpace = false
		}
	}

	out := []rune(b.String())
	if len(out) > maxCanonicalLength {
		out = out[:maxCanonicalLength]
	}
	return string(out)
}

func isCanonicalRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case 'ä', 'ö', 'ü', 'ß', '-', '_', '.':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\ufeff'
}

// collapseSpace trims s and replaces every whitespace run with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// isWeekend reports whether d falls on a Saturday or Sunday. Invalid dates are weekdays.
func isWeekend(d civil.Date) bool {
	if !d.IsValid() {
		return false
	}
	switch d.In(time.UTC).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// normalize drops non-positive amounts and splits the rest by booking direction.
func normalize(records []domain.TransactionRecord) (expenses, income []entry) {
	for _, rec := range records {
		v := parseAmount(rec.Amount)
		if v <= 0 {
			continue
		}
		e := entry{TransactionRecord: rec, value: v, canon: Canonicalize(rec.Description)}
		switch rec.Kind {
		case domain.KindExpense:
			expenses = append(expenses, e)
		case domain.KindIncome:
			income = append(income, e)
		}
	}
	return expenses, income
}
