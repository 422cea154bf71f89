package domain

import (
	"cloud.google.com/go/civil"
)

// TransactionKind is the booking direction of a transaction as stored.
type TransactionKind string

const (
	// KindIncome marks money coming in.
	KindIncome TransactionKind = "Einnahme"
	// KindExpense marks money going out.
	KindExpense TransactionKind = "Ausgabe"
)

// TransactionRecord is one transaction as returned by a transaction store,
// pre-joined with its category's display name and description.
// Records are read-only to the insights engine.
type TransactionRecord struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`

	// CategoryID is 0 when the transaction has no category.
	CategoryID          int64  `json:"category_id,omitempty"`
	CategoryName        string `json:"category_name,omitempty"`
	CategoryDescription string `json:"category_description,omitempty"`

	// Amount is the decimal text as stored. The sign is irrelevant and the
	// value may be malformed; normalization coerces it.
	Amount   string          `json:"amount"`
	Kind     TransactionKind `json:"transaction_type"`
	Currency string          `json:"currency"`

	// Date is the zero civil.Date when the stored value could not be parsed.
	Date        civil.Date `json:"date"`
	Description string     `json:"description"`
}

// DateRange is an inclusive calendar range. A zero Start or End leaves that
// side unbounded.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// HasStart reports whether the range has a lower bound.
func (r DateRange) HasStart() bool { return r.Start != civil.Date{} }

// HasEnd reports whether the range has an upper bound.
func (r DateRange) HasEnd() bool { return r.End != civil.Date{} }

// Contains reports whether d lies within the range.
func (r DateRange) Contains(d civil.Date) bool {
	if r.HasStart() && d.Before(r.Start) {
		return false
	}
	if r.HasEnd() && d.After(r.End) {
		return false
	}
	return true
}
