package bigquery

import (
	"math/big"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

func TestTransactionRow_ToDomain(t *testing.T) {
	date := civil.Date{Year: 2024, Month: 5, Day: 4}
	row := TransactionRow{
		ID:              7,
		UserID:          "u1",
		CategoryID:      bigquery.NullInt64{Int64: 4, Valid: true},
		CategoryName:    bigquery.NullString{StringVal: "Essen", Valid: true},
		Amount:          big.NewRat(1250, 100),
		TransactionType: "Ausgabe",
		Currency:        bigquery.NullString{StringVal: "EUR", Valid: true},
		Date:            bigquery.NullDate{Date: date, Valid: true},
		Description:     bigquery.NullString{StringVal: "Pizza", Valid: true},
	}

	rec := row.ToDomain()

	if rec.ID != 7 || rec.CategoryID != 4 || rec.CategoryName != "Essen" || rec.Kind != domain.KindExpense {
		t.Errorf("record = %+v", rec)
	}
	if rec.Date != date || rec.Description != "Pizza" {
		t.Errorf("date/description = %v %q", rec.Date, rec.Description)
	}
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil || !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Amount = %q (%v)", rec.Amount, err)
	}
}

func TestTransactionRow_ToDomain_Nulls(t *testing.T) {
	rec := (&TransactionRow{TransactionType: "Einnahme"}).ToDomain()

	if rec.CategoryID != 0 || rec.Amount != "" || rec.Date != (civil.Date{}) {
		t.Errorf("record = %+v", rec)
	}
}

func TestPreferenceRow_ToDomain(t *testing.T) {
	pref := (&PreferenceRow{UserID: "u1", Saldo: big.NewRat(1000, 1)}).ToDomain()

	if pref.PreferredCurrency != "" {
		t.Errorf("PreferredCurrency = %q, want empty for NULL", pref.PreferredCurrency)
	}
	if !decimal.RequireFromString(pref.Saldo).Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Saldo = %q", pref.Saldo)
	}
}

func TestGoalRow_ToDomain(t *testing.T) {
	row := GoalRow{
		ID:                 3,
		Title:              "Urlaub",
		TargetAmount:       1000,
		CurrentAmount:      250,
		TargetDate:         bigquery.NullDate{Date: civil.Date{Year: 2024, Month: 12, Day: 31}, Valid: true},
		ProgressPercentage: 25,
		Status:             "in_progress",
	}

	g := row.ToDomain()
	if g.Status != domain.GoalInProgress || g.ProgressPercentage != 25 || g.TargetDate.Month != 12 {
		t.Errorf("goal = %+v", g)
	}
}
