package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// InsertCategories upserts catalog entries.
func (s *Store) InsertCategories(ctx context.Context, categories []domain.CategoryEntry) error {
	return s.inTx(ctx, "InsertCategories", func(tx *sql.Tx) error {
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
				c.ID, c.Name, nullString(c.Description)); err != nil {
				return fmt.Errorf("category %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

// InsertTransactions appends transactions. Record ids are assigned by the database.
func (s *Store) InsertTransactions(ctx context.Context, records []domain.TransactionRecord) error {
	return s.inTx(ctx, "InsertTransactions", func(tx *sql.Tx) error {
		for _, r := range records {
			var categoryID sql.NullInt64
			if r.CategoryID != 0 {
				categoryID = sql.NullInt64{Int64: r.CategoryID, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transactions (user_id, category_id, amount, transaction_type, currency, date, description)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.UserID, categoryID, r.Amount, string(r.Kind), nullString(r.Currency), r.Date.String(), nullString(r.Description)); err != nil {
				return fmt.Errorf("transaction for %s on %s: %w", r.UserID, r.Date, err)
			}
		}
		return nil
	})
}

// UpsertPreference stores the user's budget preference.
func (s *Store) UpsertPreference(ctx context.Context, pref domain.BudgetPreference) error {
	saldo := pref.Saldo
	if saldo == "" {
		saldo = "0"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, saldo, preferred_currency) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET saldo = excluded.saldo, preferred_currency = excluded.preferred_currency`,
		pref.UserID, saldo, nullString(pref.PreferredCurrency))
	if err != nil {
		return fmt.Errorf("UpsertPreference: %w", err)
	}
	return nil
}

// InsertGoals appends goals. Progress and status are derived on read.
func (s *Store) InsertGoals(ctx context.Context, goals []domain.GoalProgress) error {
	return s.inTx(ctx, "InsertGoals", func(tx *sql.Tx) error {
		for _, g := range goals {
			var targetDate sql.NullString
			if g.TargetDate.IsValid() {
				targetDate = sql.NullString{String: g.TargetDate.String(), Valid: true}
			}
			var categoryID sql.NullInt64
			if g.CategoryID != 0 {
				categoryID = sql.NullInt64{Int64: g.CategoryID, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO goals (user_id, title, target_amount, current_amount, target_date, category_id)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				g.UserID, g.Title, g.TargetAmount, g.CurrentAmount, targetDate, categoryID); err != nil {
				return fmt.Errorf("goal %q: %w", g.Title, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
