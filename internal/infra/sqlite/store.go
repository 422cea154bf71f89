package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          TEXT NOT NULL,
	category_id      INTEGER REFERENCES categories(id),
	amount           TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	currency         TEXT,
	date             TEXT NOT NULL,
	description      TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id            TEXT PRIMARY KEY,
	saldo              TEXT NOT NULL DEFAULT '0',
	preferred_currency TEXT
);

CREATE TABLE IF NOT EXISTS goals (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        TEXT NOT NULL,
	title          TEXT NOT NULL,
	target_amount  REAL NOT NULL,
	current_amount REAL NOT NULL DEFAULT 0,
	target_date    TEXT,
	category_id    INTEGER
);
`

const dateLayout = "2006-01-02"

// Store reads and seeds the insights tables in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Open: sql open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := NewWithDB(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

// Stores returns the store as the engine's collaborator set.
func (s *Store) Stores() insights.Stores {
	return insights.Stores{Transactions: s, Preferences: s, Categories: s, Goals: s}
}

// ListTransactionsWithCategory returns the user's transactions inside the range
// joined with their category label, newest first.
func (s *Store) ListTransactionsWithCategory(ctx context.Context, userID string, dateRange domain.DateRange) ([]domain.TransactionRecord, error) {
	start, end := "", ""
	if dateRange.HasStart() {
		start = dateRange.Start.String()
	}
	if dateRange.HasEnd() {
		end = dateRange.End.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_id, c.name, c.description,
		       t.amount, t.transaction_type, t.currency, t.date, t.description
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		  AND (? = '' OR t.date >= ?)
		  AND (? = '' OR t.date <= ?)
		ORDER BY t.date DESC, t.id DESC`,
		userID, start, start, end, end)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsWithCategory: query: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		var categoryID sql.NullInt64
		var categoryName, categoryDesc, amount, kind, currency, date, description sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &categoryID, &categoryName, &categoryDesc,
			&amount, &kind, &currency, &date, &description); err != nil {
			return nil, fmt.Errorf("ListTransactionsWithCategory: scan: %w", err)
		}
		rec.CategoryID = categoryID.Int64
		rec.CategoryName = categoryName.String
		rec.CategoryDescription = categoryDesc.String
		rec.Amount = amount.String
		rec.Kind = domain.TransactionKind(kind.String)
		rec.Currency = currency.String
		rec.Date = parseDate(date.String)
		rec.Description = description.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactionsWithCategory: rows: %w", err)
	}
	return records, nil
}

// GetPreference returns the user's preference, or nil if none is stored.
func (s *Store) GetPreference(ctx context.Context, userID string) (*domain.BudgetPreference, error) {
	var (
		saldo    sql.NullString
		currency sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT saldo, preferred_currency FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&saldo, &currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPreference: %w", err)
	}
	return &domain.BudgetPreference{UserID: userID, Saldo: saldo.String, PreferredCurrency: currency.String}, nil
}

// ListCategories returns the catalog ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]domain.CategoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query: %w", err)
	}
	defer rows.Close()

	var entries []domain.CategoryEntry
	for rows.Next() {
		var (
			c    domain.CategoryEntry
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return nil, fmt.Errorf("ListCategories: scan: %w", err)
		}
		c.Description = desc.String
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories: rows: %w", err)
	}
	return entries, nil
}

// GetGoalProgress returns the user's goals with progress and status derived
// against today's date, earliest target date first.
func (s *Store) GetGoalProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, target_amount, current_amount, target_date, category_id
		FROM goals
		WHERE user_id = ?
		ORDER BY target_date IS NULL, target_date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("GetGoalProgress: query: %w", err)
	}
	defer rows.Close()

	today := civil.DateOf(s.now())
	var goals []domain.GoalProgress
	for rows.Next() {
		var (
			g          domain.GoalProgress
			targetDate sql.NullString
			categoryID sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &targetDate, &categoryID); err != nil {
			return nil, fmt.Errorf("GetGoalProgress: scan: %w", err)
		}
		g.TargetDate = parseDate(targetDate.String)
		g.CategoryID = categoryID.Int64
		g.ProgressPercentage = domain.ProgressPercentage(g.CurrentAmount, g.TargetAmount)
		g.Status = domain.DeriveGoalStatus(g.CurrentAmount, g.TargetAmount, g.TargetDate, today)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetGoalProgress: rows: %w", err)
	}
	return goals, nil
}

func parseDate(s string) civil.Date {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}
	}
	return d
}

var (
	_ insights.TransactionStore = (*Store)(nil)
	_ insights.PreferenceStore  = (*Store)(nil)
	_ insights.CategoryCatalog  = (*Store)(nil)
	_ insights.GoalStore        = (*Store)(nil)
)
