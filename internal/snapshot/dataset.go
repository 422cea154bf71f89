package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/gcs"
)

// Dataset is the JSON snapshot of everything the insights engine reads.
type Dataset struct {
	Categories   []domain.CategoryEntry    `json:"categories"`
	Preferences  []domain.BudgetPreference `json:"preferences"`
	Transactions []Transaction             `json:"transactions"`
	Goals        []Goal                    `json:"goals"`
}

// Transaction is a stored transaction without the category join.
type Transaction struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	CategoryID  int64  `json:"category_id,omitempty"`
	Amount      Amount `json:"amount"`
	Kind        string `json:"transaction_type"`
	Currency    string `json:"currency,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// Goal is a stored savings goal. Progress and status are derived on read.
type Goal struct {
	ID            int64   `json:"id"`
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	TargetDate    string  `json:"target_date,omitempty"`
	CategoryID    int64   `json:"category_id,omitempty"`
}

// Amount keeps the amount text as written. Both JSON strings and numbers are
// accepted so exported decimals survive without float rounding.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Parse decodes a snapshot document.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("Parse: decode snapshot: %w", err)
	}
	return &ds, nil
}

// Load reads a snapshot from a local path or a gs://bucket/object URI.
// storage may be nil when src is a local path.
func Load(ctx context.Context, src string, storage gcs.StorageService) (*Dataset, error) {
	var (
		data []byte
		err  error
	)
	if gcs.IsURI(src) {
		if storage == nil {
			return nil, errors.New("Load: gs:// source requires a storage service")
		}
		data, err = storage.FetchFromGCS(ctx, src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("Load: read %s: %w", src, err)
	}

	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return ds, nil
}

// Records returns the transactions joined with their category labels.
func (ds *Dataset) Records() []domain.TransactionRecord {
	byID := make(map[int64]domain.CategoryEntry, len(ds.Categories))
	for _, c := range ds.Categories {
		byID[c.ID] = c
	}

	records := make([]domain.TransactionRecord, 0, len(ds.Transactions))
	for _, t := range ds.Transactions {
		rec := domain.TransactionRecord{
			ID:          t.ID,
			UserID:      t.UserID,
			CategoryID:  t.CategoryID,
			Amount:      string(t.Amount),
			Kind:        domain.TransactionKind(t.Kind),
			Currency:    t.Currency,
			Date:        parseDate(t.Date),
			Description: t.Description,
		}
		if c, ok := byID[t.CategoryID]; ok {
			rec.CategoryName = c.Name
			rec.CategoryDescription = c.Description
		}
		records = append(records, rec)
	}
	return records
}

// GoalRecords returns the goals as domain values without derived fields.
func (ds *Dataset) GoalRecords() []domain.GoalProgress {
	goals := make([]domain.GoalProgress, 0, len(ds.Goals))
	for _, g := range ds.Goals {
		goals = append(goals, domain.GoalProgress{
			ID:            g.ID,
			UserID:        g.UserID,
			Title:         g.Title,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			TargetDate:    parseDate(g.TargetDate),
			CategoryID:    g.CategoryID,
		})
	}
	return goals
}

// UserIDs returns every user that owns at least one transaction, in first-seen order.
func (ds *Dataset) UserIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range ds.Transactions {
		if t.UserID == "" || seen[t.UserID] {
			continue
		}
		seen[t.UserID] = true
		ids = append(ids, t.UserID)
	}
	return ids
}

func parseDate(s string) civil.Date {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}
	}
	return d
}
