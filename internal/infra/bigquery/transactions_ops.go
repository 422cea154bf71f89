package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"
)

// ListTransactionsWithCategoryWithClient returns the user's transactions inside
// the range, joined with their category label, newest first.
func ListTransactionsWithCategoryWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string, dateRange domain.DateRange) ([]domain.TransactionRecord, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  t.id,
		  t.user_id,
		  t.category_id,
		  c.name AS category_name,
		  c.description AS category_description,
		  t.amount,
		  t.transaction_type,
		  t.currency,
		  t.date,
		  t.description
		FROM %s t
		LEFT JOIN %s c ON c.id = t.category_id
		WHERE t.user_id = @user_id
		  AND (@start_date IS NULL OR t.date >= @start_date)
		  AND (@end_date IS NULL OR t.date <= @end_date)
		ORDER BY t.date DESC
	`, tableRef(client, datasetID, transactionsTable), tableRef(client, datasetID, categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: bigquery.NullDate{Date: dateRange.Start, Valid: dateRange.HasStart()}},
		{Name: "end_date", Value: bigquery.NullDate{Date: dateRange.End, Valid: dateRange.HasEnd()}},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsWithCategory: query read: %w", err)
	}

	var records []domain.TransactionRecord
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsWithCategory: iter next: %w", err)
		}
		records = append(records, r.ToDomain())
	}

	return records, nil
}

func tableRef(client *bigquery.Client, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, table)
}
