package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"google.golang.org/api/iterator"
)

// ListCategoriesWithClient returns the full category catalog ordered by id.
func ListCategoriesWithClient(ctx context.Context, client *bigquery.Client, datasetID string) ([]domain.CategoryEntry, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT id, name, description
		FROM %s
		ORDER BY id
	`, tableRef(client, datasetID, categoriesTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	var entries []domain.CategoryEntry
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		entries = append(entries, r.ToDomain())
	}

	return entries, nil
}
