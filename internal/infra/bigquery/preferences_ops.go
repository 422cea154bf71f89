package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"google.golang.org/api/iterator"
)

const preferencesTable = "user_preferences"

// GetPreferenceWithClient returns the user's budget preference, or nil if none is stored.
func GetPreferenceWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) (*domain.BudgetPreference, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT user_id, saldo, preferred_currency
		FROM %s
		WHERE user_id = @user_id
		LIMIT 1
	`, tableRef(client, datasetID, preferencesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetPreference: query read: %w", err)
	}

	var r PreferenceRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPreference: iter next: %w", err)
	}

	return r.ToDomain(), nil
}
