package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

// DefaultDatasetID is the dataset holding the finance tables.
const DefaultDatasetID = "finance"

// BigQueryInsightsRepository serves every read the insights engine needs from
// one shared BigQuery client.
type BigQueryInsightsRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryInsightsRepository opens a client for projectID. An empty project
// is detected from the environment credentials.
func NewBigQueryInsightsRepository(ctx context.Context, projectID, datasetID string) (*BigQueryInsightsRepository, error) {
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryInsightsRepository: creating client: %w", err)
	}
	return NewBigQueryInsightsRepositoryWithClient(client, datasetID), nil
}

// NewBigQueryInsightsRepositoryWithClient wraps an existing client.
func NewBigQueryInsightsRepositoryWithClient(client *bigquery.Client, datasetID string) *BigQueryInsightsRepository {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	return &BigQueryInsightsRepository{client: client, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (r *BigQueryInsightsRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListTransactionsWithCategory delegates to ListTransactionsWithCategoryWithClient.
func (r *BigQueryInsightsRepository) ListTransactionsWithCategory(ctx context.Context, userID string, dateRange domain.DateRange) ([]domain.TransactionRecord, error) {
	return ListTransactionsWithCategoryWithClient(ctx, r.client, r.datasetID, userID, dateRange)
}

// ListCategories delegates to ListCategoriesWithClient.
func (r *BigQueryInsightsRepository) ListCategories(ctx context.Context) ([]domain.CategoryEntry, error) {
	return ListCategoriesWithClient(ctx, r.client, r.datasetID)
}

// GetPreference delegates to GetPreferenceWithClient.
func (r *BigQueryInsightsRepository) GetPreference(ctx context.Context, userID string) (*domain.BudgetPreference, error) {
	return GetPreferenceWithClient(ctx, r.client, r.datasetID, userID)
}

// GetGoalProgress delegates to GetGoalProgressWithClient.
func (r *BigQueryInsightsRepository) GetGoalProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error) {
	return GetGoalProgressWithClient(ctx, r.client, r.datasetID, userID)
}

// Stores returns the repository as the engine's collaborator set.
func (r *BigQueryInsightsRepository) Stores() insights.Stores {
	return insights.Stores{Transactions: r, Preferences: r, Categories: r, Goals: r}
}

var (
	_ insights.TransactionStore = (*BigQueryInsightsRepository)(nil)
	_ insights.PreferenceStore  = (*BigQueryInsightsRepository)(nil)
	_ insights.CategoryCatalog  = (*BigQueryInsightsRepository)(nil)
	_ insights.GoalStore        = (*BigQueryInsightsRepository)(nil)
)
