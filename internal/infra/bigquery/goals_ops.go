package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"google.golang.org/api/iterator"
)

const goalsTable = "goals"

// GetGoalProgressWithClient returns the user's goals with progress percentage and
// status computed against the current date, earliest target date first.
func GetGoalProgressWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) ([]domain.GoalProgress, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  id,
		  user_id,
		  title,
		  CAST(target_amount AS FLOAT64) AS target_amount,
		  CAST(current_amount AS FLOAT64) AS current_amount,
		  target_date,
		  category_id,
		  IF(target_amount > 0, CAST(current_amount * 100 / target_amount AS FLOAT64), 0) AS progress_percentage,
		  CASE
		    WHEN current_amount >= target_amount THEN '%s'
		    WHEN target_date < CURRENT_DATE() THEN '%s'
		    ELSE '%s'
		  END AS status
		FROM %s
		WHERE user_id = @user_id
		ORDER BY target_date ASC
	`, domain.GoalCompleted, domain.GoalOverdue, domain.GoalInProgress, tableRef(client, datasetID, goalsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetGoalProgress: query read: %w", err)
	}

	var goals []domain.GoalProgress
	for {
		var r GoalRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("GetGoalProgress: iter next: %w", err)
		}
		goals = append(goals, r.ToDomain())
	}

	return goals, nil
}
