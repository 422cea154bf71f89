package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/insights"
)

// TipsGenerator produces ranked tips for a user and range.
type TipsGenerator interface {
	GenerateTips(ctx context.Context, userID, startDate, endDate string) (*insights.Result, error)
}

// NewTipsRunHandler returns a JobHandler that runs the generator and stores a
// summary of the result on the job.
func NewTipsRunHandler(gen TipsGenerator) JobHandler {
	return func(ctx context.Context, job *TipsRunJob) error {
		res, err := gen.GenerateTips(ctx, job.UserID, job.StartDate, job.EndDate)
		if err != nil {
			return fmt.Errorf("tips run for %s: %w", job.UserID, err)
		}
		job.TipCount = len(res.Tips)
		job.TopTip = ""
		if len(res.Tips) > 0 {
			job.TopTip = res.Tips[0].Title
		}
		return nil
	}
}
