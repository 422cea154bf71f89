package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

// maxRunUsers bounds a single POST /api/tips/runs request.
const maxRunUsers = 500

// TipsHandler handles tip generation endpoints.
type TipsHandler struct {
	engine    jobs.TipsGenerator
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewTipsHandler creates a new tips handler. publisher may be nil, which
// disables batch runs.
func NewTipsHandler(engine jobs.TipsGenerator, publisher jobs.Publisher, log zerolog.Logger) *TipsHandler {
	return &TipsHandler{
		engine:    engine,
		publisher: publisher,
		log:       log,
	}
}

// GetTips handles GET /api/tips/{id}?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *TipsHandler) GetTips(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.log)

	query := r.URL.Query()
	result, err := h.engine.GenerateTips(ctx, userID, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		if errors.Is(err, insights.ErrInvalidDate) {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate tips")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate tips")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// EnqueueRuns handles POST /api/tips/runs
func (h *TipsHandler) EnqueueRuns(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Batch runs are disabled")
		return
	}

	var req struct {
		UserIDs   []string `json:"user_ids"`
		StartDate string   `json:"start_date"`
		EndDate   string   `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.UserIDs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "user_ids is required")
		return
	}
	if len(req.UserIDs) > maxRunUsers {
		middleware.WriteError(w, http.StatusBadRequest, "Too many user_ids")
		return
	}
	if !validDate(req.StartDate) || !validDate(req.EndDate) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx, h.log)

	type enqueued struct {
		JobID  string         `json:"job_id"`
		UserID string         `json:"user_id"`
		Status jobs.JobStatus `json:"status"`
	}
	out := make([]enqueued, 0, len(req.UserIDs))

	for _, userID := range req.UserIDs {
		if userID == "" {
			continue
		}
		job := &jobs.TipsRunJob{
			UserID:    userID,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		}
		if err := h.publisher.PublishTipsRun(ctx, job); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to enqueue tips run")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue tips run")
			return
		}
		out = append(out, enqueued{JobID: job.JobID, UserID: userID, Status: job.Status})
	}

	log.Info().Int("jobs", len(out)).Msg("Tips runs enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"jobs":  out,
		"count": len(out),
	})
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := civil.ParseDate(s)
	return err == nil
}
