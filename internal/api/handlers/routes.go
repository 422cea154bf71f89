package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
)

// RegisterRoutes mounts the API endpoints on mux.
func RegisterRoutes(mux *http.ServeMux, tips *TipsHandler, jobsHandler *JobsHandler) {
	mux.HandleFunc("/api/tips/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			tips.EnqueueRuns(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/tips/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/tips/")
		if userID == "" || strings.Contains(userID, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		tips.GetTips(w, r, userID)
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}
