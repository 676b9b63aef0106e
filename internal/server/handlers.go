package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/schedule-board/internal/cache"
	"github.com/jonathan/schedule-board/internal/db"
	"github.com/jonathan/schedule-board/internal/export"
	"github.com/jonathan/schedule-board/internal/schedule"
)

const queryDateLayout = "2006-01-02"

// scheduleResponse is the wire shape of a processed schedule.
type scheduleResponse struct {
	Jobs      schedule.Schedule `json:"jobs"`
	Warnings  []string          `json:"warnings"`
	FetchedAt time.Time         `json:"fetched_at"`
	FromCache bool              `json:"from_cache"`
}

// snapshot returns the current processed schedule, honoring the cache unless
// force is set.
func (s *Server) snapshot(ctx context.Context, force bool) (*cache.Snapshot, error) {
	if force {
		s.cache.Invalidate(s.sourceKey)
	}
	return s.cache.Get(ctx, s.sourceKey, s.refresh)
}

// refresh fetches, processes and optionally records one run.
func (s *Server) refresh(ctx context.Context) (schedule.Schedule, []string, error) {
	raw, err := s.deps.Fetch.FetchTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	jobs, warnings := s.deps.Processor.Process(raw)

	if s.deps.Store != nil {
		run := &db.Run{
			SourceKey:    s.sourceKey,
			RowCount:     len(jobs),
			WarningCount: len(warnings),
			Warnings:     warnings,
			FetchedAt:    time.Now().UTC(),
		}
		if _, err := s.deps.Store.SaveRun(ctx, run); err != nil {
			s.log.Error().Err(err).Msg("failed to record run")
		}
	}
	return jobs, warnings, nil
}

// handleSchedule returns the processed schedule, filtered by query
// parameters.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, scheduleResponse{
		Jobs:      filter.Apply(snap.Jobs),
		Warnings:  snap.Warnings,
		FetchedAt: snap.FetchedAt,
		FromCache: snap.FromCache,
	})
}

// handleSummary returns the dashboard KPIs for the full schedule.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), false)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, schedule.Summarize(snap.Jobs, s.now()))
}

// handleExport streams the schedule as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), false)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.csv"`)
	if err := export.WriteCSV(w, snap.Jobs); err != nil {
		s.log.Error().Err(err).Msg("failed to write CSV export")
	}
}

// handleRefresh drops the cache and reloads from the source.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), true)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, scheduleResponse{
		Jobs:      snap.Jobs,
		Warnings:  snap.Warnings,
		FetchedAt: snap.FetchedAt,
	})
}

// saveRequest carries edited rows for write-back. Dates accept YYYY-MM-DD or
// RFC 3339.
type saveRequest struct {
	Jobs []jobPayload `json:"jobs"`
}

type jobPayload struct {
	JobID               string `json:"JobID"`
	JobName             string `json:"JobName"`
	Branch              string `json:"Branch"`
	CustomerName        string `json:"CustomerName"`
	Priority            string `json:"Priority"`
	Status              string `json:"Status"`
	Quantity            int    `json:"Quantity"`
	StartDate           string `json:"StartDate"`
	CustomerRequestDate string `json:"CustomerRequestDate"`
	ShipDate            string `json:"ShipDate"`
	DueDate             string `json:"DueDate"`
	Notes               string `json:"Notes"`
}

// handleSave writes edited rows back to the source and invalidates the
// cache so the next read reflects them.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.deps.Write == nil {
		s.errorResponse(w, http.StatusConflict, "source does not support write-back")
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	jobs := make(schedule.Schedule, 0, len(req.Jobs))
	for i, p := range req.Jobs {
		job, err := p.toJob()
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("job %d: %v", i, err))
			return
		}
		jobs = append(jobs, job)
	}

	if err := s.deps.Write.WriteSchedule(r.Context(), jobs); err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.cache.Invalidate(s.sourceKey)

	s.jsonResponse(w, http.StatusOK, map[string]any{"saved": len(jobs)})
}

// handleListRuns returns recent run history for this source.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		s.errorResponse(w, http.StatusNotFound, "run history is not enabled")
		return
	}

	runs, err := s.deps.Store.ListRuns(r.Context(), s.sourceKey, 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

func (p jobPayload) toJob() (schedule.Job, error) {
	job := schedule.Job{
		JobID:        p.JobID,
		JobName:      p.JobName,
		Branch:       p.Branch,
		CustomerName: p.CustomerName,
		Priority:     p.Priority,
		Status:       p.Status,
		Quantity:     p.Quantity,
		Notes:        p.Notes,
	}

	for _, d := range []struct {
		name  string
		raw   string
		field **time.Time
	}{
		{schedule.FieldStartDate, p.StartDate, &job.StartDate},
		{schedule.FieldCustomerRequestDate, p.CustomerRequestDate, &job.CustomerRequestDate},
		{schedule.FieldShipDate, p.ShipDate, &job.ShipDate},
		{schedule.FieldDueDate, p.DueDate, &job.DueDate},
	} {
		t, err := parseDateValue(d.raw)
		if err != nil {
			return schedule.Job{}, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.field = t
	}
	return job, nil
}

func parseDateValue(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(queryDateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("expected %s or RFC 3339 date, got %q", queryDateLayout, raw)
	}
	return &t, nil
}

// filterFromQuery builds a row filter from the request's query parameters.
func filterFromQuery(r *http.Request) (schedule.Filter, error) {
	q := r.URL.Query()
	f := schedule.Filter{
		Branch:   q.Get("branch"),
		Customer: q.Get("customer"),
		Priority: q.Get("priority"),
		Search:   q.Get("q"),
	}

	if raw := q.Get("status"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				f.Statuses = append(f.Statuses, v)
			}
		}
	}

	var err error
	if f.StartFrom, err = parseQueryDate(q.Get("from")); err != nil {
		return schedule.Filter{}, fmt.Errorf("invalid from: %w", err)
	}
	if f.StartTo, err = parseQueryDate(q.Get("to")); err != nil {
		return schedule.Filter{}, fmt.Errorf("invalid to: %w", err)
	}
	return f, nil
}

func parseQueryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("expected %s date, got %q", queryDateLayout, raw)
	}
	return &t, nil
}
