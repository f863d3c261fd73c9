package http

import (
	"net/http"
	"strconv"
	"time"

	"txdash/internal/log"
)

// HeaderTotalCount carries the number of transactions matching a list query.
const HeaderTotalCount = "X-Total-Count"

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := parseList(r.URL.Query())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	page, err := s.queries.ListTransactions(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, r, log.OpListTransactions, "Error fetching data", err)
		return
	}
	w.Header().Set(HeaderTotalCount, strconv.Itoa(page.Total))
	writeJSON(w, http.StatusOK, page.Items)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	stats, err := s.queries.GetStatistics(r.Context(), month)
	if err != nil {
		s.writeServiceError(w, r, log.OpStatistics, "Error fetching statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	hist, err := s.queries.GetBarChart(r.Context(), month)
	if err != nil {
		s.writeServiceError(w, r, log.OpBarChart, "Error fetching bar chart data", err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	dist, err := s.queries.GetPieChart(r.Context(), month)
	if err != nil {
		s.writeServiceError(w, r, log.OpPieChart, "Error fetching pie chart data", err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	p, err := parseList(r.URL.Query())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	combined, err := s.queries.GetCombined(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, r, log.OpCombined, "Error fetching combined data", err)
		return
	}
	w.Header().Set(HeaderTotalCount, strconv.Itoa(combined.Total))
	writeJSON(w, http.StatusOK, combined)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the server accepts traffic. It does not touch
// the dataset source.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{"server": "ok"}
	if s.shuttingDown.Load() {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["server"] = "shutting down"
	}
	traffic := s.tracer.GetMetrics()
	checks["http"] = map[string]any{
		"total_requests":        traffic.TotalRequests,
		"last_response_time_us": traffic.LastResponseTimeUs,
	}
	if s.limiter != nil {
		rl := s.limiter.GetMetrics()
		checks["rate_limiter"] = map[string]any{
			"active_clients": rl.ClientCount,
			"rejected_total": rl.TotalHits,
			"status":         "ok",
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RateLimited()
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.NewFields().
			WithErrorType(log.ErrorTypeRateLimit).
			WithClientIP(s.ipResolver.ExtractClientIP(r)).
			ToSlice()...)
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
