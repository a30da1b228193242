package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

func yearParam(r *http.Request) int {
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			return y
		}
	}
	return 0
}

// dashboard serves the summary through the cache; the PNG handlers reuse
// the same cached aggregate.
func (s *Server) dashboard(r *http.Request, year int) (services.DashboardSummary, error) {
	userID := s.userID(r)
	if year == 0 {
		year = time.Now().Year()
	}
	key := userID + ":summary:" + strconv.Itoa(year)

	if data, found := s.dashCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "dashboard cache hit",
			log.FieldUserID, userID, log.FieldYear, year)
		return data, nil
	}

	data, err := s.ledger.Dashboard(r.Context(), userID, year, time.Now())
	if err != nil {
		return services.DashboardSummary{}, err
	}
	s.dashCache.Set(key, data)
	return data, nil
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard(r, yearParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	year := yearParam(r)
	data, err := s.dashboard(r, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := s.userID(r) + ":trend:" + strconv.Itoa(data.Year)
	png, found := s.pngCache.Get(key)
	if !found {
		png, err = s.charts.MonthlyTrendChart(data.Trend, data.Year)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.pngCache.Set(key, png)
	}
	if png == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no expenses recorded for this year"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	year := yearParam(r)
	data, err := s.dashboard(r, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := s.userID(r) + ":categories:" + strconv.Itoa(data.Year)
	png, found := s.pngCache.Get(key)
	if !found {
		png, err = s.charts.CategoryPieChart(data.Categories)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.pngCache.Set(key, png)
	}
	if png == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no expenses recorded for this year"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
