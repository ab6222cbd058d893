package main

import (
	"log/slog"
	"net/http"

	"github.com/CTAG07/wordweaver/pkg/registry"
)

// ModelStatsResponse is the per-model entry of the stats summary.
type ModelStatsResponse struct {
	Name           string `json:"name"`
	Symbols        int    `json:"symbols"`
	Transitions    int    `json:"transitions"`
	TotalFrequency int64  `json:"total_frequency"`
}

// StatsSummary provides a high-level overview of the registry.
type StatsSummary struct {
	TotalModels    int                  `json:"total_models"`
	TotalFrequency int64                `json:"total_frequency"`
	Models         []ModelStatsResponse `json:"models"`
}

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	reg    *registry.Registry
	logger *slog.Logger
}

func NewStatsAPI(reg *registry.Registry, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		reg:    reg,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	stats, err := s.reg.GetStats(r.Context())
	if err != nil {
		s.logger.Error("Failed to get registry stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	summary := StatsSummary{
		TotalModels:    len(stats.Models),
		TotalFrequency: stats.TotalFrequency,
		Models:         make([]ModelStatsResponse, 0, len(stats.Models)),
	}
	for _, m := range stats.Models {
		ms := stats.Stats[m.Id]
		summary.Models = append(summary.Models, ModelStatsResponse{
			Name:           m.Name,
			Symbols:        ms.Vertices,
			Transitions:    ms.Transitions,
			TotalFrequency: ms.TotalFrequency,
		})
	}
	respondWithJSON(w, http.StatusOK, summary)
}
