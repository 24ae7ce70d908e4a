package api

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type dashboardStatsResponse struct {
	TotalProjects  int64           `json:"total_projects"`
	ActiveProjects int64           `json:"active_projects"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

type costTrendPayload struct {
	Month     string          `json:"month"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type regionalCostPayload struct {
	Region    string          `json:"region"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func handleDashboardStats(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	stats, err := deps.Store.GetDashboardStats(r.Context())
	if err != nil {
		writeStoreError(r, w, err, "dashboard stats not found")
		return
	}
	writeJSON(w, http.StatusOK, dashboardStatsResponse{
		TotalProjects:  stats.TotalProjects,
		ActiveProjects: stats.ActiveProjects,
		TotalCost:      stats.TotalCost,
	})
}

func handleCostTrends(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	trends, err := deps.Store.GetCostTrends(r.Context())
	if err != nil {
		writeStoreError(r, w, err, "cost trends not found")
		return
	}
	payload := make([]costTrendPayload, 0, len(trends))
	for _, trend := range trends {
		payload = append(payload, costTrendPayload{
			Month:     trend.Month.Format(monthLayout),
			TotalCost: trend.TotalCost,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cost_trends": payload})
}

func handleRegionalDistribution(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	distribution, err := deps.Store.GetRegionalDistribution(r.Context())
	if err != nil {
		writeStoreError(r, w, err, "regional distribution not found")
		return
	}
	payload := make([]regionalCostPayload, 0, len(distribution))
	for _, regional := range distribution {
		payload = append(payload, regionalCostPayload{
			Region:    regional.Region,
			TotalCost: regional.TotalCost,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"regional_distribution": payload})
}
