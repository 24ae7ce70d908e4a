package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cloudboard/cloudboard/internal/auth"
	"github.com/cloudboard/cloudboard/internal/store"
)

const monthLayout = "2006-01"

type monthlyCostPayload struct {
	ProjectID       int64           `json:"project_id"`
	ResourceGroupID int64           `json:"resource_group_id"`
	Month           string          `json:"month"`
	Cost            decimal.Decimal `json:"cost"`
}

type upsertMonthlyCostRequest struct {
	ProjectID       int64           `json:"project_id"`
	ResourceGroupID int64           `json:"resource_group_id"`
	Month           string          `json:"month"`
	Cost            decimal.Decimal `json:"cost"`
}

type costDataPayload struct {
	ID              int64           `json:"id"`
	ProjectID       int64           `json:"project_id"`
	ResourceGroupID *int64          `json:"resource_group_id"`
	CostDate        string          `json:"cost_date"`
	ServiceName     string          `json:"service_name"`
	Cost            decimal.Decimal `json:"cost"`
	Currency        string          `json:"currency"`
}

type createCostDataRequest struct {
	ProjectID       int64           `json:"project_id"`
	ResourceGroupID *int64          `json:"resource_group_id"`
	CostDate        string          `json:"cost_date"`
	ServiceName     string          `json:"service_name"`
	Cost            decimal.Decimal `json:"cost"`
	Currency        string          `json:"currency"`
}

type costSummaryPayload struct {
	ProjectID             int64           `json:"project_id"`
	ResourceGroupID       int64           `json:"resource_group_id"`
	TotalCostToDate       decimal.Decimal `json:"total_cost_to_date"`
	CostsPassedBackToDate decimal.Decimal `json:"costs_passed_back_to_date"`
	GPTCostsToDate        decimal.Decimal `json:"gpt_costs_to_date"`
	GPTCostsPassedBack    decimal.Decimal `json:"gpt_costs_passed_back_to_date"`
	Remarks               string          `json:"remarks"`
	UpdatedDate           time.Time       `json:"updated_date"`
}

type upsertCostSummaryRequest struct {
	ProjectID             int64           `json:"project_id"`
	ResourceGroupID       int64           `json:"resource_group_id"`
	TotalCostToDate       decimal.Decimal `json:"total_cost_to_date"`
	CostsPassedBackToDate decimal.Decimal `json:"costs_passed_back_to_date"`
	GPTCostsToDate        decimal.Decimal `json:"gpt_costs_to_date"`
	GPTCostsPassedBack    decimal.Decimal `json:"gpt_costs_passed_back_to_date"`
	Remarks               string          `json:"remarks"`
}

func handleListMonthlyCosts(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	projectID, err := optionalProjectIDFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_INVALID", err.Error(), false, nil)
		return
	}

	costs, err := deps.Store.ListMonthlyCosts(r.Context(), projectID)
	if err != nil {
		writeStoreError(r, w, err, "monthly costs not found")
		return
	}
	payload := make([]monthlyCostPayload, 0, len(costs))
	for _, cost := range costs {
		payload = append(payload, monthlyCostPayload{
			ProjectID:       cost.ProjectID,
			ResourceGroupID: cost.ResourceGroupID,
			Month:           cost.Month.Format(monthLayout),
			Cost:            cost.Cost,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"monthly_costs": payload})
}

func handleUpsertMonthlyCost(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request upsertMonthlyCostRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid monthly cost body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.ProjectID <= 0 || request.ResourceGroupID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "IDS_REQUIRED", "project_id and resource_group_id are required", false, nil)
		return
	}
	month, err := parseMonth(request.Month)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "MONTH_INVALID", err.Error(), false, nil)
		return
	}
	if request.Cost.IsNegative() {
		writeError(r.Context(), w, http.StatusBadRequest, "COST_INVALID", "cost must not be negative", false, nil)
		return
	}

	cost, err := deps.Store.UpsertMonthlyCost(r.Context(), store.UpsertMonthlyCostInput{
		ProjectID:       request.ProjectID,
		ResourceGroupID: request.ResourceGroupID,
		Month:           month,
		Cost:            request.Cost,
	})
	if err != nil {
		writeStoreError(r, w, err, "monthly cost not found")
		return
	}
	writeJSON(w, http.StatusOK, monthlyCostPayload{
		ProjectID:       cost.ProjectID,
		ResourceGroupID: cost.ResourceGroupID,
		Month:           cost.Month.Format(monthLayout),
		Cost:            cost.Cost,
	})
}

func handleListCostData(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	projectID, err := optionalProjectIDFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_INVALID", err.Error(), false, nil)
		return
	}

	entries, err := deps.Store.ListCostData(r.Context(), projectID)
	if err != nil {
		writeStoreError(r, w, err, "cost data not found")
		return
	}
	payload := make([]costDataPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, costDataToPayload(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cost_data": payload})
}

func handleCreateCostData(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request createCostDataRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid cost data body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.ProjectID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_REQUIRED", "project_id is required", false, nil)
		return
	}
	if request.ResourceGroupID != nil && *request.ResourceGroupID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "RESOURCE_GROUP_ID_INVALID", "resource_group_id must be positive when present", false, nil)
		return
	}
	costDate, err := parseRequiredDate(request.CostDate)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "COST_DATE_INVALID", err.Error(), false, nil)
		return
	}
	if request.Cost.IsNegative() {
		writeError(r.Context(), w, http.StatusBadRequest, "COST_INVALID", "cost must not be negative", false, nil)
		return
	}

	entry, err := deps.Store.CreateCostData(r.Context(), store.CreateCostDataInput{
		ProjectID:       request.ProjectID,
		ResourceGroupID: request.ResourceGroupID,
		CostDate:        costDate,
		ServiceName:     request.ServiceName,
		Cost:            request.Cost,
		Currency:        request.Currency,
	})
	if err != nil {
		writeStoreError(r, w, err, "cost data not found")
		return
	}
	writeJSON(w, http.StatusCreated, costDataToPayload(entry))
}

func costDataToPayload(entry store.CostData) costDataPayload {
	return costDataPayload{
		ID:              entry.ID,
		ProjectID:       entry.ProjectID,
		ResourceGroupID: entry.ResourceGroupID,
		CostDate:        entry.CostDate.Format(dateLayout),
		ServiceName:     entry.ServiceName,
		Cost:            entry.Cost,
		Currency:        entry.Currency,
	}
}

func handleListCostSummaries(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	projectID, err := optionalProjectIDFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_INVALID", err.Error(), false, nil)
		return
	}

	summaries, err := deps.Store.ListProjectCostSummaries(r.Context(), projectID)
	if err != nil {
		writeStoreError(r, w, err, "cost summaries not found")
		return
	}
	payload := make([]costSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, costSummaryToPayload(summary))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cost_summaries": payload})
}

func handleUpsertCostSummary(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request upsertCostSummaryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid cost summary body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.ProjectID <= 0 || request.ResourceGroupID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "IDS_REQUIRED", "project_id and resource_group_id are required", false, nil)
		return
	}

	summary, err := deps.Store.UpsertProjectCostSummary(r.Context(), store.UpsertProjectCostSummaryInput{
		ProjectID:             request.ProjectID,
		ResourceGroupID:       request.ResourceGroupID,
		TotalCostToDate:       request.TotalCostToDate,
		CostsPassedBackToDate: request.CostsPassedBackToDate,
		GPTCostsToDate:        request.GPTCostsToDate,
		GPTCostsPassedBack:    request.GPTCostsPassedBack,
		Remarks:               request.Remarks,
	})
	if err != nil {
		writeStoreError(r, w, err, "cost summary not found")
		return
	}
	writeJSON(w, http.StatusOK, costSummaryToPayload(summary))
}

func costSummaryToPayload(summary store.ProjectCostSummary) costSummaryPayload {
	return costSummaryPayload{
		ProjectID:             summary.ProjectID,
		ResourceGroupID:       summary.ResourceGroupID,
		TotalCostToDate:       summary.TotalCostToDate,
		CostsPassedBackToDate: summary.CostsPassedBackToDate,
		GPTCostsToDate:        summary.GPTCostsToDate,
		GPTCostsPassedBack:    summary.GPTCostsPassedBack,
		Remarks:               summary.Remarks,
		UpdatedDate:           summary.UpdatedDate,
	}
}

func parseRequiredDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("cost_date is required")
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cost_date %q, expected YYYY-MM-DD", raw)
	}
	return parsed, nil
}

func parseMonth(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("month is required")
	}
	parsed, err := time.Parse(monthLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", raw)
	}
	return parsed, nil
}
