package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cloudboard/cloudboard/internal/store"
)

func TestUpsertAndListMonthlyCosts(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	put := httptest.NewRecorder()
	h.ServeHTTP(put, httptest.NewRequest(http.MethodPut, "/v1/costs/monthly", strings.NewReader(`{"project_id":12,"resource_group_id":7,"month":"2025-06","cost":"1234.56"}`)))
	if put.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %q", put.Code, put.Body.String())
	}

	var cost monthlyCostPayload
	if err := json.Unmarshal(put.Body.Bytes(), &cost); err != nil {
		t.Fatalf("decode put response: %v", err)
	}
	if cost.Month != "2025-06" || !cost.Cost.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("cost = %+v", cost)
	}

	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/v1/costs/monthly?project_id=12", nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), "2025-06") {
		t.Fatalf("list body = %q", list.Body.String())
	}
}

func TestCreateAndListCostData(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/costs/data", strings.NewReader(`{"project_id":12,"resource_group_id":7,"cost_date":"2025-06-15","service_name":"virtual-machines","cost":"42.10"}`)))
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %q", create.Code, create.Body.String())
	}

	var entry costDataPayload
	if err := json.Unmarshal(create.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if entry.CostDate != "2025-06-15" || entry.Currency != "USD" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.ResourceGroupID == nil || *entry.ResourceGroupID != 7 {
		t.Fatalf("resource_group_id = %v", entry.ResourceGroupID)
	}

	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/v1/costs/data?project_id=12", nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), "virtual-machines") {
		t.Fatalf("list body = %q", list.Body.String())
	}

	filtered := httptest.NewRecorder()
	h.ServeHTTP(filtered, httptest.NewRequest(http.MethodGet, "/v1/costs/data?project_id=99", nil))
	if strings.Contains(filtered.Body.String(), "virtual-machines") {
		t.Fatalf("filtered body = %q", filtered.Body.String())
	}
}

func TestCreateCostDataValidation(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})

	bodies := []string{
		`{"cost_date":"2025-06-15","cost":"10"}`,
		`{"project_id":12,"cost_date":"15.06.2025","cost":"10"}`,
		`{"project_id":12,"cost_date":"2025-06-15","cost":"-1"}`,
		`{"project_id":12,"resource_group_id":0,"cost_date":"2025-06-15","cost":"10"}`,
	}
	for _, body := range bodies {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/costs/data", strings.NewReader(body)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d for body %q", rr.Code, body)
		}
	}
}

func TestUpsertMonthlyCostValidation(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})

	badMonth := httptest.NewRecorder()
	h.ServeHTTP(badMonth, httptest.NewRequest(http.MethodPut, "/v1/costs/monthly", strings.NewReader(`{"project_id":12,"resource_group_id":7,"month":"June 2025","cost":"10"}`)))
	if badMonth.Code != http.StatusBadRequest {
		t.Fatalf("bad month status = %d", badMonth.Code)
	}

	negative := httptest.NewRecorder()
	h.ServeHTTP(negative, httptest.NewRequest(http.MethodPut, "/v1/costs/monthly", strings.NewReader(`{"project_id":12,"resource_group_id":7,"month":"2025-06","cost":"-5"}`)))
	if negative.Code != http.StatusBadRequest {
		t.Fatalf("negative cost status = %d", negative.Code)
	}

	missingIDs := httptest.NewRecorder()
	h.ServeHTTP(missingIDs, httptest.NewRequest(http.MethodPut, "/v1/costs/monthly", strings.NewReader(`{"month":"2025-06","cost":"10"}`)))
	if missingIDs.Code != http.StatusBadRequest {
		t.Fatalf("missing ids status = %d", missingIDs.Code)
	}
}

func TestUpsertCostSummary(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	put := httptest.NewRecorder()
	h.ServeHTTP(put, httptest.NewRequest(http.MethodPut, "/v1/costs/summary", strings.NewReader(`{"project_id":12,"resource_group_id":7,"total_cost_to_date":"45210.80","remarks":"Q2 reconciliation"}`)))
	if put.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %q", put.Code, put.Body.String())
	}
	if !strings.Contains(put.Body.String(), "Q2 reconciliation") {
		t.Fatalf("put body = %q", put.Body.String())
	}

	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/v1/costs/summary", nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	fake := newFakeStore()
	fake.stats = store.DashboardStats{TotalProjects: 9, ActiveProjects: 6, TotalCost: decimal.RequireFromString("45210.80")}
	fake.trends = []store.CostTrend{{Month: mustMonth(t, "2025-06"), TotalCost: decimal.RequireFromString("1100.50")}}
	fake.regional = []store.RegionalCost{{Region: "westeurope", TotalCost: decimal.RequireFromString("1200.00")}}
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	stats := httptest.NewRecorder()
	h.ServeHTTP(stats, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	if stats.Code != http.StatusOK {
		t.Fatalf("stats status = %d", stats.Code)
	}
	var statsPayload dashboardStatsResponse
	if err := json.Unmarshal(stats.Body.Bytes(), &statsPayload); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if statsPayload.TotalProjects != 9 || statsPayload.ActiveProjects != 6 {
		t.Fatalf("stats = %+v", statsPayload)
	}

	trends := httptest.NewRecorder()
	h.ServeHTTP(trends, httptest.NewRequest(http.MethodGet, "/v1/dashboard/cost-trends", nil))
	if trends.Code != http.StatusOK || !strings.Contains(trends.Body.String(), "2025-06") {
		t.Fatalf("trends status = %d body = %q", trends.Code, trends.Body.String())
	}

	regional := httptest.NewRecorder()
	h.ServeHTTP(regional, httptest.NewRequest(http.MethodGet, "/v1/dashboard/regional-distribution", nil))
	if regional.Code != http.StatusOK || !strings.Contains(regional.Body.String(), "westeurope") {
		t.Fatalf("regional status = %d body = %q", regional.Code, regional.Body.String())
	}
}

func mustMonth(t *testing.T, raw string) (parsed time.Time) {
	t.Helper()
	parsed, err := time.Parse(monthLayout, raw)
	if err != nil {
		t.Fatalf("parse month %q: %v", raw, err)
	}
	return parsed
}
