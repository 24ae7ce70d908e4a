package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudboard/cloudboard/internal/auth"
	"github.com/cloudboard/cloudboard/internal/chat"
	"github.com/cloudboard/cloudboard/internal/config"
	"github.com/cloudboard/cloudboard/internal/observability"
	"github.com/cloudboard/cloudboard/internal/report"
	"github.com/cloudboard/cloudboard/internal/store"
)

type ReadinessCheck func(ctx context.Context) error

// Store is the persistence surface the handlers need. The postgres
// repository satisfies it.
type Store interface {
	CreateProject(ctx context.Context, in store.CreateProjectInput) (store.Project, error)
	GetProject(ctx context.Context, projectID int64) (store.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]store.Project, error)
	UpdateProject(ctx context.Context, projectID int64, in store.UpdateProjectInput) (store.Project, error)
	DeleteProject(ctx context.Context, projectID int64) error
	CreateResourceGroup(ctx context.Context, in store.CreateResourceGroupInput) (store.ResourceGroup, error)
	GetResourceGroup(ctx context.Context, resourceGroupID int64) (store.ResourceGroup, error)
	ListResourceGroups(ctx context.Context, projectID int64, limit, offset int) ([]store.ResourceGroup, error)
	UpdateResourceGroup(ctx context.Context, resourceGroupID int64, in store.UpdateResourceGroupInput) (store.ResourceGroup, error)
	DeleteResourceGroup(ctx context.Context, resourceGroupID int64) error
	UpsertMonthlyCost(ctx context.Context, in store.UpsertMonthlyCostInput) (store.MonthlyCost, error)
	ListMonthlyCosts(ctx context.Context, projectID int64) ([]store.MonthlyCost, error)
	CreateCostData(ctx context.Context, in store.CreateCostDataInput) (store.CostData, error)
	ListCostData(ctx context.Context, projectID int64) ([]store.CostData, error)
	UpsertProjectCostSummary(ctx context.Context, in store.UpsertProjectCostSummaryInput) (store.ProjectCostSummary, error)
	ListProjectCostSummaries(ctx context.Context, projectID int64) ([]store.ProjectCostSummary, error)
	GetDashboardStats(ctx context.Context) (store.DashboardStats, error)
	GetCostTrends(ctx context.Context) ([]store.CostTrend, error)
	GetRegionalDistribution(ctx context.Context) ([]store.RegionalCost, error)
}

type ChatService interface {
	Chat(ctx context.Context, message, conversationID string) (chat.Result, error)
}

type ReportExporter interface {
	ExportMonthlyCosts(ctx context.Context) (report.ExportResult, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Store             Store
	Chat              ChatService
	Exporter          ReportExporter
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})

	protected.HandleFunc("GET /v1/projects", func(w http.ResponseWriter, r *http.Request) {
		handleListProjects(deps, w, r)
	})
	protected.HandleFunc("POST /v1/projects", func(w http.ResponseWriter, r *http.Request) {
		handleCreateProject(deps, w, r)
	})
	protected.HandleFunc("GET /v1/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetProject(deps, w, r)
	})
	protected.HandleFunc("PATCH /v1/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		handlePatchProject(deps, w, r)
	})
	protected.HandleFunc("DELETE /v1/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteProject(deps, w, r)
	})

	protected.HandleFunc("GET /v1/resource-groups", func(w http.ResponseWriter, r *http.Request) {
		handleListResourceGroups(deps, w, r)
	})
	protected.HandleFunc("POST /v1/resource-groups", func(w http.ResponseWriter, r *http.Request) {
		handleCreateResourceGroup(deps, w, r)
	})
	protected.HandleFunc("GET /v1/resource-groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetResourceGroup(deps, w, r)
	})
	protected.HandleFunc("PATCH /v1/resource-groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		handlePatchResourceGroup(deps, w, r)
	})
	protected.HandleFunc("DELETE /v1/resource-groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteResourceGroup(deps, w, r)
	})

	protected.HandleFunc("GET /v1/costs/monthly", func(w http.ResponseWriter, r *http.Request) {
		handleListMonthlyCosts(deps, w, r)
	})
	protected.HandleFunc("PUT /v1/costs/monthly", func(w http.ResponseWriter, r *http.Request) {
		handleUpsertMonthlyCost(deps, w, r)
	})
	protected.HandleFunc("GET /v1/costs/data", func(w http.ResponseWriter, r *http.Request) {
		handleListCostData(deps, w, r)
	})
	protected.HandleFunc("POST /v1/costs/data", func(w http.ResponseWriter, r *http.Request) {
		handleCreateCostData(deps, w, r)
	})
	protected.HandleFunc("GET /v1/costs/summary", func(w http.ResponseWriter, r *http.Request) {
		handleListCostSummaries(deps, w, r)
	})
	protected.HandleFunc("PUT /v1/costs/summary", func(w http.ResponseWriter, r *http.Request) {
		handleUpsertCostSummary(deps, w, r)
	})

	protected.HandleFunc("GET /v1/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		handleDashboardStats(deps, w, r)
	})
	protected.HandleFunc("GET /v1/dashboard/cost-trends", func(w http.ResponseWriter, r *http.Request) {
		handleCostTrends(deps, w, r)
	})
	protected.HandleFunc("GET /v1/dashboard/regional-distribution", func(w http.ResponseWriter, r *http.Request) {
		handleRegionalDistribution(deps, w, r)
	})

	protected.HandleFunc("POST /v1/reports/costs/export", func(w http.ResponseWriter, r *http.Request) {
		handleExportCostReport(deps, w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/chat", protectedHandler)
	mux.Handle("GET /v1/projects", protectedHandler)
	mux.Handle("POST /v1/projects", protectedHandler)
	mux.Handle("GET /v1/projects/{id}", protectedHandler)
	mux.Handle("PATCH /v1/projects/{id}", protectedHandler)
	mux.Handle("DELETE /v1/projects/{id}", protectedHandler)
	mux.Handle("GET /v1/resource-groups", protectedHandler)
	mux.Handle("POST /v1/resource-groups", protectedHandler)
	mux.Handle("GET /v1/resource-groups/{id}", protectedHandler)
	mux.Handle("PATCH /v1/resource-groups/{id}", protectedHandler)
	mux.Handle("DELETE /v1/resource-groups/{id}", protectedHandler)
	mux.Handle("GET /v1/costs/monthly", protectedHandler)
	mux.Handle("PUT /v1/costs/monthly", protectedHandler)
	mux.Handle("GET /v1/costs/data", protectedHandler)
	mux.Handle("POST /v1/costs/data", protectedHandler)
	mux.Handle("GET /v1/costs/summary", protectedHandler)
	mux.Handle("PUT /v1/costs/summary", protectedHandler)
	mux.Handle("GET /v1/dashboard/stats", protectedHandler)
	mux.Handle("GET /v1/dashboard/cost-trends", protectedHandler)
	mux.Handle("GET /v1/dashboard/regional-distribution", protectedHandler)
	mux.Handle("POST /v1/reports/costs/export", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckDatabaseDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Database.DSN == "" {
			return errors.New("database dsn is not configured")
		}
		return nil
	}
}

func CheckObjectStoreConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.ObjectStore.Endpoint == "" {
			return errors.New("object store endpoint is not configured")
		}
		if cfg.ObjectStore.Bucket == "" {
			return errors.New("object store bucket is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeStoreError(r *http.Request, w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "NOT_FOUND", notFoundMessage, false, nil)
		return
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "storage operation failed", true, map[string]any{"details": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}

func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
