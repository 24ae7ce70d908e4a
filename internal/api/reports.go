package api

import (
	"net/http"

	"github.com/cloudboard/cloudboard/internal/auth"
)

type exportReportResponse struct {
	ObjectKey   string `json:"object_key"`
	RecordCount int64  `json:"record_count"`
	SizeBytes   int64  `json:"size_bytes"`
}

func handleExportCostReport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "REPORTS_NOT_CONFIGURED", "report dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	result, err := deps.Exporter.ExportMonthlyCosts(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "cost report export failed", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exportReportResponse{
		ObjectKey:   result.ObjectKey,
		RecordCount: result.RecordCount,
		SizeBytes:   result.SizeBytes,
	})
}
