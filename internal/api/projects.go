package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudboard/cloudboard/internal/auth"
	"github.com/cloudboard/cloudboard/internal/store"
)

const dateLayout = "2006-01-02"

type projectPayload struct {
	ID                int64   `json:"id"`
	ProjectName       string  `json:"project_name"`
	ProjectType       string  `json:"project_type"`
	MemberFirm        string  `json:"member_firm"`
	DeployedRegion    string  `json:"deployed_region"`
	IsActive          bool    `json:"is_active"`
	Description       string  `json:"description"`
	EngagementCode    string  `json:"engagement_code"`
	EngagementPartner string  `json:"engagement_partner"`
	OpportunityCode   string  `json:"opportunity_code"`
	EngagementManager string  `json:"engagement_manager"`
	ProjectStartDate  *string `json:"project_startdate"`
	ProjectEndDate    *string `json:"project_enddate"`
}

type createProjectRequest struct {
	ProjectName       string  `json:"project_name"`
	ProjectType       string  `json:"project_type"`
	MemberFirm        string  `json:"member_firm"`
	DeployedRegion    string  `json:"deployed_region"`
	IsActive          *bool   `json:"is_active"`
	Description       string  `json:"description"`
	EngagementCode    string  `json:"engagement_code"`
	EngagementPartner string  `json:"engagement_partner"`
	OpportunityCode   string  `json:"opportunity_code"`
	EngagementManager string  `json:"engagement_manager"`
	ProjectStartDate  *string `json:"project_startdate"`
	ProjectEndDate    *string `json:"project_enddate"`
}

type patchProjectRequest struct {
	ProjectName       *string `json:"project_name"`
	ProjectType       *string `json:"project_type"`
	MemberFirm        *string `json:"member_firm"`
	DeployedRegion    *string `json:"deployed_region"`
	IsActive          *bool   `json:"is_active"`
	Description       *string `json:"description"`
	EngagementManager *string `json:"engagement_manager"`
	ProjectEndDate    *string `json:"project_enddate"`
}

func handleListProjects(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	limit, offset, err := paginationFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PAGINATION_INVALID", err.Error(), false, nil)
		return
	}
	projects, err := deps.Store.ListProjects(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(r, w, err, "projects not found")
		return
	}
	payload := make([]projectPayload, 0, len(projects))
	for _, project := range projects {
		payload = append(payload, projectToPayload(project))
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": payload})
}

func handleCreateProject(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request createProjectRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid project body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.ProjectName) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_NAME_REQUIRED", "project_name is required", false, nil)
		return
	}

	startDate, err := parseOptionalDate(request.ProjectStartDate)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "DATE_INVALID", err.Error(), false, nil)
		return
	}
	endDate, err := parseOptionalDate(request.ProjectEndDate)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "DATE_INVALID", err.Error(), false, nil)
		return
	}

	isActive := true
	if request.IsActive != nil {
		isActive = *request.IsActive
	}

	project, err := deps.Store.CreateProject(r.Context(), store.CreateProjectInput{
		ProjectName:       request.ProjectName,
		ProjectType:       request.ProjectType,
		MemberFirm:        request.MemberFirm,
		DeployedRegion:    request.DeployedRegion,
		IsActive:          isActive,
		Description:       request.Description,
		EngagementCode:    request.EngagementCode,
		EngagementPartner: request.EngagementPartner,
		OpportunityCode:   request.OpportunityCode,
		EngagementManager: request.EngagementManager,
		ProjectStartDate:  startDate,
		ProjectEndDate:    endDate,
	})
	if err != nil {
		writeStoreError(r, w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, projectToPayload(project))
}

func handleGetProject(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "ID_INVALID", err.Error(), false, nil)
		return
	}
	project, err := deps.Store.GetProject(r.Context(), id)
	if err != nil {
		writeStoreError(r, w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, projectToPayload(project))
}

func handlePatchProject(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "ID_INVALID", err.Error(), false, nil)
		return
	}

	var request patchProjectRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid project body", false, map[string]any{"details": err.Error()})
		return
	}

	input := store.UpdateProjectInput{
		ProjectName:       request.ProjectName,
		ProjectType:       request.ProjectType,
		MemberFirm:        request.MemberFirm,
		DeployedRegion:    request.DeployedRegion,
		IsActive:          request.IsActive,
		Description:       request.Description,
		EngagementManager: request.EngagementManager,
	}
	if request.ProjectEndDate != nil {
		endDate, err := parseOptionalDate(request.ProjectEndDate)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "DATE_INVALID", err.Error(), false, nil)
			return
		}
		input.ProjectEndDate = endDate
	}

	project, err := deps.Store.UpdateProject(r.Context(), id, input)
	if err != nil {
		writeStoreError(r, w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, projectToPayload(project))
}

func handleDeleteProject(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "ID_INVALID", err.Error(), false, nil)
		return
	}
	if err := deps.Store.DeleteProject(r.Context(), id); err != nil {
		writeStoreError(r, w, err, "project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectToPayload(project store.Project) projectPayload {
	return projectPayload{
		ID:                project.ID,
		ProjectName:       project.ProjectName,
		ProjectType:       project.ProjectType,
		MemberFirm:        project.MemberFirm,
		DeployedRegion:    project.DeployedRegion,
		IsActive:          project.IsActive,
		Description:       project.Description,
		EngagementCode:    project.EngagementCode,
		EngagementPartner: project.EngagementPartner,
		OpportunityCode:   project.OpportunityCode,
		EngagementManager: project.EngagementManager,
		ProjectStartDate:  formatOptionalDate(project.ProjectStartDate),
		ProjectEndDate:    formatOptionalDate(project.ProjectEndDate),
	}
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *raw)
	}
	return &parsed, nil
}

func formatOptionalDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}

func paginationFromQuery(r *http.Request) (int, int, error) {
	limit := 100
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			return 0, 0, fmt.Errorf("limit must be between 1 and 1000")
		}
		limit = parsed
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("offset must be non-negative")
		}
		offset = parsed
	}
	return limit, offset, nil
}
