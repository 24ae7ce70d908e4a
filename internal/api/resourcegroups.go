package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudboard/cloudboard/internal/auth"
	"github.com/cloudboard/cloudboard/internal/store"
)

type resourceGroupPayload struct {
	ID                int64  `json:"id"`
	ResourceGroupName string `json:"resource_group_name"`
	ProjectID         int64  `json:"project_id"`
	Status            string `json:"status"`
}

type createResourceGroupRequest struct {
	ResourceGroupName string `json:"resource_group_name"`
	ProjectID         int64  `json:"project_id"`
	Status            string `json:"status"`
}

type patchResourceGroupRequest struct {
	ResourceGroupName *string `json:"resource_group_name"`
	Status            *string `json:"status"`
}

func handleListResourceGroups(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	limit, offset, err := paginationFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PAGINATION_INVALID", err.Error(), false, nil)
		return
	}
	projectID, err := optionalProjectIDFromQuery(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_INVALID", err.Error(), false, nil)
		return
	}

	groups, err := deps.Store.ListResourceGroups(r.Context(), projectID, limit, offset)
	if err != nil {
		writeStoreError(r, w, err, "resource groups not found")
		return
	}
	payload := make([]resourceGroupPayload, 0, len(groups))
	for _, group := range groups {
		payload = append(payload, resourceGroupToPayload(group))
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource_groups": payload})
}

func handleCreateResourceGroup(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleDashboardWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request createResourceGroupRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid resource group body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.ResourceGroupName) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "RESOURCE_GROUP_NAME_REQUIRED", "resource_group_name is required", false, nil)
		return
	}
	if request.ProjectID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "PROJECT_ID_REQUIRED", "project_id is required", false, nil)
		return
	}

	group, err := deps.Store.CreateResourceGroup(r.Context(), store.CreateResourceGroupInput{
		ResourceGroupName: request.ResourceGroupName,
		ProjectID:         request.ProjectID,
		Status:            request.Status,
	})
	if err != nil {
		writeStoreError(r, w, err, "resource group not found")
		return
	}
	writeJSON(w, http.StatusCreated, resourceGroupToPayload(group))
}

func handleGetResourceGroup(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "store is not configured", false, nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "ID_INVALID", err.Error(), false, nil)
		return
	}
	group, err := deps.Store.GetResourceGroup(r.Context(), id)
	if err != nil {
		writeStoreError(r, w, err, "resource group not found")
		return
	}
	writeJSON(w, http.StatusOK, resourceGroupToPayload(group))
}

func handlePatchResourceGroup(deps Dependencies, w http.ResponseWriter, r *http.Request) {
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

	var request patchResourceGroupRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid resource group body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.ResourceGroupName != nil && strings.TrimSpace(*request.ResourceGroupName) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "RESOURCE_GROUP_NAME_REQUIRED", "resource_group_name must not be empty", false, nil)
		return
	}

	group, err := deps.Store.UpdateResourceGroup(r.Context(), id, store.UpdateResourceGroupInput{
		ResourceGroupName: request.ResourceGroupName,
		Status:            request.Status,
	})
	if err != nil {
		writeStoreError(r, w, err, "resource group not found")
		return
	}
	writeJSON(w, http.StatusOK, resourceGroupToPayload(group))
}

func handleDeleteResourceGroup(deps Dependencies, w http.ResponseWriter, r *http.Request) {
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
	if err := deps.Store.DeleteResourceGroup(r.Context(), id); err != nil {
		writeStoreError(r, w, err, "resource group not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func resourceGroupToPayload(group store.ResourceGroup) resourceGroupPayload {
	return resourceGroupPayload{
		ID:                group.ID,
		ResourceGroupName: group.ResourceGroupName,
		ProjectID:         group.ProjectID,
		Status:            group.Status,
	}
}

func optionalProjectIDFromQuery(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		return 0, nil
	}
	projectID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || projectID <= 0 {
		return 0, fmt.Errorf("project_id must be a positive integer")
	}
	return projectID, nil
}
