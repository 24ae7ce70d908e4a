package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateAndGetProject(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	body := `{"project_name":"Atlas Migration","project_type":"client","deployed_region":"westeurope","project_startdate":"2025-01-15"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %q", rr.Code, rr.Body.String())
	}

	var created projectPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == 0 || !created.IsActive {
		t.Fatalf("created = %+v", created)
	}
	if created.ProjectStartDate == nil || *created.ProjectStartDate != "2025-01-15" {
		t.Fatalf("start date = %v", created.ProjectStartDate)
	}

	getResp := httptest.NewRecorder()
	h.ServeHTTP(getResp, httptest.NewRequest(http.MethodGet, "/v1/projects/1", nil))
	if getResp.Code != http.StatusOK {
		t.Fatalf("get status = %d", getResp.Code)
	}
	if !strings.Contains(getResp.Body.String(), "Atlas Migration") {
		t.Fatalf("get body = %q", getResp.Body.String())
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(`{"project_type":"client"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestCreateProjectRejectsBadDate(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(`{"project_name":"x","project_startdate":"15.01.2025"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/projects/404", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestPatchProjectUpdatesFields(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(`{"project_name":"Atlas Migration"}`)))
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d", create.Code)
	}

	patch := httptest.NewRecorder()
	h.ServeHTTP(patch, httptest.NewRequest(http.MethodPatch, "/v1/projects/1", strings.NewReader(`{"is_active":false,"description":"wrapped up"}`)))
	if patch.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %q", patch.Code, patch.Body.String())
	}

	var updated projectPayload
	if err := json.Unmarshal(patch.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode patch response: %v", err)
	}
	if updated.IsActive || updated.Description != "wrapped up" {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestDeleteProject(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(`{"project_name":"Atlas Migration"}`)))
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d", create.Code)
	}

	del := httptest.NewRecorder()
	h.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/v1/projects/1", nil))
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.Code)
	}

	again := httptest.NewRecorder()
	h.ServeHTTP(again, httptest.NewRequest(http.MethodDelete, "/v1/projects/1", nil))
	if again.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", again.Code)
	}
}

func TestListProjectsRejectsBadPagination(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/projects?limit=0", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestResourceGroupLifecycle(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/resource-groups", strings.NewReader(`{"resource_group_name":"rg-atlas-prod","project_id":12}`)))
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %q", create.Code, create.Body.String())
	}
	var group resourceGroupPayload
	if err := json.Unmarshal(create.Body.Bytes(), &group); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if group.Status != "active" {
		t.Fatalf("status = %q", group.Status)
	}

	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/v1/resource-groups?project_id=12", nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), "rg-atlas-prod") {
		t.Fatalf("list body = %q", list.Body.String())
	}

	filtered := httptest.NewRecorder()
	h.ServeHTTP(filtered, httptest.NewRequest(http.MethodGet, "/v1/resource-groups?project_id=99", nil))
	if strings.Contains(filtered.Body.String(), "rg-atlas-prod") {
		t.Fatalf("filtered body = %q", filtered.Body.String())
	}

	patchURL := fmt.Sprintf("/v1/resource-groups/%d", group.ID)
	patch := httptest.NewRecorder()
	h.ServeHTTP(patch, httptest.NewRequest(http.MethodPatch, patchURL, strings.NewReader(`{"status":"decommissioned"}`)))
	if patch.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %q", patch.Code, patch.Body.String())
	}
	var patched resourceGroupPayload
	if err := json.Unmarshal(patch.Body.Bytes(), &patched); err != nil {
		t.Fatalf("decode patch response: %v", err)
	}
	if patched.Status != "decommissioned" {
		t.Fatalf("patched status = %q", patched.Status)
	}
	if patched.ResourceGroupName != "rg-atlas-prod" {
		t.Fatalf("patched name = %q, want unchanged", patched.ResourceGroupName)
	}
}

func TestPatchResourceGroupValidation(t *testing.T) {
	fake := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fake})

	missing := httptest.NewRecorder()
	h.ServeHTTP(missing, httptest.NewRequest(http.MethodPatch, "/v1/resource-groups/42", strings.NewReader(`{"status":"active"}`)))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", missing.Code)
	}

	create := httptest.NewRecorder()
	h.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/v1/resource-groups", strings.NewReader(`{"resource_group_name":"rg-1","project_id":1}`)))
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d", create.Code)
	}
	var group resourceGroupPayload
	if err := json.Unmarshal(create.Body.Bytes(), &group); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	emptyName := httptest.NewRecorder()
	h.ServeHTTP(emptyName, httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/v1/resource-groups/%d", group.ID), strings.NewReader(`{"resource_group_name":"  "}`)))
	if emptyName.Code != http.StatusBadRequest {
		t.Fatalf("empty name status = %d", emptyName.Code)
	}
}

func TestCreateResourceGroupValidation(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})

	missingName := httptest.NewRecorder()
	h.ServeHTTP(missingName, httptest.NewRequest(http.MethodPost, "/v1/resource-groups", strings.NewReader(`{"project_id":12}`)))
	if missingName.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d", missingName.Code)
	}

	missingProject := httptest.NewRecorder()
	h.ServeHTTP(missingProject, httptest.NewRequest(http.MethodPost, "/v1/resource-groups", strings.NewReader(`{"resource_group_name":"rg"}`)))
	if missingProject.Code != http.StatusBadRequest {
		t.Fatalf("missing project status = %d", missingProject.Code)
	}
}
