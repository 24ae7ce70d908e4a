package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudboard/cloudboard/internal/chat"
)

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body)))
	return rr
}

func TestChatEndpointReturnsResult(t *testing.T) {
	sqlText := "SELECT id FROM project;"
	service := &fakeChatService{result: chat.Result{
		Response:       "Found 1 project.\n\nQuery Results:\nid: 1",
		SQLQuery:       sqlText,
		ConversationID: "conv-1",
	}}
	h := NewHandler(testConfig(t, nil), Dependencies{Chat: service})

	rr := postChat(t, h, `{"message":"how many projects?","conversation_id":"conv-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}

	var response chatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ConversationID != "conv-1" {
		t.Fatalf("conversation_id = %q", response.ConversationID)
	}
	if response.SQLQuery == nil || *response.SQLQuery != sqlText {
		t.Fatalf("sql_query = %v", response.SQLQuery)
	}
}

func TestChatEndpointOmitsSQLWhenNoneExtracted(t *testing.T) {
	service := &fakeChatService{result: chat.Result{Response: "no data for that", ConversationID: "conv-2"}}
	h := NewHandler(testConfig(t, nil), Dependencies{Chat: service})

	rr := postChat(t, h, `{"message":"tell me a joke"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var response struct {
		SQLQuery *string `json:"sql_query"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.SQLQuery != nil {
		t.Fatalf("sql_query = %v, want null", *response.SQLQuery)
	}
}

func TestChatEndpointRejectsInvalidMessages(t *testing.T) {
	service := &fakeChatService{result: chat.Result{Response: "ok", ConversationID: "c"}}
	h := NewHandler(testConfig(t, nil), Dependencies{Chat: service})

	bodies := []string{
		`{"message":""}`,
		`{"message":"   "}`,
		`{"message":"` + strings.Repeat("a", 1001) + `"}`,
		`{"message":"select <script>"}`,
		`{"message":"it's fine"}`,
		`{"message":"hi","conversation_id":"bad id with spaces"}`,
		`{"message":"hi","conversation_id":"` + strings.Repeat("x", 101) + `"}`,
	}
	for _, body := range bodies {
		rr := postChat(t, h, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d for body %q", rr.Code, body)
		}
	}
	if len(service.calls) != 0 {
		t.Fatalf("chat service called %d times for invalid input", len(service.calls))
	}
}

func TestChatEndpointMessageLengthIsRuneBased(t *testing.T) {
	service := &fakeChatService{result: chat.Result{Response: "ok", ConversationID: "c"}}
	h := NewHandler(testConfig(t, nil), Dependencies{Chat: service})

	// 1000 two-byte runes: within the character cap despite 2000 bytes.
	rr := postChat(t, h, `{"message":"`+strings.Repeat("ü", 1000)+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d for 1000-rune message, body = %q", rr.Code, rr.Body.String())
	}

	rr = postChat(t, h, `{"message":"`+strings.Repeat("ü", 1001)+`"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for 1001-rune message", rr.Code)
	}
}

func TestChatEndpointSurfacesServiceFailureAs500(t *testing.T) {
	service := &fakeChatService{err: errors.New("bookkeeping failed")}
	h := NewHandler(testConfig(t, nil), Dependencies{Chat: service})

	rr := postChat(t, h, `{"message":"hello"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "bookkeeping failed") {
		t.Fatalf("internal error text leaked: %q", rr.Body.String())
	}
}

func TestChatEndpointNotConfigured(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{})
	rr := postChat(t, h, `{"message":"hello"}`)
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}
