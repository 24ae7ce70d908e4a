package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudboard/cloudboard/internal/auth"
)

// maxChatMessageLength bounds the message in runes, not bytes.
const maxChatMessageLength = 1000

// Angle brackets and quotes are rejected up front so prompt text cannot
// smuggle markup or quoting into downstream consumers.
var (
	forbiddenMessageChars = []string{"<", ">", `"`, "'"}
	conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string  `json:"response"`
	SQLQuery       *string `json:"sql_query"`
	ConversationID string  `json:"conversation_id"`
}

func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleChatUser); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request chatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid chat request body", false, map[string]any{"details": err.Error()})
		return
	}

	if message := strings.TrimSpace(request.Message); message == "" || utf8.RuneCountInString(request.Message) > maxChatMessageLength {
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_INVALID", "message must be between 1 and 1000 characters", false, nil)
		return
	}
	for _, char := range forbiddenMessageChars {
		if strings.Contains(request.Message, char) {
			writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_INVALID", "message contains forbidden characters", false, nil)
			return
		}
	}
	if request.ConversationID != "" && !conversationIDPattern.MatchString(request.ConversationID) {
		writeError(r.Context(), w, http.StatusBadRequest, "CONVERSATION_ID_INVALID", "conversation_id must be alphanumeric, hyphen or underscore, at most 100 characters", false, nil)
		return
	}

	result, err := deps.Chat.Chat(r.Context(), request.Message, request.ConversationID)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.Error("chat turn failed", "error", err)
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "CHAT_FAILED", "chat turn failed", true, nil)
		return
	}

	response := chatResponse{
		Response:       result.Response,
		ConversationID: result.ConversationID,
	}
	if result.SQLQuery != "" {
		response.SQLQuery = &result.SQLQuery
	}
	writeJSON(w, http.StatusOK, response)
}
