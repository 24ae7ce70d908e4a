// Package chat orchestrates assistant turns: it resolves conversation
// state, calls the language model, extracts candidate SQL from the
// reply, and augments the reply with executed query results.
package chat

import (
	"context"
	"log/slog"

	"github.com/cloudboard/cloudboard/internal/llm"
	"github.com/cloudboard/cloudboard/internal/observability"
	"github.com/cloudboard/cloudboard/internal/query"
)

type Result struct {
	Response       string
	SQLQuery       string
	ConversationID string
}

type Service struct {
	client        llm.Client
	executor      *query.Executor
	conversations *ConversationStore
	logger        *slog.Logger
}

// NewService wires the orchestrator. A nil client is a valid
// configuration state and produces a fixed informational reply.
func NewService(client llm.Client, executor *query.Executor, conversations *ConversationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:        client,
		executor:      executor,
		conversations: conversations,
		logger:        logger,
	}
}

// Chat runs one assistant turn. Every failure below the orchestrator is
// converted into user-facing text; the returned error is reserved for
// conversation bookkeeping failures and is nil in normal operation.
func (s *Service) Chat(ctx context.Context, message, conversationID string) (Result, error) {
	observability.IncrementChatRequests()

	id, conversation := s.conversations.GetOrCreate(conversationID)
	// Re-stamp the idle clock once the turn is done; a slow model call
	// must not make an active conversation look idle to the TTL sweep.
	defer s.conversations.Touch(id)
	conversation.mu.Lock()
	defer conversation.mu.Unlock()

	conversation.append(llm.Message{Role: llm.RoleUser, Content: message})

	if s.client == nil {
		conversation.append(llm.Message{Role: llm.RoleAssistant, Content: unconfiguredMessage})
		return Result{Response: unconfiguredMessage, ConversationID: id}, nil
	}

	reply, err := s.client.Complete(ctx, conversation.snapshot())
	if err != nil {
		// The apology is recorded as the assistant turn so the
		// transcript keeps user and assistant turns paired.
		s.logger.Error("model invocation failed", "error", err, "conversation_id", id)
		observability.IncrementChatModelFailures()
		conversation.append(llm.Message{Role: llm.RoleAssistant, Content: modelFailureMessage})
		return Result{Response: modelFailureMessage, ConversationID: id}, nil
	}

	sqlText, found := extractSQL(reply)
	if !found {
		conversation.append(llm.Message{Role: llm.RoleAssistant, Content: reply})
		return Result{Response: reply, ConversationID: id}, nil
	}
	observability.IncrementChatSQLExtracted()

	queryResult, err := s.executor.Execute(ctx, sqlText)
	if err != nil {
		reply += "\n\nError executing query: " + err.Error()
	} else {
		formatted := query.Format(queryResult)
		if formatted == query.EmptyResultText {
			reply += "\n\nQuery executed successfully but returned no results."
		} else {
			reply += "\n\nQuery Results:\n" + formatted
		}
	}

	conversation.append(llm.Message{Role: llm.RoleAssistant, Content: reply})
	return Result{Response: reply, SQLQuery: sqlText, ConversationID: id}, nil
}
