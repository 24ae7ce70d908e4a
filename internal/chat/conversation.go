package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudboard/cloudboard/internal/llm"
	"github.com/cloudboard/cloudboard/internal/observability"
)

// Conversation holds one ordered transcript. Its mutex serializes a
// whole chat turn so concurrent requests for the same id cannot
// interleave their user and assistant messages.
type Conversation struct {
	mu         sync.Mutex
	messages   []llm.Message
	lastActive time.Time
}

func (c *Conversation) append(message llm.Message) {
	c.messages = append(c.messages, message)
}

func (c *Conversation) snapshot() []llm.Message {
	transcript := make([]llm.Message, len(c.messages))
	copy(transcript, c.messages)
	return transcript
}

// ConversationStore is the in-memory conversation map. Conversations
// idle past the TTL are dropped, and the store never grows beyond
// maxConversations entries; the oldest idle conversation is evicted to
// make room.
type ConversationStore struct {
	mu               sync.Mutex
	conversations    map[string]*Conversation
	ttl              time.Duration
	maxConversations int
	now              func() time.Time
}

func NewConversationStore(ttl time.Duration, maxConversations int) *ConversationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxConversations <= 0 {
		maxConversations = 1000
	}
	return &ConversationStore{
		conversations:    make(map[string]*Conversation),
		ttl:              ttl,
		maxConversations: maxConversations,
		now:              time.Now,
	}
}

// GetOrCreate resolves a conversation id to its transcript. An empty id
// gets a fresh UUID. New conversations start with the system message.
func (s *ConversationStore) GetOrCreate(id string) (string, *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	if id == "" {
		id = uuid.NewString()
	}
	conversation, ok := s.conversations[id]
	if !ok {
		if len(s.conversations) >= s.maxConversations {
			s.evictOldestLocked()
		}
		conversation = &Conversation{
			messages: []llm.Message{{Role: llm.RoleSystem, Content: SystemMessageContent}},
		}
		s.conversations[id] = conversation
	}
	conversation.lastActive = now
	observability.SetLiveConversations(len(s.conversations))
	return id, conversation
}

// Touch refreshes a conversation's idle clock. Callers invoke it after
// a long-running turn completes so the TTL sweep measures idleness from
// the end of the turn, not its start.
func (s *ConversationStore) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversation, ok := s.conversations[id]; ok {
		conversation.lastActive = s.now()
	}
}

// Len reports how many conversations are currently retained.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *ConversationStore) evictLocked(now time.Time) {
	for id, conversation := range s.conversations {
		if now.Sub(conversation.lastActive) > s.ttl {
			delete(s.conversations, id)
		}
	}
}

func (s *ConversationStore) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, conversation := range s.conversations {
		if oldestID == "" || conversation.lastActive.Before(oldestAt) {
			oldestID = id
			oldestAt = conversation.lastActive
		}
	}
	if oldestID != "" {
		delete(s.conversations, oldestID)
	}
}
