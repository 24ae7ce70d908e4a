package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("cloudboard-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
	if cfg.Database.MaxOpenConns != 20 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.AI.Enabled {
		t.Fatal("AI.Enabled should default to false")
	}
	if cfg.AI.Model != "gpt-4o" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("AI.Temperature = %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 1000 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.Chat.ConversationTTL != time.Hour {
		t.Fatalf("Chat.ConversationTTL = %v", cfg.Chat.ConversationTTL)
	}
	if cfg.Chat.MaxConversations != 1000 {
		t.Fatalf("Chat.MaxConversations = %d", cfg.Chat.MaxConversations)
	}
	if cfg.ObjectStore.Bucket != "cloudboard-reports" {
		t.Fatalf("ObjectStore.Bucket = %q", cfg.ObjectStore.Bucket)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	lookup := mapLookup(map[string]string{"CLOUDBOARD_PROFILE": "prod"})
	cfg, err := Load("cloudboard-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"CLOUDBOARD_PROFILE":                "test",
		"CLOUDBOARD_HTTP_ADDR":              ":9999",
		"CLOUDBOARD_HTTP_READ_TIMEOUT":      "2s",
		"CLOUDBOARD_LOG_LEVEL":              "error",
		"CLOUDBOARD_DATABASE_DSN":           "postgres://example",
		"CLOUDBOARD_DATABASE_MAX_OPEN_CONNS": "42",
		"CLOUDBOARD_SERVICE_NAME":           "cloudboard-custom",
		"CLOUDBOARD_AI_ENABLED":             "true",
		"CLOUDBOARD_AI_API_KEY":             "secret",
		"CLOUDBOARD_AI_MODEL":               "gpt-4o-mini",
		"CLOUDBOARD_AI_TEMPERATURE":         "0.7",
		"CLOUDBOARD_AI_MAX_TOKENS":          "512",
		"CLOUDBOARD_CHAT_QUERY_TIMEOUT":     "3s",
		"CLOUDBOARD_CHAT_CONVERSATION_TTL":  "15m",
		"CLOUDBOARD_CHAT_MAX_CONVERSATIONS": "25",
	})
	cfg, err := Load("cloudboard-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "cloudboard-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Database.DSN != "postgres://example" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxOpenConns != 42 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if !cfg.AI.Enabled {
		t.Fatal("AI.Enabled should be true")
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Fatalf("AI.Temperature = %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 512 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.Chat.QueryTimeout != 3*time.Second {
		t.Fatalf("Chat.QueryTimeout = %v", cfg.Chat.QueryTimeout)
	}
	if cfg.Chat.ConversationTTL != 15*time.Minute {
		t.Fatalf("Chat.ConversationTTL = %v", cfg.Chat.ConversationTTL)
	}
	if cfg.Chat.MaxConversations != 25 {
		t.Fatalf("Chat.MaxConversations = %d", cfg.Chat.MaxConversations)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{"CLOUDBOARD_PROFILE": "staging"})
	if _, err := Load("cloudboard-api", lookup); err == nil {
		t.Fatal("Load() should reject unknown profile")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	lookup := mapLookup(map[string]string{"CLOUDBOARD_HTTP_READ_TIMEOUT": "soon"})
	if _, err := Load("cloudboard-api", lookup); err == nil {
		t.Fatal("Load() should reject unparsable duration")
	}
}

func TestLoadRequiresAPIKeyWhenAIEnabled(t *testing.T) {
	lookup := mapLookup(map[string]string{"CLOUDBOARD_AI_ENABLED": "true"})
	if _, err := Load("cloudboard-api", lookup); err == nil {
		t.Fatal("Load() should require an API key when AI is enabled")
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
