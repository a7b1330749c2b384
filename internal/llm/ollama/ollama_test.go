package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestNew verifies provider creation with various configurations.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config with host",
			config: Config{Host: "http://localhost:11434", Model: "llama3.2"},
		},
		{
			name:   "empty model uses default",
			config: Config{Host: "http://localhost:11434"},
		},
		{
			name:    "invalid host URL",
			config:  Config{Host: "://invalid-url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := New(tt.config, testLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && provider.config.Model == "" {
				t.Error("Model should have default value")
			}
		})
	}
}

// TestNewNilLogger verifies that nil logger is rejected.
func TestNewNilLogger(t *testing.T) {
	_, err := New(Config{Host: "http://localhost:11434"}, nil)
	if err == nil {
		t.Error("New() should reject nil logger")
	}
}

// TestChat verifies a system+user exchange against a mock Ollama server.
func TestChat(t *testing.T) {
	var gotMessages []map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req struct {
			Model    string                   `json:"model"`
			Messages []map[string]interface{} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotMessages = req.Messages

		response := map[string]interface{}{
			"model":             req.Model,
			"message":           map[string]string{"role": "assistant", "content": "まずはPythonから始めましょう。"},
			"done":              true,
			"prompt_eval_count": 10,
			"eval_count":        20,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "test-model"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	messages := []Message{
		{Role: "system", Content: "あなたはキャリアアドバイザーです。"},
		{Role: "user", Content: "未経験からAIエンジニアになるには?"},
	}

	resp, err := provider.Chat(context.Background(), messages, nil)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	if resp.Content != "まずはPythonから始めましょう。" {
		t.Errorf("Chat() content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("Chat() model = %q, want %q", resp.Model, "test-model")
	}
	if resp.TokensPrompt != 10 {
		t.Errorf("Chat() TokensPrompt = %d, want 10", resp.TokensPrompt)
	}
	if resp.TokensTotal != 30 {
		t.Errorf("Chat() TokensTotal = %d, want 30", resp.TokensTotal)
	}

	if len(gotMessages) != 2 {
		t.Fatalf("server received %d messages, want 2", len(gotMessages))
	}
	if gotMessages[0]["role"] != "system" || gotMessages[1]["role"] != "user" {
		t.Errorf("roles = %v, %v; want system, user", gotMessages[0]["role"], gotMessages[1]["role"])
	}
}

// TestChatEmptyMessages verifies that Chat rejects empty message list.
func TestChatEmptyMessages(t *testing.T) {
	provider, err := New(Config{Host: "http://localhost:11434"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Chat(context.Background(), []Message{}, nil)
	if err == nil {
		t.Error("Chat() should reject empty messages")
	}
}

// TestChatServerError verifies upstream failures surface as ErrProviderUnavailable.
func TestChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model crashed"}`))
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "test-model"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("Chat() should fail when the server errors")
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

// TestChatWithOptions verifies that ChatOptions are properly applied.
func TestChatWithOptions(t *testing.T) {
	var gotTemp float64
	var gotPredict float64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			return
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)

		if options, ok := req["options"].(map[string]interface{}); ok {
			gotTemp, _ = options["temperature"].(float64)
			gotPredict, _ = options["num_predict"].(float64)
		}

		response := map[string]interface{}{
			"model":   req["model"],
			"message": map[string]string{"content": "response"},
			"done":    true,
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "default-model"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	opts := &ChatOptions{
		Model:       "custom-model",
		Temperature: 0.3,
		MaxTokens:   100,
	}

	resp, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: "test"}}, opts)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	if resp.Model != "custom-model" {
		t.Errorf("Model override not applied, got %q", resp.Model)
	}
	if gotTemp != 0.3 {
		t.Errorf("temperature = %v, want 0.3", gotTemp)
	}
	if gotPredict != 100 {
		t.Errorf("num_predict = %v, want 100", gotPredict)
	}
}

// TestHeartbeat verifies the Heartbeat method.
func TestHeartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ollama is running"))
		}
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if err := provider.Heartbeat(context.Background()); err != nil {
		t.Errorf("Heartbeat() should succeed, got error: %v", err)
	}
}

// TestModelAvailable verifies the ModelAvailable method.
func TestModelAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			response := map[string]interface{}{
				"models": []map[string]interface{}{
					{"name": "llama3.2:latest", "model": "llama3.2"},
					{"name": "qwen2.5:latest", "model": "qwen2.5"},
					{"name": "mistral:7b", "model": "mistral:7b"},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	tests := []struct {
		model     string
		available bool
	}{
		{"llama3.2", true},
		{"llama3.2:latest", true},
		{"qwen2.5", true},
		{"qwen2.5:7b", false},
		{"mistral:7b", true},
		{"mistral", false},
		{"nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			available, err := provider.ModelAvailable(context.Background(), tt.model)
			if err != nil {
				t.Fatalf("ModelAvailable() error: %v", err)
			}
			if available != tt.available {
				t.Errorf("ModelAvailable(%q) = %v, want %v", tt.model, available, tt.available)
			}
		})
	}
}

func TestChatRequest(t *testing.T) {
	provider, err := New(Config{Host: "http://localhost:11434", Model: "llama3.2"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	messages := []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}}

	req := provider.chatRequest(messages, nil)
	if req.Model != "llama3.2" {
		t.Errorf("model = %q, want llama3.2", req.Model)
	}
	if req.Stream == nil || *req.Stream {
		t.Error("requests must not stream")
	}
	if _, ok := req.Options["num_predict"]; ok {
		t.Error("num_predict should be unset without MaxTokens")
	}
	if len(req.Messages) != 2 || req.Messages[1].Content != "u" {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestWithTag(t *testing.T) {
	tests := map[string]string{
		"llama3.2":        "llama3.2:latest",
		"llama3.2:latest": "llama3.2:latest",
		"qwen2.5:7b":      "qwen2.5:7b",
		"":                "",
	}
	for in, want := range tests {
		if got := withTag(in); got != want {
			t.Errorf("withTag(%q) = %q, want %q", in, got, want)
		}
	}
}
