package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mailsift/internal/llm"
)

func chatServer(t *testing.T, handler func(w http.ResponseWriter, req map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func respond(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func TestCompleteReturnsContent(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		if req["model"] != "test-model" {
			t.Errorf("model = %v", req["model"])
		}
		if _, ok := req["response_format"]; ok {
			t.Error("plain completion sent a response_format")
		}
		respond(w, "analysis text")
	})

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "test-model"})
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "analysis text" {
		t.Fatalf("Complete = %q", got)
	}
}

func TestCompleteJSONSetsResponseFormat(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		format, ok := req["response_format"].(map[string]any)
		if !ok || format["type"] != "json_object" {
			t.Errorf("response_format = %v", req["response_format"])
		}
		respond(w, `{"ok":true}`)
	})

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	got, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("CompleteJSON = %q", got)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(llm.Config{Model: "m"})
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("Complete succeeded without api key")
	}
}

func TestCompleteHTTPErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("Complete succeeded on http 429")
	}
}

func TestCompleteAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model not found"},
		})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("Complete succeeded on api error payload")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("Complete succeeded with empty choices")
	}
}

func TestCompleteDeltaFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]any{"content": "streamed"}},
			},
		})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "streamed" {
		t.Fatalf("Complete = %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		respond(w, `{"ok":true}`)
	})
	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestHealthCheckRejectsUnexpectedPayload(t *testing.T) {
	server := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		respond(w, `{"ok":false}`)
	})
	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck accepted not-ok response")
	}
}
