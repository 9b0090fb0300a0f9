package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			},
		},
	})
}

func apiError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": msg, "type": "test_error"},
	})
}

func newTestChatClient(url string) *ChatClient {
	c := NewChatClient(ChatConfig{
		APIKey:          "test-key",
		BaseURL:         url + "/v1",
		Model:           "test-model",
		MaxRetryElapsed: 2 * time.Second,
	}, nil)
	c.initialInterval = 10 * time.Millisecond
	return c
}

func TestChatComplete_SendsSystemAndUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", got)
		}

		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Model != "test-model" {
			t.Errorf("unexpected model %q", payload.Model)
		}
		if len(payload.Messages) != 2 ||
			payload.Messages[0].Role != "system" || payload.Messages[0].Content != "sys" ||
			payload.Messages[1].Role != "user" || payload.Messages[1].Content != "hello" {
			t.Errorf("unexpected messages %+v", payload.Messages)
		}
		chatReply(w, `{"group":"A"}`)
	}))
	defer ts.Close()

	reply, err := newTestChatClient(ts.URL).Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != `{"group":"A"}` {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestChatComplete_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			apiError(w, http.StatusServiceUnavailable, "overloaded")
			return
		}
		chatReply(w, "ok")
	}))
	defer ts.Close()

	reply, err := newTestChatClient(ts.URL).Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestChatComplete_DoesNotRetryAuthErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		apiError(w, http.StatusUnauthorized, "invalid api key")
	}))
	defer ts.Close()

	if _, err := newTestChatClient(ts.URL).Complete(context.Background(), "sys", "hello"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 call, got %d", got)
	}
}

func TestChatComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	if _, err := newTestChatClient(ts.URL).Complete(context.Background(), "sys", "hello"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestIsRetryable(t *testing.T) {
	if !retryableStatus(http.StatusTooManyRequests) || !retryableStatus(http.StatusBadGateway) {
		t.Error("429 and 5xx must be retryable")
	}
	if retryableStatus(http.StatusBadRequest) || retryableStatus(http.StatusForbidden) {
		t.Error("4xx must not be retryable")
	}
}
