package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCompletion builds the minimal Chat Completions response body around
// the given message content.
func fakeCompletion(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     120,
			"completion_tokens": 60,
			"total_tokens":      180,
		},
	}
}

func TestGenerateCard(t *testing.T) {
	var gotReq completionRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected bearer auth header but got %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type but got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		json.NewEncoder(w).Encode(fakeCompletion(
			`{"title":"Inbox Zero, Soul Zero","subtitle":"","body":"Log off.","category":"Coping","tags":["work","rest"]}`,
		))
	}))
	defer ts.Close()

	c := NewClient("test-key")
	c.URL = ts.URL

	card, err := c.GenerateCard(context.Background(), "Coping", "Sassy", "email")
	if err != nil {
		t.Fatalf("GenerateCard failed: %v", err)
	}

	if card.Title != "Inbox Zero, Soul Zero" {
		t.Errorf("expected parsed title but got %q", card.Title)
	}
	if card.Category != "Coping" {
		t.Errorf("expected category Coping but got %q", card.Category)
	}

	if gotReq.Model != DefaultModel {
		t.Errorf("expected model %q but got %q", DefaultModel, gotReq.Model)
	}
	if gotReq.MaxTokens != cardMaxTokens {
		t.Errorf("expected max_tokens %d but got %d", cardMaxTokens, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("expected system+user messages but got %+v", gotReq.Messages)
	}
}

func TestGenerateCardSalvagesSloppyOutput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fakeCompletion("Sure! Here it is:\n```json\n{\"title\":\"Fine.\",\"subtitle\":\"\",\"body\":\"Okay.\",\"category\":\"Wild\",\"tags\":[\"ok\",\"fine\"]}\n```"))
	}))
	defer ts.Close()

	c := NewClient("test-key")
	c.URL = ts.URL

	card, err := c.GenerateCard(context.Background(), "Wild", "Classic", "")
	if err != nil {
		t.Fatalf("GenerateCard failed: %v", err)
	}
	if card.Title != "Fine." {
		t.Errorf("expected fenced JSON to parse but got title %q", card.Title)
	}
}

func TestGenerateCardErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		c := NewClient("")
		if _, err := c.GenerateCard(context.Background(), "Trigger", "Sassy", ""); err == nil {
			t.Error("expected error without an api key")
		}
	})

	t.Run("non-200 response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
		}))
		defer ts.Close()

		c := NewClient("test-key")
		c.URL = ts.URL

		if _, err := c.GenerateCard(context.Background(), "Trigger", "Sassy", ""); err == nil {
			t.Error("expected error on 429 response")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer ts.Close()

		c := NewClient("test-key")
		c.URL = ts.URL

		if _, err := c.GenerateCard(context.Background(), "Trigger", "Sassy", ""); err == nil {
			t.Error("expected error on empty choices")
		}
	})
}
