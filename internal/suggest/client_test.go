package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T, responseJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := chatCompletionResponse{}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{{}}
		resp.Choices[0].Message.Content = responseJSON
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildUserPromptIncludesMaxSuggestionsAndStrengthHint(t *testing.T) {
	got := buildUserPrompt("The quick fox.", Options{MaxSuggestions: 3, Strength: Dramatic})
	if !containsAll(got, "The quick fox.", "3 suggestions", "more dramatic rewrites") {
		t.Errorf("unexpected prompt: %q", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestRequestOnceParsesAndValidatesAlternatives(t *testing.T) {
	srv := newTestServer(t, `[{"original":"quick","alternative":"swift"}]`)

	c := NewClient("test-key", nil)
	c.httpClient = srv.Client()
	c.apiBase = srv.URL

	items, err := c.requestOnce(context.Background(), "The quick fox jumps.", DefaultOptions())
	if err != nil {
		t.Fatalf("requestOnce returned error: %v", err)
	}
	if len(items) != 1 || items[0].Original != "quick" || items[0].Alternative != "swift" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestRequestOnceRejectsInvalidAlternatives(t *testing.T) {
	srv := newTestServer(t, `[{"original":"quick","alternative":"quick"}]`)

	c := NewClient("test-key", nil)
	c.httpClient = srv.Client()
	c.apiBase = srv.URL

	if _, err := c.requestOnce(context.Background(), "The quick fox jumps.", DefaultOptions()); err == nil {
		t.Fatal("expected a validation error for identical original/alternative")
	}
}

func TestRephraseParagraphsPreservesOrderAcrossWorkers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		resp := chatCompletionResponse{}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{{}}
		resp.Choices[0].Message.Content = "[]"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", nil).WithMaxConcurrency(4)
	c.httpClient = srv.Client()
	c.apiBase = srv.URL

	paragraphs := []string{"one.", "two.", "three.", "four.", "five."}
	results, err := c.RephraseParagraphs(context.Background(), paragraphs, DefaultOptions())
	if err != nil {
		t.Fatalf("RephraseParagraphs returned error: %v", err)
	}
	if len(results) != len(paragraphs) {
		t.Fatalf("expected %d results, got %d", len(paragraphs), len(results))
	}
	if int(atomic.LoadInt32(&calls)) != len(paragraphs) {
		t.Errorf("expected %d requests, got %d", len(paragraphs), calls)
	}
}
