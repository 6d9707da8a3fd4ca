package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Flooding is severe in three districts."}},
			},
		})
	}))
	defer srv.Close()

	p := &OpenAI{APIKey: "sk-test", HTTP: srv.Client(), BaseURL: srv.URL}
	out, err := p.Generate(context.Background(), "summarize", 500)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Flooding is severe in three districts." {
		t.Fatalf("unexpected completion: %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotReq.Model != "gpt-3.5-turbo" || gotReq.MaxTokens != 500 {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "summarize" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestOpenAIGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Incorrect API key provided"},
		})
	}))
	defer srv.Close()

	p := &OpenAI{APIKey: "bad", HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := p.Generate(context.Background(), "x", 10)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	p := &OpenAI{APIKey: "k", HTTP: srv.Client(), BaseURL: srv.URL}
	if _, err := p.Generate(context.Background(), "x", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestOpenAIGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	hc := srv.Client()
	hc.Timeout = 20 * time.Millisecond
	p := &OpenAI{APIKey: "k", HTTP: hc, BaseURL: srv.URL}
	if _, err := p.Generate(context.Background(), "x", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream on timeout, got %v", err)
	}
}
