package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	var gotKey string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Stay away from low-lying areas."}},
				}},
			},
		})
	}))
	defer srv.Close()

	p := &Gemini{APIKey: "g-key", HTTP: srv.Client(), BaseURL: srv.URL}
	out, err := p.Generate(context.Background(), "warn residents", 300)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Stay away from low-lying areas." {
		t.Fatalf("unexpected completion: %q", out)
	}
	if gotKey != "g-key" {
		t.Fatalf("key query param = %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "warn residents" {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
}

func TestGeminiGenerateMissingCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	p := &Gemini{APIKey: "k", HTTP: srv.Client(), BaseURL: srv.URL}
	if _, err := p.Generate(context.Background(), "x", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGeminiGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "API key not valid"},
		})
	}))
	defer srv.Close()

	p := &Gemini{APIKey: "bad", HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := p.Generate(context.Background(), "x", 10)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
