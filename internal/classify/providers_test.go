package classify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestOpenAIClassify(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"child with glasses"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", "gpt-test")
	got, err := c.Classify(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "child with glasses" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(gotBody, "data:image/jpeg;base64,/9g=") {
		t.Errorf("request missing image data URL: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"model":"gpt-test"`) {
		t.Errorf("request missing model: %s", gotBody)
	}
}

func TestOpenAIClassifyRetriesServerError(t *testing.T) {
	fastRetry(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"adult female"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", "gpt-test")
	got, err := c.Classify(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "adult female" {
		t.Errorf("got %q", got)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestOllamaClassify(t *testing.T) {
	var req struct {
		Model  string   `json:"model"`
		Prompt string   `json:"prompt"`
		Stream *bool    `json:"stream"`
		Images []string `json:"images"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"model":"llava","response":"adult male","done":true}`+"\n")
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "llava")
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	got, err := c.Classify(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "adult male" {
		t.Errorf("got %q", got)
	}
	if req.Model != "llava" || req.Prompt != Prompt {
		t.Errorf("unexpected request: model=%q prompt=%q", req.Model, req.Prompt)
	}
	if req.Stream == nil || *req.Stream {
		t.Error("expected non-streaming request")
	}
	if len(req.Images) != 1 {
		t.Errorf("images = %d, want 1", len(req.Images))
	}
}

func TestOllamaClassifyModelMissing(t *testing.T) {
	fastRetry(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"model \"nope\" not found"}`)
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "nope")
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	_, err = c.Classify(context.Background(), []byte("img"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error")
	}
	ce, ok := err.(*ClassificationError)
	if !ok {
		t.Fatalf("expected *ClassificationError, got %T", err)
	}
	if ce.Transient() {
		t.Errorf("missing model classified as transient: %v", ce.Type)
	}
}
