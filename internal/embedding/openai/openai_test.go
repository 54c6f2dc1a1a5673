package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark-chris/supportbot/internal/config"
	"github.com/mark-chris/supportbot/internal/httpx"
	"github.com/mark-chris/supportbot/internal/knowledge"
)

func newTestConfig(url string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "text-embedding-3-small",
		Timeout:     2 * time.Second,
		MaxFailures: 2,
	}
}

func TestVectorizer_EmbedsInIndexOrder(t *testing.T) {
	var gotReq embeddingRequest
	var gotAuth, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		// Rows deliberately out of order
		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0,1]},
			{"index":0,"embedding":[1,0]}
		]}`))
	}))
	defer srv.Close()

	v := NewVectorizer(nil, newTestConfig(srv.URL+"/"), nil, nil)

	vectors, err := v.FitTransform([]string{"reset password", "billing question"})
	if err != nil {
		t.Fatalf("FitTransform() failed: %v", err)
	}

	want := [][]float64{{1, 0}, {0, 1}}
	if !reflect.DeepEqual(vectors, want) {
		t.Errorf("FitTransform() = %v, want %v", vectors, want)
	}
	if gotPath != "/embeddings" {
		t.Errorf("expected path /embeddings, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotReq.Model != "text-embedding-3-small" || len(gotReq.Input) != 2 {
		t.Errorf("unexpected request payload: %+v", gotReq)
	}
}

func TestVectorizer_NonOKResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	v := NewVectorizer(nil, newTestConfig(srv.URL), nil, nil)

	_, err := v.Transform([]string{"hello"})
	if !errors.Is(err, ErrNonOKResponse) {
		t.Errorf("expected ErrNonOKResponse, got %v", err)
	}
}

func TestVectorizer_MissingAPIKey(t *testing.T) {
	cfg := newTestConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	v := NewVectorizer(nil, cfg, nil, nil)

	_, err := v.FitTransform([]string{"hello"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestVectorizer_EmptyInputSkipsRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	v := NewVectorizer(nil, newTestConfig(srv.URL), nil, nil)

	vectors, err := v.Transform(nil)
	if err != nil {
		t.Fatalf("Transform(nil) failed: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(vectors))
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("expected no HTTP request for empty input")
	}
}

func TestVectorizer_BreakerStopsCalls(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	breaker := httpx.NewCircuitBreaker("test", time.Minute, 2)
	v := NewVectorizer(nil, cfg, breaker, nil)

	for i := 0; i < 4; i++ {
		_, _ = v.Transform([]string{"hello"})
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected breaker to stop after 2 calls, server saw %d", got)
	}
}

// TestVectorizer_MismatchSurfacesInRetriever checks that a short response
// reaches the retriever as an embedding count mismatch.
func TestVectorizer_MismatchSurfacesInRetriever(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	v := NewVectorizer(nil, newTestConfig(srv.URL), nil, nil)
	pairs := []knowledge.FAQPair{
		{Question: "reset password", Answer: "Click the Reset link."},
		{Question: "billing question", Answer: "Contact billing."},
	}

	_, err := knowledge.GetAnswer("How do I reset my password?", pairs, v)
	if !errors.Is(err, knowledge.ErrEmbeddingCountMismatch) {
		t.Errorf("expected ErrEmbeddingCountMismatch, got %v", err)
	}
}
