package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kioku-labs/kioku/internal/advice"
	"github.com/kioku-labs/kioku/internal/assistant"
	"github.com/kioku-labs/kioku/internal/config"
	"github.com/kioku-labs/kioku/internal/embedding"
	"github.com/kioku-labs/kioku/internal/keyword"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/planner"
	"github.com/kioku-labs/kioku/internal/rag"
	"github.com/kioku-labs/kioku/internal/records"
	"github.com/kioku-labs/kioku/internal/router"
	"github.com/kioku-labs/kioku/internal/store"
	"github.com/kioku-labs/kioku/internal/terms"
)

type testServer struct {
	*Server
	retriever *records.MemoryRetriever
	pipeline  *rag.Pipeline
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "embeddings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	kw, err := keyword.NewMemIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })
	provider, err := terms.NewProvider("")
	if err != nil {
		t.Fatal(err)
	}

	retriever := records.NewMemoryRetriever()
	embedder := embedding.NewFallbackEmbedder(embedding.NewMockEmbedder(32))
	cfg := &config.SearchConfig{
		ChunkSize: 128, ChunkOverlap: 16,
		DefaultLimit: 10, MaxLimit: 100, MinSimilarity: 0.1,
	}
	pipeline := rag.NewPipeline(retriever, embedder, s, kw, cfg)

	p := planner.New(provider)
	a := assistant.New(p, router.New(p, nil, nil), pipeline, advice.NewEngine(provider))
	srv := NewServer(a, &config.ServerConfig{Host: "127.0.0.1", Port: 0}, zap.NewNop())
	return &testServer{
		Server:    srv,
		retriever: retriever,
		pipeline:  pipeline,
		handler:   srv.routes(),
	}
}

func (ts *testServer) index(t *testing.T, objectType, objectID, content string) {
	t.Helper()
	rec := &models.Record{ObjectType: objectType, ObjectID: objectID, Content: content}
	ts.retriever.Add(rec)
	if err := ts.pipeline.IndexRecord(context.Background(), rec); err != nil {
		t.Fatalf("IndexRecord: %v", err)
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleAsk(t *testing.T) {
	ts := newTestServer(t)
	content := "cooked pasta with tomatoes for dinner"
	ts.index(t, "meal_records", "m1", content)

	rec := ts.do(t, http.MethodPost, "/api/v1/ask", askRequest{Query: content})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var answer models.Answer
	if err := json.NewDecoder(rec.Body).Decode(&answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Strategy != "search" {
		t.Errorf("strategy = %q, want search", answer.Strategy)
	}
	if len(answer.Results) == 0 {
		t.Error("no results for a query identical to an indexed record")
	}
}

func TestHandleAskBadRequest(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/ask", askRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", w.Code)
	}
}

func TestHandleIndexStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.index(t, "meal_records", "m1", "pasta for dinner")

	rec := ts.do(t, http.MethodGet, "/api/v1/index/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status models.IndexingStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.OverallCoverage != 1.0 {
		t.Errorf("coverage = %v, want 1.0", status.OverallCoverage)
	}
}

func TestHandleRebuild(t *testing.T) {
	ts := newTestServer(t)
	ts.retriever.Add(&models.Record{ObjectType: "meal_records", ObjectID: "m1", Content: "pasta"})

	rec := ts.do(t, http.MethodPost, "/api/v1/index/rebuild", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleRebuildAlreadyRunning(t *testing.T) {
	ts := newTestServer(t)
	ts.retriever.Add(&models.Record{ObjectType: "meal_records", ObjectID: "m1", Content: "pasta"})

	// Hold a rebuild open by blocking its first progress callback, then
	// hit the endpoint.
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ts.pipeline.Rebuild(context.Background(), func(current, total int) {
			if current == 0 {
				entered <- struct{}{}
				<-release
			}
		})
	}()
	<-entered

	rec := ts.do(t, http.MethodPost, "/api/v1/index/rebuild", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}

	close(release)
	<-done
}

func TestHandleIndexProgress(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/index/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var progress struct {
		Current    int  `json:"current"`
		Total      int  `json:"total"`
		Rebuilding bool `json:"rebuilding"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if progress.Rebuilding {
		t.Error("rebuilding = true on idle server")
	}
}
