package assistant

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kioku-labs/kioku/internal/advice"
	"github.com/kioku-labs/kioku/internal/chat"
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

type testAssistant struct {
	*Assistant
	retriever *records.MemoryRetriever
	pipeline  *rag.Pipeline
}

// newTestAssistant wires the full stack with in-memory backends. The
// router gets neither an embedder nor a chat client so routing is fully
// deterministic: single-phrase matches resolve rule-based, everything
// else falls back to the planner default.
func newTestAssistant(t *testing.T, opts ...Option) *testAssistant {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "embeddings.db"))
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
		ChunkSize:     128,
		ChunkOverlap:  16,
		DefaultLimit:  10,
		MaxLimit:      100,
		MinSimilarity: 0.1,
	}
	pipeline := rag.NewPipeline(retriever, embedder, s, kw, cfg)

	p := planner.New(provider)
	r := router.New(p, nil, nil)
	engine := advice.NewEngine(provider)

	return &testAssistant{
		Assistant: New(p, r, pipeline, engine, opts...),
		retriever: retriever,
		pipeline:  pipeline,
	}
}

func (a *testAssistant) index(t *testing.T, objectType, objectID, content string) {
	t.Helper()
	rec := &models.Record{
		ObjectType: objectType,
		ObjectID:   objectID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	a.retriever.Add(rec)
	if err := a.pipeline.IndexRecord(context.Background(), rec); err != nil {
		t.Fatalf("IndexRecord: %v", err)
	}
}

func TestAnswer_SearchStrategy(t *testing.T) {
	a := newTestAssistant(t)
	content := "cooked pasta with tomatoes for dinner"
	a.index(t, "meal_records", "m1", content)

	answer, err := a.Answer(context.Background(), content)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Strategy != string(router.StrategySearch) {
		t.Errorf("strategy = %q, want search", answer.Strategy)
	}
	if answer.Intent != models.IntentSearch {
		t.Errorf("intent = %q, want search", answer.Intent)
	}
	if len(answer.Results) == 0 {
		t.Fatal("no results for a query identical to an indexed record")
	}
	if answer.Results[0].ObjectID != "m1" {
		t.Errorf("top result = %s, want m1", answer.Results[0].ObjectID)
	}
	if answer.Advice != nil {
		t.Error("search answer carries advice")
	}
}

func TestAnswer_AdviceStrategy(t *testing.T) {
	a := newTestAssistant(t)
	a.index(t, "meal_records", "m1", "I order takeout every day after work")

	answer, err := a.Answer(context.Background(), "should I cook at home more")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Strategy != string(router.StrategyAdvice) {
		t.Errorf("strategy = %q, want advice", answer.Strategy)
	}
	if answer.Intent != models.IntentAdvice {
		t.Errorf("intent = %q, want advice", answer.Intent)
	}
	if answer.Advice == nil {
		t.Fatal("advice answer missing AdviceResult")
	}
	if answer.Advice.Advice == "" {
		t.Error("empty advice text")
	}
	if len(answer.Results) != 0 {
		t.Error("advice answer carries raw results")
	}
}

func TestAnswer_PassthroughStrategy(t *testing.T) {
	mc := chat.NewMockClient("You mostly cooked pasta this week.")
	a := newTestAssistant(t, WithChatClient(mc))
	content := "summary of my week: cooked pasta twice"
	a.index(t, "journal_entries", "j1", content)

	answer, err := a.Answer(context.Background(), content)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Strategy != string(router.StrategyPassthrough) {
		t.Errorf("strategy = %q, want passthrough", answer.Strategy)
	}
	if answer.Text != "You mostly cooked pasta this week." {
		t.Errorf("text = %q, want the synthesized summary", answer.Text)
	}
}

func TestAnswer_PassthroughWithoutChatReturnsContext(t *testing.T) {
	a := newTestAssistant(t)
	content := "overview of the month: ran three times"
	a.index(t, "exercise_records", "e1", content)

	answer, err := a.Answer(context.Background(), content)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Strategy != string(router.StrategyPassthrough) {
		t.Errorf("strategy = %q, want passthrough", answer.Strategy)
	}
	if answer.Text == "" {
		t.Error("passthrough without chat returned empty text")
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	a := newTestAssistant(t)
	if _, err := a.Answer(context.Background(), "   "); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRebuildAndStatus(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()
	a.retriever.Add(&models.Record{ObjectType: "meal_records", ObjectID: "m1", Content: "pasta"})
	a.retriever.Add(&models.Record{ObjectType: "sleep_records", ObjectID: "s1", Content: "slept eight hours"})

	started, err := a.RebuildIndex(ctx, nil)
	if err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	if !started {
		t.Error("started = false, want true")
	}

	status, err := a.IndexingStatus(ctx)
	if err != nil {
		t.Fatalf("IndexingStatus: %v", err)
	}
	if status.OverallCoverage != 1.0 {
		t.Errorf("coverage = %v, want 1.0", status.OverallCoverage)
	}
	if status.Rebuilding {
		t.Error("Rebuilding = true after completion")
	}

	current, total, rebuilding := a.RebuildProgress()
	if current != 2 || total != 2 || rebuilding {
		t.Errorf("progress = (%d, %d, %v), want (2, 2, false)", current, total, rebuilding)
	}
}
