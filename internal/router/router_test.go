package router

import (
	"context"
	"testing"

	"github.com/kioku-labs/kioku/internal/chat"
	"github.com/kioku-labs/kioku/internal/embedding"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/planner"
	"github.com/kioku-labs/kioku/internal/terms"
)

func newTestPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	provider, err := terms.NewProvider("")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return planner.New(provider)
}

func TestRoute_RuleBasedStage(t *testing.T) {
	p := newTestPlanner(t)
	r := New(p, embedding.NewMockEmbedder(64), chat.NewMockClient())

	query := "should i renew my lease"
	route := r.Route(context.Background(), query, p.Plan(query))

	if route.Stage != StageRuleBased {
		t.Errorf("stage = %q, want %q", route.Stage, StageRuleBased)
	}
	if route.Intent != models.IntentAdvice {
		t.Errorf("intent = %q, want advice", route.Intent)
	}
	if route.Strategy != StrategyAdvice {
		t.Errorf("strategy = %q, want advice", route.Strategy)
	}
}

func TestRoute_SemanticStage(t *testing.T) {
	p := newTestPlanner(t)
	// The query matches no intent phrase set, but it is verbatim one of the
	// injected exemplars, so the mock embedder produces identical vectors
	// and the similarity is 1.0.
	query := "where are my kyoto photos"
	r := New(p, embedding.NewMockEmbedder(64), nil,
		WithExemplars(map[models.Intent][]string{
			models.IntentSearch: {query},
		}))

	route := r.Route(context.Background(), query, p.Plan(query))

	if route.Stage != StageSemanticSimilarity {
		t.Errorf("stage = %q, want %q", route.Stage, StageSemanticSimilarity)
	}
	if route.Intent != models.IntentSearch {
		t.Errorf("intent = %q, want search", route.Intent)
	}
	if route.Strategy != StrategySearch {
		t.Errorf("strategy = %q, want search", route.Strategy)
	}
}

func TestRoute_ModelClassificationStage(t *testing.T) {
	p := newTestPlanner(t)
	embedder := embedding.NewMockEmbedder(64)
	embedder.Fail = true // semantic stage cannot run
	r := New(p, embedder, chat.NewMockClient("  Advice.\n"))

	query := "thoughts on my lease renewal"
	route := r.Route(context.Background(), query, p.Plan(query))

	if route.Stage != StageModelClassification {
		t.Errorf("stage = %q, want %q", route.Stage, StageModelClassification)
	}
	if route.Intent != models.IntentAdvice {
		t.Errorf("intent = %q, want advice", route.Intent)
	}
}

func TestRoute_MalformedModelReplyFallsBack(t *testing.T) {
	p := newTestPlanner(t)
	embedder := embedding.NewMockEmbedder(64)
	embedder.Fail = true
	r := New(p, embedder, chat.NewMockClient("I think this is probably an advice question"))

	query := "lease renewal paperwork"
	qc := p.Plan(query)
	route := r.Route(context.Background(), query, qc)

	if route.Stage != StageResolved {
		t.Errorf("stage = %q, want %q", route.Stage, StageResolved)
	}
	if route.Intent != qc.Intent {
		t.Errorf("intent = %q, want planner default %q", route.Intent, qc.Intent)
	}
}

func TestRoute_ChatUnavailableFallsBack(t *testing.T) {
	p := newTestPlanner(t)
	embedder := embedding.NewMockEmbedder(64)
	embedder.Fail = true
	mc := chat.NewMockClient("advice")
	mc.Fail = true
	r := New(p, embedder, mc)

	query := "lease renewal paperwork"
	qc := p.Plan(query)
	route := r.Route(context.Background(), query, qc)

	if route.Stage != StageResolved {
		t.Errorf("stage = %q, want %q", route.Stage, StageResolved)
	}
	if route.Intent != models.IntentSearch {
		t.Errorf("intent = %q, want search default", route.Intent)
	}
}

func TestRoute_AmbiguousRulesSkipStageOne(t *testing.T) {
	p := newTestPlanner(t)
	embedder := embedding.NewMockEmbedder(64)
	embedder.Fail = true
	r := New(p, embedder, chat.NewMockClient("comparison"))

	// Matches both advice ("should i") and comparison ("compare") phrase
	// sets, so the rule-based stage is not confident.
	query := "should i compare providers"
	route := r.Route(context.Background(), query, p.Plan(query))

	if route.Stage != StageModelClassification {
		t.Errorf("stage = %q, want %q", route.Stage, StageModelClassification)
	}
	if route.Intent != models.IntentComparison {
		t.Errorf("intent = %q, want comparison", route.Intent)
	}
}

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		intent models.Intent
		want   Strategy
	}{
		{models.IntentSearch, StrategySearch},
		{models.IntentComparison, StrategySearch},
		{models.IntentAnalysis, StrategyAdvice},
		{models.IntentAdvice, StrategyAdvice},
		{models.IntentSummary, StrategyPassthrough},
	}
	for _, tt := range tests {
		if got := strategyFor(tt.intent); got != tt.want {
			t.Errorf("strategyFor(%q) = %q, want %q", tt.intent, got, tt.want)
		}
	}
}
