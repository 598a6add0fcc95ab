// Package router resolves a query to a handling strategy. Resolution runs
// through three stages: rule-based phrase matching, semantic exemplar
// similarity, and finally single-label model classification. Later stages
// only run when the earlier ones are not confident, and classification
// failures fall back to the rule-based default so routing never fails a
// request.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kioku-labs/kioku/internal/chat"
	"github.com/kioku-labs/kioku/internal/embedding"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/planner"
	"github.com/kioku-labs/kioku/internal/vector"
)

// Strategy names how the assistant should handle a routed query.
type Strategy string

const (
	StrategySearch      Strategy = "search"
	StrategyAdvice      Strategy = "advice"
	StrategyPassthrough Strategy = "passthrough"
)

// Stage identifies which resolution stage produced the route.
type Stage string

const (
	StageRuleBased           Stage = "rule_based"
	StageSemanticSimilarity  Stage = "semantic_similarity"
	StageModelClassification Stage = "model_classification"
	// StageResolved marks a route that fell back to the rule-based default
	// after the later stages declined or misfired.
	StageResolved Stage = "resolved"
)

// Route is the router's decision for a single query.
type Route struct {
	Strategy Strategy      `json:"strategy"`
	Intent   models.Intent `json:"intent"`
	Stage    Stage         `json:"stage"`
}

// DefaultThreshold is the minimum exemplar similarity for the semantic
// stage to accept a match.
const DefaultThreshold = 0.78

// Router resolves queries. The embedder and chat client are optional;
// a nil embedder skips the semantic stage and a nil chat client skips
// model classification.
type Router struct {
	planner   *planner.Planner
	embedder  embedding.Embedder
	chat      chat.Client
	threshold float64
	logger    *zap.Logger

	exemplarMu  sync.Mutex
	exemplars   map[models.Intent][]string
	exemplarVec map[models.Intent][][]float32
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithThreshold overrides the semantic acceptance threshold.
func WithThreshold(threshold float64) Option {
	return func(r *Router) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

// WithExemplars replaces the built-in exemplar queries.
func WithExemplars(exemplars map[models.Intent][]string) Option {
	return func(r *Router) {
		if len(exemplars) > 0 {
			r.exemplars = exemplars
		}
	}
}

// New creates a router over the given planner, embedder and chat client.
func New(p *planner.Planner, embedder embedding.Embedder, chatClient chat.Client, opts ...Option) *Router {
	r := &Router{
		planner:   p,
		embedder:  embedder,
		chat:      chatClient,
		threshold: DefaultThreshold,
		logger:    zap.NewNop(),
		exemplars: defaultExemplars(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route resolves the query to a strategy. qc carries the planner's
// default intent used when every later stage declines.
func (r *Router) Route(ctx context.Context, query string, qc *models.QueryContext) *Route {
	// Stage 1: the rule-based result is confident only when exactly one
	// intent phrase set matched.
	matched := r.planner.MatchedIntents(query)
	if len(matched) == 1 {
		return &Route{
			Strategy: strategyFor(matched[0]),
			Intent:   matched[0],
			Stage:    StageRuleBased,
		}
	}

	// Stage 2: nearest exemplar by embedding similarity.
	if intent, ok := r.semanticIntent(ctx, query); ok {
		return &Route{
			Strategy: strategyFor(intent),
			Intent:   intent,
			Stage:    StageSemanticSimilarity,
		}
	}

	// Stage 3: single-label model classification.
	if intent, ok := r.classifyWithModel(ctx, query); ok {
		return &Route{
			Strategy: strategyFor(intent),
			Intent:   intent,
			Stage:    StageModelClassification,
		}
	}

	// Everything declined: fall back to the planner's default.
	return &Route{
		Strategy: strategyFor(qc.Intent),
		Intent:   qc.Intent,
		Stage:    StageResolved,
	}
}

// semanticIntent embeds the query and compares it against the exemplar
// embeddings, accepting the best match above the threshold.
func (r *Router) semanticIntent(ctx context.Context, query string) (models.Intent, bool) {
	if r.embedder == nil {
		return "", false
	}
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil || vector.IsZero(queryVec) {
		return "", false
	}
	vecs, err := r.exemplarVectors(ctx)
	if err != nil {
		r.logger.Warn("exemplar embedding failed, skipping semantic stage", zap.Error(err))
		return "", false
	}

	best := models.Intent("")
	bestSim := r.threshold
	for intent, intentVecs := range vecs {
		for _, v := range intentVecs {
			sim, err := vector.CosineSimilarity(queryVec, v)
			if err != nil {
				continue
			}
			if sim >= bestSim {
				best = intent
				bestSim = sim
			}
		}
	}
	if best == "" {
		return "", false
	}
	r.logger.Debug("semantic routing accepted",
		zap.String("intent", string(best)),
		zap.Float64("similarity", bestSim))
	return best, true
}

// exemplarVectors embeds the exemplar queries once and caches the result.
func (r *Router) exemplarVectors(ctx context.Context) (map[models.Intent][][]float32, error) {
	r.exemplarMu.Lock()
	defer r.exemplarMu.Unlock()
	if r.exemplarVec != nil {
		return r.exemplarVec, nil
	}
	vecs := make(map[models.Intent][][]float32, len(r.exemplars))
	for intent, queries := range r.exemplars {
		embedded, err := r.embedder.EmbedBatch(ctx, queries)
		if err != nil {
			return nil, fmt.Errorf("embedding exemplars for %s: %w", intent, err)
		}
		vecs[intent] = embedded
	}
	r.exemplarVec = vecs
	return vecs, nil
}

// classifyWithModel asks the chat model for a single intent label. Any
// reply that is not exactly one known label counts as malformed and the
// stage declines.
func (r *Router) classifyWithModel(ctx context.Context, query string) (models.Intent, bool) {
	if r.chat == nil {
		return "", false
	}
	messages := []chat.Message{
		{Role: "system", Content: classifierPrompt},
		{Role: "user", Content: query},
	}
	reply, err := r.chat.Chat(ctx, messages)
	if err != nil {
		r.logger.Warn("model classification unavailable", zap.Error(err))
		return "", false
	}
	label := strings.ToLower(strings.TrimSpace(reply))
	label = strings.Trim(label, `"'.`)
	switch models.Intent(label) {
	case models.IntentSearch, models.IntentAnalysis, models.IntentAdvice,
		models.IntentSummary, models.IntentComparison:
		return models.Intent(label), true
	}
	r.logger.Warn("model classification malformed", zap.String("reply", reply))
	return "", false
}

const classifierPrompt = `You are a query classifier. Reply with exactly one word, the category of the user's query, chosen from: search, analysis, advice, summary, comparison. Reply with the single word only.`

// strategyFor maps an intent to a handling strategy. Analysis shares the
// advice path because both need insight extraction over retrieved
// records; summaries pass the assembled context straight to the model.
func strategyFor(intent models.Intent) Strategy {
	switch intent {
	case models.IntentAdvice, models.IntentAnalysis:
		return StrategyAdvice
	case models.IntentSummary:
		return StrategyPassthrough
	default:
		return StrategySearch
	}
}
