// Package assistant is the top-level API: it wires the query planner,
// router, retrieval pipeline, and advice engine into a single
// classify-and-answer entry point.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kioku-labs/kioku/internal/advice"
	"github.com/kioku-labs/kioku/internal/chat"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/planner"
	"github.com/kioku-labs/kioku/internal/rag"
	"github.com/kioku-labs/kioku/internal/router"
)

// Assistant answers free-text questions over the indexed record corpus.
type Assistant struct {
	planner  *planner.Planner
	router   *router.Router
	pipeline *rag.Pipeline
	engine   *advice.Engine
	chat     chat.Client // optional, used by the passthrough strategy
	style    advice.Style
	logger   *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the assistant's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithChatClient enables model-written summaries for passthrough queries.
func WithChatClient(client chat.Client) Option {
	return func(a *Assistant) {
		a.chat = client
	}
}

// WithStyle sets the advice style.
func WithStyle(style advice.Style) Option {
	return func(a *Assistant) {
		a.style = style
	}
}

// New assembles an assistant from its stages.
func New(p *planner.Planner, r *router.Router, pipeline *rag.Pipeline, engine *advice.Engine, opts ...Option) *Assistant {
	a := &Assistant{
		planner:  p,
		router:   r,
		pipeline: pipeline,
		engine:   engine,
		style:    advice.StyleBalanced,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer runs the full pipeline for one query: plan, route, retrieve,
// then answer according to the routed strategy.
func (a *Assistant) Answer(ctx context.Context, query string) (*models.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	qc := a.planner.Plan(query)
	route := a.router.Route(ctx, query, qc)
	a.logger.Debug("query routed",
		zap.String("query", query),
		zap.String("intent", string(route.Intent)),
		zap.String("strategy", string(route.Strategy)),
		zap.String("stage", string(route.Stage)),
	)

	rc, err := a.pipeline.BuildContext(ctx, query, qc.TargetDomains, 0)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	answer := &models.Answer{
		Query:    query,
		Intent:   route.Intent,
		Strategy: string(route.Strategy),
	}
	switch route.Strategy {
	case router.StrategyAdvice:
		result, err := a.engine.Generate(ctx, query, rc, a.style)
		if err != nil {
			return nil, fmt.Errorf("advice generation failed: %w", err)
		}
		answer.Advice = result
	case router.StrategyPassthrough:
		answer.Results = rc.Results
		answer.Text = a.summarize(ctx, query, rc)
	default:
		answer.Results = rc.Results
	}
	return answer, nil
}

// summarize produces plain text over the assembled context, via the chat
// model when one is available and reachable, otherwise the raw context
// block.
func (a *Assistant) summarize(ctx context.Context, query string, rc *models.RagContext) string {
	if len(rc.Results) == 0 {
		return "No matching records found."
	}
	if a.chat != nil {
		reply, err := a.chat.Chat(ctx, []chat.Message{
			{Role: "system", Content: "Summarize the user's personal records below to answer their question. Use only the provided records; cite them as objectType(objectId)."},
			{Role: "user", Content: fmt.Sprintf("Question: %s\n\n%s", query, rc.Block)},
		})
		if err == nil && strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply)
		}
		a.logger.Warn("summary synthesis unavailable, returning raw context", zap.Error(err))
	}
	return rc.Block
}

// RebuildIndex re-embeds the full corpus. It returns false when a rebuild
// is already running.
func (a *Assistant) RebuildIndex(ctx context.Context, onProgress func(current, total int)) (bool, error) {
	return a.pipeline.Rebuild(ctx, onProgress)
}

// IndexingStatus reports embedding coverage per domain.
func (a *Assistant) IndexingStatus(ctx context.Context) (*models.IndexingStatus, error) {
	return a.pipeline.IndexingStatus(ctx)
}

// RebuildProgress returns the live progress of an active rebuild.
func (a *Assistant) RebuildProgress() (current, total int, rebuilding bool) {
	current, total = a.pipeline.Progress()
	return current, total, a.pipeline.Rebuilding()
}
