// Package advice turns retrieved personal records into grounded,
// safety-checked recommendations. Everything factual comes from the
// retrieval context; the engine never invents records.
package advice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kioku-labs/kioku/internal/chat"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/terms"
)

// Style selects the tone of the generated advice. The factual content is
// identical across styles; only framing and verbosity change.
type Style int

const (
	StyleConservative Style = iota
	StyleBalanced
	StyleAggressive
	StyleDataDriven
	StyleConcise
)

// String returns the config-file name of the style.
func (s Style) String() string {
	switch s {
	case StyleConservative:
		return "conservative"
	case StyleBalanced:
		return "balanced"
	case StyleAggressive:
		return "aggressive"
	case StyleDataDriven:
		return "datadriven"
	case StyleConcise:
		return "concise"
	}
	return "balanced"
}

// ParseStyle maps a config string to a Style, defaulting to balanced.
func ParseStyle(s string) Style {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative":
		return StyleConservative
	case "aggressive":
		return StyleAggressive
	case "datadriven", "data-driven", "data_driven":
		return StyleDataDriven
	case "concise":
		return StyleConcise
	default:
		return StyleBalanced
	}
}

// noRecordsAnswer is returned verbatim when retrieval found nothing. The
// engine must say so rather than fabricate.
const noRecordsAnswer = "I could not find any records relevant to this question, so I cannot give grounded advice. Try rephrasing, or rebuild the index if records were added recently."

// Engine generates advice from a retrieval context. The chat client is
// optional; without one (or when it is unavailable) the engine falls back
// to deterministic template text.
type Engine struct {
	chat           chat.Client
	terms          *terms.Provider
	safety         *SafetyChecker
	maxActionItems int
	logger         *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithChatClient enables free-form synthesis through the given client.
func WithChatClient(client chat.Client) Option {
	return func(e *Engine) {
		e.chat = client
	}
}

// WithMaxActionItems overrides the action item cap.
func WithMaxActionItems(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxActionItems = n
		}
	}
}

// NewEngine creates an advice engine over the given term provider.
func NewEngine(provider *terms.Provider, opts ...Option) *Engine {
	e := &Engine{
		terms:          provider,
		safety:         NewSafetyChecker(provider),
		maxActionItems: 5,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate produces advice for the query from the retrieval context.
func (e *Engine) Generate(ctx context.Context, query string, rc *models.RagContext, style Style) (*models.AdviceResult, error) {
	if rc == nil || len(rc.Results) == 0 {
		return &models.AdviceResult{
			Query:          query,
			Advice:         noRecordsAnswer,
			SafetyWarnings: e.safety.Check(query, ""),
			Confidence:     0,
		}, nil
	}

	lists := e.terms.Current()
	insights := ExtractInsights(rc, lists)

	result := &models.AdviceResult{
		Query:       query,
		Citations:   citations(rc.Results),
		ActionItems: e.actionItems(insights),
		Reasoning:   reasoning(rc, insights),
		Confidence:  confidence(rc.Results, insights),
		Degraded:    rc.Degraded,
	}

	body := adviceBody(query, insights, style)
	if e.chat != nil {
		synthesized, err := e.synthesize(ctx, query, rc, insights, style)
		if err != nil {
			e.logger.Warn("chat synthesis unavailable, using template advice", zap.Error(err))
			result.Degraded = true
		} else {
			body = synthesized
		}
	}
	result.Advice = body

	result.SafetyWarnings = e.safety.Check(query, result.Advice)
	return result, nil
}

// confidence combines retrieval similarity and insight strength:
// 0.6·meanSimilarity + 0.4·meanInsightConfidence, clamped to [0, 1].
func confidence(results []*models.SearchResult, insights []models.Insight) float64 {
	var simSum float64
	for _, r := range results {
		simSum += r.Similarity
	}
	meanSim := simSum / float64(len(results))

	var confSum float64
	for _, in := range insights {
		confSum += in.Confidence
	}
	meanConf := 0.0
	if len(insights) > 0 {
		meanConf = confSum / float64(len(insights))
	}

	c := 0.6*meanSim + 0.4*meanConf
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}

// citations returns unique citations in retrieval order.
func citations(results []*models.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var out []string
	for _, r := range results {
		c := r.Citation()
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// actionItems derives one item per insight, ranked urgent > high >
// medium > low and truncated to the configured cap. The sort is stable so
// equal priorities keep insight order.
func (e *Engine) actionItems(insights []models.Insight) []string {
	ranked := make([]models.Insight, len(insights))
	copy(ranked, insights)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	if len(ranked) > e.maxActionItems {
		ranked = ranked[:e.maxActionItems]
	}
	items := make([]string, 0, len(ranked))
	for _, in := range ranked {
		items = append(items, fmt.Sprintf("[%s] %s (%s)", in.Priority, in.Text, in.Source))
	}
	return items
}

func reasoning(rc *models.RagContext, insights []models.Insight) string {
	counts := map[models.InsightKind]int{}
	for _, in := range insights {
		counts[in.Kind]++
	}
	return fmt.Sprintf(
		"Based on %d retrieved records: %d recurring patterns, %d trends, %d opportunities.",
		len(rc.Results),
		counts[models.InsightPattern],
		counts[models.InsightTrend],
		counts[models.InsightOpportunity],
	)
}

// adviceBody renders deterministic template advice. The switch is
// exhaustive over the Style enum; the observations are identical across
// styles.
func adviceBody(query string, insights []models.Insight, style Style) string {
	var b strings.Builder
	switch style {
	case StyleConservative:
		b.WriteString("Here is a cautious reading of your records. Treat these as observations to verify, not conclusions:\n")
	case StyleBalanced:
		b.WriteString("Here is what your records suggest:\n")
	case StyleAggressive:
		b.WriteString("Your records point clearly in one direction. Act on the following:\n")
	case StyleDataDriven:
		b.WriteString("Findings from your records, with sources and confidence per item:\n")
	case StyleConcise:
		b.WriteString("In short:\n")
	}

	if len(insights) == 0 {
		b.WriteString("- The retrieved records match your question but show no notable patterns, trends, or opportunities.\n")
		return strings.TrimRight(b.String(), "\n")
	}
	for _, in := range insights {
		if style == StyleDataDriven {
			fmt.Fprintf(&b, "- %s [source %s, confidence %.1f]\n", in.Text, in.Source, in.Confidence)
			continue
		}
		fmt.Fprintf(&b, "- %s\n", in.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// synthesize asks the chat model to phrase the advice, constrained to the
// retrieved context and extracted insights.
func (e *Engine) synthesize(ctx context.Context, query string, rc *models.RagContext, insights []models.Insight, style Style) (string, error) {
	var insightLines strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&insightLines, "- (%s, %s) %s\n", in.Kind, in.Source, in.Text)
	}
	system := fmt.Sprintf(
		"You are a personal-data assistant. Answer in a %s tone. Use ONLY the provided records and insights; if they are insufficient, say so. Cite records as objectType(objectId).",
		style,
	)
	user := fmt.Sprintf("Question: %s\n\n%s\n\nExtracted insights:\n%s", query, rc.Block, insightLines.String())
	reply, err := e.chat.Chat(ctx, []chat.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("empty chat reply")
	}
	return reply, nil
}
