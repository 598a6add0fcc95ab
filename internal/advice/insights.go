package advice

import (
	"fmt"
	"strings"

	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/terms"
)

// Fixed confidences per insight kind. Patterns are the strongest signal
// because repetition phrases rarely appear incidentally.
const (
	patternConfidence     = 0.7
	trendConfidence       = 0.6
	opportunityConfidence = 0.5
)

// insightKinds fixes scan order so output is deterministic regardless of
// map iteration.
var insightKinds = []struct {
	kind       models.InsightKind
	confidence float64
	priority   models.Priority
}{
	{models.InsightPattern, patternConfidence, models.PriorityMedium},
	{models.InsightTrend, trendConfidence, models.PriorityHigh},
	{models.InsightOpportunity, opportunityConfidence, models.PriorityLow},
}

// ExtractInsights scans each retrieved chunk for pattern, trend, and
// opportunity phrases. Purely lexical: no model calls, same input always
// yields the same insights. At most one insight per kind per chunk.
func ExtractInsights(rc *models.RagContext, lists *terms.Lists) []models.Insight {
	if rc == nil {
		return nil
	}
	var insights []models.Insight
	for _, result := range rc.Results {
		lowered := strings.ToLower(result.Text)
		for _, ik := range insightKinds {
			phrase := firstMatch(lowered, lists.Insights[string(ik.kind)])
			if phrase == "" {
				continue
			}
			insights = append(insights, models.Insight{
				Kind:       ik.kind,
				Text:       insightText(ik.kind, phrase, result),
				Source:     result.Citation(),
				Confidence: ik.confidence,
				Priority:   ik.priority,
			})
		}
	}
	return insights
}

func firstMatch(lowered string, phrases []string) string {
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return phrase
		}
	}
	return ""
}

// insightText renders a short human-readable observation around the
// matched phrase and its source record.
func insightText(kind models.InsightKind, phrase string, result *models.SearchResult) string {
	snippet := trimSnippet(result.Text, 120)
	switch kind {
	case models.InsightPattern:
		return fmt.Sprintf("Recurring behavior (%q): %s", phrase, snippet)
	case models.InsightTrend:
		return fmt.Sprintf("Change over time (%q): %s", phrase, snippet)
	default:
		return fmt.Sprintf("Possible opportunity (%q): %s", phrase, snippet)
	}
}

func trimSnippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
