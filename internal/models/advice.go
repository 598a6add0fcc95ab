package models

// InsightKind identifies which lexical pattern produced an insight.
type InsightKind string

const (
	InsightPattern     InsightKind = "pattern"
	InsightTrend       InsightKind = "trend"
	InsightOpportunity InsightKind = "opportunity"
)

// Priority orders action items. Higher value ranks first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Insight is one actionable observation extracted from retrieved context.
type Insight struct {
	Kind       InsightKind `json:"kind"`
	Text       string      `json:"text"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
	Priority   Priority    `json:"priority"`
}

// WarningKind identifies a safety term category.
type WarningKind string

const (
	WarningEmergency WarningKind = "emergency"
	WarningMedical   WarningKind = "medical"
	WarningFinancial WarningKind = "financial"
	WarningLegal     WarningKind = "legal"
)

// SafetyWarning is one disclaimer attached to an answer. Emergency warnings
// always sort first.
type SafetyWarning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// AdviceResult is the structured output of the advice engine.
type AdviceResult struct {
	Query          string          `json:"query"`
	Advice         string          `json:"advice"`
	Reasoning      string          `json:"reasoning"`
	Citations      []string        `json:"citations"`
	ActionItems    []string        `json:"action_items"`
	SafetyWarnings []SafetyWarning `json:"safety_warnings,omitempty"`
	Confidence     float64         `json:"confidence"`
	Degraded       bool            `json:"degraded,omitempty"`
}

// Answer is the top-level result of classify-and-answer. Exactly one of
// Results or Advice is populated depending on the routed strategy.
type Answer struct {
	Query    string          `json:"query"`
	Intent   Intent          `json:"intent"`
	Strategy string          `json:"strategy"`
	Results  []*SearchResult `json:"results,omitempty"`
	Advice   *AdviceResult   `json:"advice,omitempty"`
	Text     string          `json:"text,omitempty"`
}
