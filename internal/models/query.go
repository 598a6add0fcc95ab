package models

import "time"

// Intent classifies what a query wants from the assistant.
type Intent string

const (
	IntentSearch     Intent = "search"
	IntentAnalysis   Intent = "analysis"
	IntentAdvice     Intent = "advice"
	IntentSummary    Intent = "summary"
	IntentComparison Intent = "comparison"
)

// TimePeriod identifies a recognized time-range phrase.
type TimePeriod string

const (
	PeriodToday     TimePeriod = "today"
	PeriodYesterday TimePeriod = "yesterday"
	PeriodThisWeek  TimePeriod = "thisWeek"
	PeriodLastWeek  TimePeriod = "lastWeek"
	PeriodThisMonth TimePeriod = "thisMonth"
	PeriodLastMonth TimePeriod = "lastMonth"
	PeriodThisYear  TimePeriod = "thisYear"
	PeriodYear      TimePeriod = "year"
	PeriodLastN     TimePeriod = "lastN"
)

// TimeRange is a resolved query time window.
type TimeRange struct {
	Period TimePeriod `json:"period"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
}

// QueryContext is the planner's classification of a free-text query.
// It is constructed once per query and not mutated afterwards.
type QueryContext struct {
	OriginalQuery string            `json:"original_query"`
	Intent        Intent            `json:"intent"`
	TargetDomains []string          `json:"target_domains"`
	TimeRange     *TimeRange        `json:"time_range,omitempty"`
	Keywords      []string          `json:"keywords"`
	Filters       map[string]string `json:"filters,omitempty"`
}

// IsCrossDomain reports whether the query targets more than one domain.
func (q *QueryContext) IsCrossDomain() bool {
	return len(q.TargetDomains) > 1
}
