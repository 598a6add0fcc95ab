// Package planner classifies free-text queries into intent, target domains,
// time range, and keywords.
package planner

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/terms"
)

// intentOrder fixes classification precedence: first phrase-set match wins.
var intentOrder = []models.Intent{
	models.IntentAdvice,
	models.IntentAnalysis,
	models.IntentComparison,
	models.IntentSummary,
}

// Planner builds a QueryContext from a raw query using the configured term
// lists.
type Planner struct {
	terms *terms.Provider
}

// New creates a planner backed by the given term provider.
func New(provider *terms.Provider) *Planner {
	return &Planner{terms: provider}
}

// Plan classifies the query. The returned context is immutable by
// convention; downstream stages only read it.
func (p *Planner) Plan(query string) *models.QueryContext {
	lists := p.terms.Current()
	lowered := strings.ToLower(query)

	qc := &models.QueryContext{
		OriginalQuery: query,
		Intent:        p.classifyIntent(lowered, lists),
		TargetDomains: p.identifyDomains(lowered, lists),
		TimeRange:     ParseTimeRange(lowered),
		Keywords:      p.extractKeywords(lowered, lists),
		Filters:       map[string]string{},
	}
	return qc
}

// classifyIntent matches the query against each intent's phrase set in
// precedence order. No match defaults to search.
func (p *Planner) classifyIntent(lowered string, lists *terms.Lists) models.Intent {
	for _, intent := range intentOrder {
		for _, phrase := range lists.Intents[string(intent)] {
			if strings.Contains(lowered, phrase) {
				return intent
			}
		}
	}
	return models.IntentSearch
}

// MatchedIntents returns every intent whose phrase set matches the query, in
// precedence order. The router uses this to decide whether the rule-based
// stage is confident.
func (p *Planner) MatchedIntents(query string) []models.Intent {
	lists := p.terms.Current()
	lowered := strings.ToLower(query)
	var matched []models.Intent
	for _, intent := range intentOrder {
		for _, phrase := range lists.Intents[string(intent)] {
			if strings.Contains(lowered, phrase) {
				matched = append(matched, intent)
				break
			}
		}
	}
	return matched
}

// identifyDomains selects domains whose keywords appear in the query.
// No keyword match selects all domains (broad-search fallback, never zero).
func (p *Planner) identifyDomains(lowered string, lists *terms.Lists) []string {
	matched := make(map[string]bool)
	for domain, keywords := range lists.DomainKeywords {
		for _, kw := range keywords {
			if containsWord(lowered, kw) {
				matched[domain] = true
				break
			}
		}
	}
	if len(matched) == 0 {
		return models.AllDomains()
	}
	out := make([]string, 0, len(matched))
	for domain := range matched {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// extractKeywords lower-cases, strips punctuation, splits on whitespace, and
// drops short tokens and stop-words, preserving query order.
func (p *Planner) extractKeywords(lowered string, lists *terms.Lists) []string {
	stop := make(map[string]bool, len(lists.StopWords))
	for _, w := range lists.StopWords {
		stop[w] = true
	}
	var keywords []string
	for _, tok := range strings.Fields(lowered) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if len(tok) < 3 || stop[tok] {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// containsWord reports whether lowered contains kw as a whole word, so
// "ate" does not match inside "later".
func containsWord(lowered, kw string) bool {
	idx := 0
	for {
		i := strings.Index(lowered[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordRune(rune(lowered[start-1]))
		afterOK := end == len(lowered) || !isWordRune(rune(lowered[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(lowered) {
			return false
		}
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
