package advice

import (
	"sort"
	"strings"

	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/terms"
)

// warningMessages holds the fixed disclaimer text per category. The
// emergency message always leads with crisis resources.
var warningMessages = map[models.WarningKind]string{
	models.WarningEmergency: "If you are in crisis or thinking about harming yourself, please reach out now: call or text a local crisis line, or contact emergency services. This assistant cannot provide crisis support.",
	models.WarningMedical:   "This is not medical advice. Please consult a qualified healthcare professional before acting on anything health-related.",
	models.WarningFinancial: "This is not financial advice. Consider consulting a licensed financial advisor before making significant financial decisions.",
	models.WarningLegal:     "This is not legal advice. Please consult a qualified lawyer for legal matters.",
}

// kindRank orders warnings in the output; emergency always first.
var kindRank = map[models.WarningKind]int{
	models.WarningEmergency: 0,
	models.WarningMedical:   1,
	models.WarningFinancial: 2,
	models.WarningLegal:     3,
}

// SafetyChecker attaches disclaimers when a query or generated content
// touches sensitive territory. It is a lexical best-effort heuristic: it
// can miss phrasings its term lists do not cover, so its output is always
// surfaced and never filtered downstream.
type SafetyChecker struct {
	terms *terms.Provider
}

// NewSafetyChecker creates a checker over the given term provider.
func NewSafetyChecker(provider *terms.Provider) *SafetyChecker {
	return &SafetyChecker{terms: provider}
}

// Check scans the query and content for sensitive terms and returns at
// most one warning per category, emergency first.
func (c *SafetyChecker) Check(query, content string) []models.SafetyWarning {
	lists := c.terms.Current()
	haystack := strings.ToLower(query + "\n" + content)

	var warnings []models.SafetyWarning
	for category, phrases := range lists.Safety {
		kind := models.WarningKind(category)
		for _, phrase := range phrases {
			if strings.Contains(haystack, phrase) {
				warnings = append(warnings, models.SafetyWarning{
					Kind:    kind,
					Message: warningMessages[kind],
				})
				break
			}
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return kindRank[warnings[i].Kind] < kindRank[warnings[j].Kind]
	})
	return warnings
}
