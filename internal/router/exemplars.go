package router

import "github.com/kioku-labs/kioku/internal/models"

// defaultExemplars returns the built-in exemplar queries used by the
// semantic similarity stage. A handful per intent is enough; the stage
// only needs a nearest-neighbor anchor, not coverage.
func defaultExemplars() map[models.Intent][]string {
	return map[models.Intent][]string{
		models.IntentSearch: {
			"find my notes about the trip to kyoto",
			"when did i last go to the dentist",
			"show me the recipe i saved on tuesday",
		},
		models.IntentAnalysis: {
			"how much did i spend on groceries last month",
			"how has my sleep changed over the last three months",
			"what is my average daily step count",
		},
		models.IntentAdvice: {
			"should i cut back on eating out",
			"what can i do to sleep better",
			"help me decide whether to renew my gym membership",
		},
		models.IntentSummary: {
			"summarize my week",
			"give me an overview of last month",
			"what happened in my journal this year",
		},
		models.IntentComparison: {
			"compare my spending this month versus last month",
			"did i exercise more than last year",
			"difference between my weekday and weekend sleep",
		},
	}
}
