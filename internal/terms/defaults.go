package terms

// Defaults returns the compiled-in term lists. Used when no terms file is
// configured and as the fallback for sections missing from a partial file.
func Defaults() *Lists {
	return &Lists{
		Intents: map[string][]string{
			"advice": {
				"should i", "recommend", "advice", "suggest",
				"what can i do", "how can i improve", "help me decide",
				"is it a good idea", "worth it",
			},
			"analysis": {
				"analyze", "analysis", "pattern", "trend", "how much",
				"how many", "how often", "breakdown", "average", "total",
				"correlation",
			},
			"comparison": {
				"compare", "compared", "versus", " vs ", "difference between",
				"better than", "worse than", "more than last", "less than last",
			},
			"summary": {
				"summarize", "summarise", "summary", "overview", "recap",
				"what happened", "give me a rundown",
			},
		},
		DomainKeywords: map[string][]string{
			"finance_records": {
				"spend", "spent", "spending", "money", "cost", "price",
				"bought", "purchase", "budget", "expense", "expenses",
				"groceries", "rent", "salary", "income", "paid", "bill",
			},
			"meal_records": {
				"eat", "ate", "eating", "meal", "meals", "food", "breakfast",
				"lunch", "dinner", "snack", "cooked", "calories", "diet",
			},
			"exercise_records": {
				"workout", "workouts", "exercise", "exercised", "run", "ran",
				"running", "gym", "walked", "walking", "steps", "training",
				"yoga", "cycling",
			},
			"sleep_records": {
				"sleep", "slept", "sleeping", "nap", "bedtime", "insomnia",
				"woke", "rest",
			},
			"health_metrics": {
				"weight", "blood", "pressure", "heart", "pulse", "symptom",
				"symptoms", "temperature", "glucose", "cholesterol",
			},
			"medication_records": {
				"medication", "medications", "medicine", "pill", "pills",
				"dose", "prescription", "vitamin", "supplement",
			},
			"journal_entries": {
				"journal", "diary", "wrote", "writing", "note", "notes",
				"thought", "thoughts", "reflection",
			},
			"mood_records": {
				"mood", "moods", "feeling", "feelings", "felt", "happy",
				"sad", "anxious", "stress", "stressed", "energy",
			},
			"event_records": {
				"event", "events", "meeting", "meetings", "appointment",
				"appointments", "party", "birthday", "anniversary", "concert",
			},
			"task_records": {
				"task", "tasks", "todo", "todos", "deadline", "deadlines",
				"project", "projects", "finished", "completed", "chore",
			},
			"contact_records": {
				"friend", "friends", "family", "contact", "contacts",
				"called", "talked", "met", "conversation",
			},
			"study_records": {
				"study", "studied", "studying", "learn", "learned", "course",
				"courses", "book", "books", "read", "reading", "lecture",
				"exam",
			},
			"travel_records": {
				"travel", "traveled", "trip", "trips", "flight", "flights",
				"hotel", "vacation", "visited", "itinerary",
			},
			"habit_records": {
				"habit", "habits", "streak", "streaks", "routine", "routines",
				"daily", "practice",
			},
		},
		StopWords: []string{
			"the", "and", "for", "are", "was", "were", "did", "does", "doing",
			"you", "your", "yours", "have", "has", "had", "not", "but",
			"with", "this", "that", "these", "those", "what", "when",
			"where", "which", "who", "how", "why", "can", "could", "would",
			"will", "shall", "about", "into", "over", "under", "there",
			"here", "from", "been", "being", "than", "then", "them", "they",
			"all", "any", "each", "much", "many", "some", "very", "just",
			"get", "got", "last", "next", "per",
		},
		Insights: map[string][]string{
			"pattern": {
				"every day", "every week", "every month", "usually",
				"always", "often", "regularly", "each time", "tend to",
				"keep", "repeatedly",
			},
			"trend": {
				"increased", "increasing", "decreased", "decreasing",
				"more than", "less than", "growing", "declining",
				"went up", "went down", "improved", "worsened", "rising",
			},
			"opportunity": {
				"could", "might", "consider", "opportunity", "potential",
				"unused", "save", "instead", "alternative", "room for",
			},
		},
		Safety: map[string][]string{
			"medical": {
				"symptom", "symptoms", "diagnosis", "diagnose", "dosage",
				"treatment", "disease", "chest pain", "blood pressure",
				"surgery", "medication change", "side effect",
			},
			"financial": {
				"invest", "investment", "stocks", "loan", "mortgage",
				"debt", "retirement fund", "crypto", "gambling",
				"bankruptcy",
			},
			"legal": {
				"lawsuit", "contract", "divorce", "custody", "sue",
				"liability", "visa", "immigration", "lawyer",
			},
			"emergency": {
				"suicide", "suicidal", "self-harm", "self harm",
				"kill myself", "want to die", "end my life", "overdose",
				"crisis", "abuse",
			},
		},
	}
}
