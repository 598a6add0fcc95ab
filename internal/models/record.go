// Package models defines core data structures for records, queries, and answers.
package models

import "time"

// Domain tags for the record store. Every record carries exactly one of these
// as its object type.
const (
	DomainFinance    = "finance_records"
	DomainMeals      = "meal_records"
	DomainExercise   = "exercise_records"
	DomainSleep      = "sleep_records"
	DomainHealth     = "health_metrics"
	DomainMedication = "medication_records"
	DomainJournal    = "journal_entries"
	DomainMood       = "mood_records"
	DomainEvents     = "event_records"
	DomainTasks      = "task_records"
	DomainContacts   = "contact_records"
	DomainStudy      = "study_records"
	DomainTravel     = "travel_records"
	DomainHabits     = "habit_records"
)

// AllDomains lists every known domain tag in a stable order.
func AllDomains() []string {
	return []string{
		DomainFinance, DomainMeals, DomainExercise, DomainSleep,
		DomainHealth, DomainMedication, DomainJournal, DomainMood,
		DomainEvents, DomainTasks, DomainContacts, DomainStudy,
		DomainTravel, DomainHabits,
	}
}

// Record is a single life record as read from the record store.
// The core never mutates records; it only chunks and indexes their text.
type Record struct {
	ObjectType string                 `json:"object_type" db:"object_type"`
	ObjectID   string                 `json:"object_id" db:"object_id"`
	Title      string                 `json:"title,omitempty" db:"title"`
	Content    string                 `json:"content" db:"content"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// Text returns the record content prefixed with its title when present.
func (r *Record) Text() string {
	if r.Title == "" {
		return r.Content
	}
	return r.Title + "\n" + r.Content
}

// Chunk is a bounded, possibly overlapping substring of a record's text,
// sized for the embedding model's input limit.
type Chunk struct {
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	Overlap    int    `json:"overlap"`
}

// Embedding is a stored chunk vector. Vector length is constant across the
// whole store; the dimension is fixed by the active embedding model.
type Embedding struct {
	ID         string    `json:"id" db:"id"`
	ObjectType string    `json:"object_type" db:"object_type"`
	ObjectID   string    `json:"object_id" db:"object_id"`
	ChunkText  string    `json:"chunk_text" db:"chunk_text"`
	Vector     []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
