package models

import "time"

// JournalEntry is a private journal submission with its derived AI analysis.
// Summary, Mood and Suggestion are only ever written together from one Analysis.
type JournalEntry struct {
	ID         string    `bson:"_id" json:"id"`
	OwnerID    string    `bson:"owner_id" json:"ownerId"`
	Content    string    `bson:"content" json:"content"`
	Summary    string    `bson:"summary" json:"summary"`
	Mood       Mood      `bson:"mood" json:"mood"`
	Suggestion string    `bson:"suggestion" json:"suggestion"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// Analysis is the summary/suggestion/mood triple parsed from one model response.
type Analysis struct {
	Summary    string
	Suggestion string
	Mood       Mood
}

// Apply copies the analysis onto the entry.
func (e *JournalEntry) Apply(a Analysis) {
	e.Summary = a.Summary
	e.Mood = a.Mood
	e.Suggestion = a.Suggestion
}
