package models

import "strings"

// Mood is the model-reported mood label. It is an open set: values outside the
// canonical five are stored as returned and shown with a fallback category.
type Mood string

const (
	MoodHappy    Mood = "Happy"
	MoodSad      Mood = "Sad"
	MoodAngry    Mood = "Angry"
	MoodStressed Mood = "Stressed"
	MoodNeutral  Mood = "Neutral"
)

// CanonicalMoods is the vocabulary the model is asked to choose from.
var CanonicalMoods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodStressed, MoodNeutral}

// MoodCategory is the display bucket of a mood.
type MoodCategory string

const (
	CategoryHappy        MoodCategory = "happy"
	CategorySad          MoodCategory = "sad"
	CategoryAngry        MoodCategory = "angry"
	CategoryStressed     MoodCategory = "stressed"
	CategoryNeutral      MoodCategory = "neutral"
	CategoryAnxious      MoodCategory = "anxious"
	CategoryContent      MoodCategory = "content"
	CategoryUnrecognized MoodCategory = "unrecognized"
)

// MoodCategories lists every category in display order, fallback last.
var MoodCategories = []MoodCategory{
	CategoryHappy, CategorySad, CategoryAngry, CategoryStressed, CategoryNeutral,
	CategoryAnxious, CategoryContent, CategoryUnrecognized,
}

var knownCategories = map[string]MoodCategory{
	"happy":    CategoryHappy,
	"sad":      CategorySad,
	"angry":    CategoryAngry,
	"stressed": CategoryStressed,
	"neutral":  CategoryNeutral,
	"anxious":  CategoryAnxious,
	"content":  CategoryContent,
}

// Normalized returns the lower-cased, trimmed form used for comparisons.
func (m Mood) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(m)))
}

// IsCanonical reports whether m is one of the five canonical moods, ignoring case.
func (m Mood) IsCanonical() bool {
	n := m.Normalized()
	for _, c := range CanonicalMoods {
		if n == c.Normalized() {
			return true
		}
	}
	return false
}

// Category maps the mood to its display category. Unknown moods fall back to
// CategoryUnrecognized.
func (m Mood) Category() MoodCategory {
	if c, ok := knownCategories[m.Normalized()]; ok {
		return c
	}
	return CategoryUnrecognized
}
