// Package models defines the journal and schedule types exchanged between
// the sync engine, the local cache, and the remote store.
package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mindtide/moodsync/internal/common"
)

// Mood classifies an entry's reported mood.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
	MoodAnxious Mood = "anxious"
	MoodAngry   Mood = "angry"
	MoodTired   Mood = "tired"
)

// Moods lists every valid mood, in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodNeutral, MoodAnxious, MoodAngry, MoodTired}

// Valid reports whether m is one of the closed mood enumeration.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// JournalEntry is a single journal record. The id is assigned by the remote
// store on first successful creation; AIResponse is attached by the remote
// and carried opaquely. JSON tags follow the backend's wire format.
type JournalEntry struct {
	ID         string    `json:"_id"`
	Text       string    `json:"text"`
	Mood       Mood      `json:"mood"`
	CreatedAt  time.Time `json:"createdAt"`
	AIResponse string    `json:"aiResponse,omitempty"`
}

// NewEntry is the client-side payload for creating an entry. CreatedAt is set
// by the client at submission; the remote's value wins once confirmed.
type NewEntry struct {
	Text      string    `json:"text" validate:"required"`
	Mood      Mood      `json:"mood" validate:"required,oneof=happy sad neutral anxious angry tired"`
	CreatedAt time.Time `json:"createdAt"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the payload before any network call is attempted.
func (e NewEntry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidEntry, err)
	}
	return nil
}
