// Package transfer holds the external representation of dictionary content.
// Transfer objects carry lookup codes ("en", "NOUN", "us") where entities
// carry identifiers.
package transfer

import "github.com/google/uuid"

// EntryVersion is the editable shape of one entry version. A nil VersionID
// asks for a new entry and its first version.
type EntryVersion struct {
	VersionID *uuid.UUID `json:"version_id,omitempty" yaml:"version_id,omitempty"`
	EntryID   *uuid.UUID `json:"entry_id,omitempty" yaml:"entry_id,omitempty"`
	Number    int        `json:"number,omitempty" yaml:"number,omitempty"`
	Status    string     `json:"status" yaml:"status"`
	Language  string     `json:"language" yaml:"language"`
	Text      string     `json:"text" yaml:"text"`
	Notes     *string    `json:"notes,omitempty" yaml:"notes,omitempty"`

	// A nil slice leaves the persisted collection untouched.
	Senses         []*Sense         `json:"senses" yaml:"senses"`
	Pronunciations []*Pronunciation `json:"pronunciations" yaml:"pronunciations"`
}

// Provenance is the shared source attribution group.
type Provenance struct {
	SourceSlug string  `json:"source_slug" yaml:"source_slug"`
	SourceURL  *string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

type Sense struct {
	ID           *uuid.UUID     `json:"id,omitempty" yaml:"id,omitempty"`
	PartOfSpeech *string        `json:"part_of_speech,omitempty" yaml:"part_of_speech,omitempty"`
	Definition   *string        `json:"definition,omitempty" yaml:"definition,omitempty"`
	CEFRLevel    *string        `json:"cefr_level,omitempty" yaml:"cefr_level,omitempty"`
	Position     int            `json:"position" yaml:"position"`
	Provenance   *Provenance    `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	Translations []*Translation `json:"translations" yaml:"translations"`
	Examples     []*Example     `json:"examples" yaml:"examples"`
}

type Translation struct {
	ID         *uuid.UUID  `json:"id,omitempty" yaml:"id,omitempty"`
	Language   string      `json:"language" yaml:"language"`
	Text       string      `json:"text" yaml:"text"`
	Position   int         `json:"position" yaml:"position"`
	Provenance *Provenance `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

type Example struct {
	ID          *uuid.UUID  `json:"id,omitempty" yaml:"id,omitempty"`
	Sentence    string      `json:"sentence" yaml:"sentence"`
	Translation *string     `json:"translation,omitempty" yaml:"translation,omitempty"`
	Position    int         `json:"position" yaml:"position"`
	Provenance  *Provenance `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

type Pronunciation struct {
	ID            *uuid.UUID `json:"id,omitempty" yaml:"id,omitempty"`
	Region        *string    `json:"region,omitempty" yaml:"region,omitempty"`
	Transcription string     `json:"transcription" yaml:"transcription"`
	AudioURL      *string    `json:"audio_url,omitempty" yaml:"audio_url,omitempty"`
}

// EntrySummary is a read-only listing row.
type EntrySummary struct {
	EntryID    uuid.UUID `json:"entry_id"`
	VersionID  uuid.UUID `json:"version_id"`
	Number     int       `json:"number"`
	Status     string    `json:"status"`
	Language   string    `json:"language"`
	Text       string    `json:"text"`
	SenseCount int       `json:"sense_count"`
}
