package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity kinds, used as table and staging keys.
const (
	KindEntry         = "entry"
	KindEntryVersion  = "entry_version"
	KindSense         = "sense"
	KindTranslation   = "translation"
	KindExample       = "example"
	KindPronunciation = "pronunciation"
)

// Entry is the permanent identity of a dictionary word owned by one user.
// Its content lives in EntryVersion rows.
type Entry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

func (e *Entry) EntityKind() string       { return KindEntry }
func (e *Entry) EntityID() uuid.UUID      { return e.ID }
func (e *Entry) SetEntityID(id uuid.UUID) { e.ID = id }
func (e *Entry) Clone() any               { c := *e; return &c }

// EntryVersion is one point-in-time snapshot of an entry.
type EntryVersion struct {
	ID             uuid.UUID
	EntryID        uuid.UUID
	Number         int
	Status         VersionStatus
	LanguageID     uuid.UUID
	Text           string
	TextNormalized string
	Notes          *string
	UpdatedAt      time.Time

	Senses         []*Sense
	Pronunciations []*Pronunciation
}

func (v *EntryVersion) EntityKind() string       { return KindEntryVersion }
func (v *EntryVersion) EntityID() uuid.UUID      { return v.ID }
func (v *EntryVersion) SetEntityID(id uuid.UUID) { v.ID = id }
func (v *EntryVersion) RootID() uuid.UUID        { return v.EntryID }
func (v *EntryVersion) SetRootID(id uuid.UUID)   { v.EntryID = id }
func (v *EntryVersion) VersionNumber() int       { return v.Number }
func (v *EntryVersion) SetVersionNumber(n int)   { v.Number = n }

// Clone returns a row-level copy; child collections are not carried over.
func (v *EntryVersion) Clone() any {
	c := *v
	c.Senses, c.Pronunciations = nil, nil
	return &c
}

// Provenance records where a piece of content came from.
type Provenance struct {
	SourceSlug string
	SourceURL  *string
}

// Sense is one meaning of an entry version.
type Sense struct {
	ID             uuid.UUID
	VersionID      uuid.UUID
	PartOfSpeechID *uuid.UUID
	Definition     *string
	CEFRLevel      *string
	Position       int
	Provenance     Provenance

	Translations []*Translation
	Examples     []*Example
}

func (s *Sense) EntityKind() string       { return KindSense }
func (s *Sense) EntityID() uuid.UUID      { return s.ID }
func (s *Sense) SetEntityID(id uuid.UUID) { s.ID = id }
func (s *Sense) OwnerID() uuid.UUID       { return s.VersionID }
func (s *Sense) SetOwnerID(id uuid.UUID)  { s.VersionID = id }

func (s *Sense) Clone() any {
	c := *s
	c.Translations, c.Examples = nil, nil
	return &c
}

// Translation is a localized rendering of a sense.
type Translation struct {
	ID         uuid.UUID
	SenseID    uuid.UUID
	LanguageID uuid.UUID
	Text       string
	Position   int
	Provenance Provenance
}

func (t *Translation) EntityKind() string       { return KindTranslation }
func (t *Translation) EntityID() uuid.UUID      { return t.ID }
func (t *Translation) SetEntityID(id uuid.UUID) { t.ID = id }
func (t *Translation) OwnerID() uuid.UUID       { return t.SenseID }
func (t *Translation) SetOwnerID(id uuid.UUID)  { t.SenseID = id }

// Example is a usage example of a sense.
type Example struct {
	ID          uuid.UUID
	SenseID     uuid.UUID
	Sentence    string
	Translation *string
	Position    int
	Provenance  Provenance
}

func (e *Example) EntityKind() string       { return KindExample }
func (e *Example) EntityID() uuid.UUID      { return e.ID }
func (e *Example) SetEntityID(id uuid.UUID) { e.ID = id }
func (e *Example) OwnerID() uuid.UUID       { return e.SenseID }
func (e *Example) SetOwnerID(id uuid.UUID)  { e.SenseID = id }

// Pronunciation is a transcription of an entry version, optionally regional.
type Pronunciation struct {
	ID            uuid.UUID
	VersionID     uuid.UUID
	RegionID      *uuid.UUID
	Transcription string
	AudioURL      *string
}

func (p *Pronunciation) EntityKind() string       { return KindPronunciation }
func (p *Pronunciation) EntityID() uuid.UUID      { return p.ID }
func (p *Pronunciation) SetEntityID(id uuid.UUID) { p.ID = id }
func (p *Pronunciation) OwnerID() uuid.UUID       { return p.VersionID }
func (p *Pronunciation) SetOwnerID(id uuid.UUID)  { p.VersionID = id }
