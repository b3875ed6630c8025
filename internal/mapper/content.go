package mapper

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/lookup"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
)

// ---------------------------------------------------------------------------
// Provenance
// ---------------------------------------------------------------------------

// Provenance is shared by senses, translations and examples and merged into
// each of them with a partial rule.

var provenanceOut = mapping.Rules(
	mapping.Simple("source_slug",
		func(p *domain.Provenance) string { return p.SourceSlug },
		func(d *transfer.Provenance, s string) { d.SourceSlug = s }),
	mapping.Simple("source_url",
		func(p *domain.Provenance) *string { return p.SourceURL },
		func(d *transfer.Provenance, s *string) { d.SourceURL = s }),
)

var provenanceIn = mapping.Rules(
	mapping.Simple("source_slug",
		func(d *transfer.Provenance) string { return d.SourceSlug },
		func(p *domain.Provenance, s string) { p.SourceSlug = s }),
	mapping.Simple("source_url",
		func(d *transfer.Provenance) *string { return d.SourceURL },
		func(p *domain.Provenance, s *string) { p.SourceURL = s }),
)

// provenanceOf reports an entity's provenance; an empty group is absent.
func provenanceOf(p *domain.Provenance) (*domain.Provenance, bool) {
	return p, p.SourceSlug != "" || p.SourceURL != nil
}

func present(p *transfer.Provenance) (*transfer.Provenance, bool) {
	return p, p != nil
}

func provenanceTarget(p **transfer.Provenance) *transfer.Provenance {
	if *p == nil {
		*p = &transfer.Provenance{}
	}
	return *p
}

// ---------------------------------------------------------------------------
// Senses
// ---------------------------------------------------------------------------

func (m *Mapper) senseOut() mapping.Child[*domain.Sense, *transfer.Sense] {
	return mapping.Child[*domain.Sense, *transfer.Sense]{
		New: func() *transfer.Sense { return &transfer.Sense{} },
		Rules: mapping.Rules(
			mapping.Simple("id",
				func(s *domain.Sense) *uuid.UUID { return idPtr(s.ID) },
				func(d *transfer.Sense, id *uuid.UUID) { d.ID = id }),
			mapping.Navigate("part_of_speech",
				func(s *domain.Sense) (*string, error) {
					return m.typeCode(lookup.CategoryPartOfSpeech, s.PartOfSpeechID)
				},
				func(d *transfer.Sense, code *string) { d.PartOfSpeech = code }),
			mapping.Simple("definition",
				func(s *domain.Sense) *string { return s.Definition },
				func(d *transfer.Sense, v *string) { d.Definition = v }),
			mapping.Simple("cefr_level",
				func(s *domain.Sense) *string { return s.CEFRLevel },
				func(d *transfer.Sense, v *string) { d.CEFRLevel = v }),
			mapping.Simple("position",
				func(s *domain.Sense) int { return s.Position },
				func(d *transfer.Sense, n int) { d.Position = n }),
			mapping.Partial("provenance",
				func(s *domain.Sense) (*domain.Provenance, bool) { return provenanceOf(&s.Provenance) },
				func(d *transfer.Sense) *transfer.Provenance { return provenanceTarget(&d.Provenance) },
				provenanceOut),
			mapping.Collection("translations",
				func(s *domain.Sense) []*domain.Translation { return s.Translations },
				func(d *transfer.Sense, out []*transfer.Translation) { d.Translations = out },
				m.translationOut(), mapping.RemoveObsolete),
			mapping.Collection("examples",
				func(s *domain.Sense) []*domain.Example { return s.Examples },
				func(d *transfer.Sense, out []*transfer.Example) { d.Examples = out },
				exampleOut(), mapping.KeepUnmatched),
		),
	}
}

// senseIn matches senses by id. Senses missing from the transfer object are
// deleted together with their translations and examples.
func (m *Mapper) senseIn() mapping.Child[*transfer.Sense, *domain.Sense] {
	return mapping.Child[*transfer.Sense, *domain.Sense]{
		New:   func() *domain.Sense { return &domain.Sense{} },
		IsNew: func(d *transfer.Sense) bool { return d.ID == nil },
		Match: func(d *transfer.Sense, s *domain.Sense) bool { return byID(d.ID, s.ID) },
		Rules: mapping.Rules(
			mapping.Navigate("part_of_speech",
				func(d *transfer.Sense) (*uuid.UUID, error) {
					return m.typeID(lookup.CategoryPartOfSpeech, d.PartOfSpeech)
				},
				func(s *domain.Sense, id *uuid.UUID) { s.PartOfSpeechID = id }),
			mapping.Simple("definition",
				func(d *transfer.Sense) *string { return d.Definition },
				func(s *domain.Sense, v *string) { s.Definition = v }),
			mapping.Navigate("cefr_level",
				func(d *transfer.Sense) (*string, error) { return cefrLevel(d.CEFRLevel) },
				func(s *domain.Sense, v *string) { s.CEFRLevel = v }),
			mapping.Simple("position",
				func(d *transfer.Sense) int { return d.Position },
				func(s *domain.Sense, n int) { s.Position = n }),
			mapping.Partial("provenance",
				func(d *transfer.Sense) (*transfer.Provenance, bool) { return present(d.Provenance) },
				func(s *domain.Sense) *domain.Provenance { return &s.Provenance },
				provenanceIn),
			mapping.Collection("translations",
				func(d *transfer.Sense) []*transfer.Translation { return d.Translations },
				func(s *domain.Sense, live []*domain.Translation) { s.Translations = live },
				m.translationIn(), mapping.RemoveObsolete),
			mapping.Collection("examples",
				func(d *transfer.Sense) []*transfer.Example { return d.Examples },
				func(s *domain.Sense, live []*domain.Example) { s.Examples = live },
				exampleIn(), mapping.KeepUnmatched),
		),
	}
}

// ---------------------------------------------------------------------------
// Translations
// ---------------------------------------------------------------------------

func (m *Mapper) translationOut() mapping.Child[*domain.Translation, *transfer.Translation] {
	return mapping.Child[*domain.Translation, *transfer.Translation]{
		New: func() *transfer.Translation { return &transfer.Translation{} },
		Rules: mapping.Rules(
			mapping.Simple("id",
				func(t *domain.Translation) *uuid.UUID { return idPtr(t.ID) },
				func(d *transfer.Translation, id *uuid.UUID) { d.ID = id }),
			mapping.Navigate("language",
				func(t *domain.Translation) (string, error) { return m.languageCode(t.LanguageID) },
				func(d *transfer.Translation, tag string) { d.Language = tag }),
			mapping.Simple("text",
				func(t *domain.Translation) string { return t.Text },
				func(d *transfer.Translation, s string) { d.Text = s }),
			mapping.Simple("position",
				func(t *domain.Translation) int { return t.Position },
				func(d *transfer.Translation, n int) { d.Position = n }),
			mapping.Partial("provenance",
				func(t *domain.Translation) (*domain.Provenance, bool) { return provenanceOf(&t.Provenance) },
				func(d *transfer.Translation) *transfer.Provenance { return provenanceTarget(&d.Provenance) },
				provenanceOut),
		),
	}
}

// translationIn matches localized rows by id, or else by language and text
// within the owning sense.
func (m *Mapper) translationIn() mapping.Child[*transfer.Translation, *domain.Translation] {
	return mapping.Child[*transfer.Translation, *domain.Translation]{
		New: func() *domain.Translation { return &domain.Translation{} },
		Matcher: func(d *transfer.Translation) (func(*domain.Translation) bool, error) {
			if d.ID != nil {
				id := *d.ID
				return func(t *domain.Translation) bool { return t.ID == id }, nil
			}
			lang, err := m.languageID(d.Language)
			if err != nil {
				return nil, err
			}
			return func(t *domain.Translation) bool { return t.LanguageID == lang && t.Text == d.Text }, nil
		},
		Rules: mapping.Rules(
			mapping.Navigate("language",
				func(d *transfer.Translation) (uuid.UUID, error) { return m.languageID(d.Language) },
				func(t *domain.Translation, id uuid.UUID) { t.LanguageID = id }),
			mapping.Simple("text",
				func(d *transfer.Translation) string { return d.Text },
				func(t *domain.Translation, s string) { t.Text = s }),
			mapping.Simple("position",
				func(d *transfer.Translation) int { return d.Position },
				func(t *domain.Translation, n int) { t.Position = n }),
			mapping.Partial("provenance",
				func(d *transfer.Translation) (*transfer.Provenance, bool) { return present(d.Provenance) },
				func(t *domain.Translation) *domain.Provenance { return &t.Provenance },
				provenanceIn),
		),
	}
}

// ---------------------------------------------------------------------------
// Examples
// ---------------------------------------------------------------------------

func exampleOut() mapping.Child[*domain.Example, *transfer.Example] {
	return mapping.Child[*domain.Example, *transfer.Example]{
		New: func() *transfer.Example { return &transfer.Example{} },
		Rules: mapping.Rules(
			mapping.Simple("id",
				func(e *domain.Example) *uuid.UUID { return idPtr(e.ID) },
				func(d *transfer.Example, id *uuid.UUID) { d.ID = id }),
			mapping.Simple("sentence",
				func(e *domain.Example) string { return e.Sentence },
				func(d *transfer.Example, s string) { d.Sentence = s }),
			mapping.Simple("translation",
				func(e *domain.Example) *string { return e.Translation },
				func(d *transfer.Example, s *string) { d.Translation = s }),
			mapping.Simple("position",
				func(e *domain.Example) int { return e.Position },
				func(d *transfer.Example, n int) { d.Position = n }),
			mapping.Partial("provenance",
				func(e *domain.Example) (*domain.Provenance, bool) { return provenanceOf(&e.Provenance) },
				func(d *transfer.Example) *transfer.Provenance { return provenanceTarget(&d.Provenance) },
				provenanceOut),
		),
	}
}

// exampleIn keeps examples the transfer object does not mention: they are
// collected from several sources and only ever added or edited.
func exampleIn() mapping.Child[*transfer.Example, *domain.Example] {
	return mapping.Child[*transfer.Example, *domain.Example]{
		New: func() *domain.Example { return &domain.Example{} },
		Match: func(d *transfer.Example, e *domain.Example) bool {
			if d.ID != nil {
				return *d.ID == e.ID
			}
			return d.Sentence == e.Sentence
		},
		Rules: mapping.Rules(
			mapping.Simple("sentence",
				func(d *transfer.Example) string { return d.Sentence },
				func(e *domain.Example, s string) { e.Sentence = s }),
			mapping.Simple("translation",
				func(d *transfer.Example) *string { return d.Translation },
				func(e *domain.Example, s *string) { e.Translation = s }),
			mapping.Simple("position",
				func(d *transfer.Example) int { return d.Position },
				func(e *domain.Example, n int) { e.Position = n }),
			mapping.Partial("provenance",
				func(d *transfer.Example) (*transfer.Provenance, bool) { return present(d.Provenance) },
				func(e *domain.Example) *domain.Provenance { return &e.Provenance },
				provenanceIn),
		),
	}
}

// ---------------------------------------------------------------------------
// Pronunciations
// ---------------------------------------------------------------------------

func (m *Mapper) pronunciationOut() mapping.Child[*domain.Pronunciation, *transfer.Pronunciation] {
	return mapping.Child[*domain.Pronunciation, *transfer.Pronunciation]{
		New: func() *transfer.Pronunciation { return &transfer.Pronunciation{} },
		Rules: mapping.Rules(
			mapping.Simple("id",
				func(p *domain.Pronunciation) *uuid.UUID { return idPtr(p.ID) },
				func(d *transfer.Pronunciation, id *uuid.UUID) { d.ID = id }),
			mapping.Navigate("region",
				func(p *domain.Pronunciation) (*string, error) {
					return m.typeCode(lookup.CategoryRegion, p.RegionID)
				},
				func(d *transfer.Pronunciation, code *string) { d.Region = code }),
			mapping.Simple("transcription",
				func(p *domain.Pronunciation) string { return p.Transcription },
				func(d *transfer.Pronunciation, s string) { d.Transcription = s }),
			mapping.Simple("audio_url",
				func(p *domain.Pronunciation) *string { return p.AudioURL },
				func(d *transfer.Pronunciation, s *string) { d.AudioURL = s }),
		),
	}
}

// pronunciationIn only adds and edits. Removing a pronunciation is an
// explicit operation of the caller.
func (m *Mapper) pronunciationIn() mapping.Child[*transfer.Pronunciation, *domain.Pronunciation] {
	return mapping.Child[*transfer.Pronunciation, *domain.Pronunciation]{
		New: func() *domain.Pronunciation { return &domain.Pronunciation{} },
		Matcher: func(d *transfer.Pronunciation) (func(*domain.Pronunciation) bool, error) {
			if d.ID != nil {
				id := *d.ID
				return func(p *domain.Pronunciation) bool { return p.ID == id }, nil
			}
			region, err := m.typeID(lookup.CategoryRegion, d.Region)
			if err != nil {
				return nil, err
			}
			return func(p *domain.Pronunciation) bool {
				return p.Transcription == d.Transcription && sameID(region, p.RegionID)
			}, nil
		},
		Rules: mapping.Rules(
			mapping.Navigate("region",
				func(d *transfer.Pronunciation) (*uuid.UUID, error) {
					return m.typeID(lookup.CategoryRegion, d.Region)
				},
				func(p *domain.Pronunciation, id *uuid.UUID) { p.RegionID = id }),
			mapping.Simple("transcription",
				func(d *transfer.Pronunciation) string { return d.Transcription },
				func(p *domain.Pronunciation, s string) { p.Transcription = s }),
			mapping.Simple("audio_url",
				func(d *transfer.Pronunciation) *string { return d.AudioURL },
				func(p *domain.Pronunciation, s *string) { p.AudioURL = s }),
		),
	}
}
