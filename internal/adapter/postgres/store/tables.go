package store

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/entitymap/internal/adapter/postgres"
	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
)

// Dictionary returns the tables of the dictionary schema.
func Dictionary() []Table {
	return []Table{entries, entryVersions, senses, translations, examples, pronunciations}
}

// NewDictionary creates a Store over the dictionary schema.
func NewDictionary(db postgres.Querier, logger *slog.Logger) (*Store, error) {
	return New(db, logger, Dictionary()...)
}

var entries = Table{
	Kind:    domain.KindEntry,
	Name:    "entries",
	Key:     "id",
	Columns: []string{"id", "user_id", "created_at"},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var e domain.Entry
		if err := row.Scan(&e.ID, &e.UserID, &e.CreatedAt); err != nil {
			return nil, err
		}
		return &e, nil
	},
	Values: func(ent mapping.Entity, now time.Time) []any {
		e := ent.(*domain.Entry)
		created := e.CreatedAt
		if created.IsZero() {
			created = now
		}
		return []any{e.ID, e.UserID, created}
	},
}

var entryVersions = Table{
	Kind:  domain.KindEntryVersion,
	Name:  "entry_versions",
	Key:   "id",
	Owner: "entry_id",
	Order: []string{"number"},
	Columns: []string{
		"id", "entry_id", "number", "status", "language_id",
		"text", "text_normalized", "notes", "updated_at",
	},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var (
			v      domain.EntryVersion
			status string
		)
		err := row.Scan(&v.ID, &v.EntryID, &v.Number, &status, &v.LanguageID,
			&v.Text, &v.TextNormalized, &v.Notes, &v.UpdatedAt)
		if err != nil {
			return nil, err
		}
		v.Status = domain.VersionStatus(status)
		return &v, nil
	},
	Values: func(ent mapping.Entity, now time.Time) []any {
		v := ent.(*domain.EntryVersion)
		return []any{v.ID, v.EntryID, v.Number, string(v.Status), v.LanguageID,
			v.Text, domain.NormalizeText(v.Text), v.Notes, now}
	},
}

var senses = Table{
	Kind:  domain.KindSense,
	Name:  "senses",
	Key:   "id",
	Owner: "version_id",
	Order: []string{"position", "id"},
	Columns: []string{
		"id", "version_id", "part_of_speech_id", "definition", "cefr_level",
		"position", "source_slug", "source_url",
	},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var s domain.Sense
		err := row.Scan(&s.ID, &s.VersionID, &s.PartOfSpeechID, &s.Definition, &s.CEFRLevel,
			&s.Position, &s.Provenance.SourceSlug, &s.Provenance.SourceURL)
		if err != nil {
			return nil, err
		}
		return &s, nil
	},
	Values: func(ent mapping.Entity, _ time.Time) []any {
		s := ent.(*domain.Sense)
		return []any{s.ID, s.VersionID, s.PartOfSpeechID, s.Definition, s.CEFRLevel,
			s.Position, s.Provenance.SourceSlug, s.Provenance.SourceURL}
	},
}

var translations = Table{
	Kind:    domain.KindTranslation,
	Name:    "translations",
	Key:     "id",
	Owner:   "sense_id",
	Order:   []string{"position", "id"},
	Columns: []string{"id", "sense_id", "language_id", "text", "position", "source_slug", "source_url"},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var t domain.Translation
		err := row.Scan(&t.ID, &t.SenseID, &t.LanguageID, &t.Text, &t.Position,
			&t.Provenance.SourceSlug, &t.Provenance.SourceURL)
		if err != nil {
			return nil, err
		}
		return &t, nil
	},
	Values: func(ent mapping.Entity, _ time.Time) []any {
		t := ent.(*domain.Translation)
		return []any{t.ID, t.SenseID, t.LanguageID, t.Text, t.Position,
			t.Provenance.SourceSlug, t.Provenance.SourceURL}
	},
}

var examples = Table{
	Kind:    domain.KindExample,
	Name:    "examples",
	Key:     "id",
	Owner:   "sense_id",
	Order:   []string{"position", "id"},
	Columns: []string{"id", "sense_id", "sentence", "translation", "position", "source_slug", "source_url"},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var e domain.Example
		err := row.Scan(&e.ID, &e.SenseID, &e.Sentence, &e.Translation, &e.Position,
			&e.Provenance.SourceSlug, &e.Provenance.SourceURL)
		if err != nil {
			return nil, err
		}
		return &e, nil
	},
	Values: func(ent mapping.Entity, _ time.Time) []any {
		e := ent.(*domain.Example)
		return []any{e.ID, e.SenseID, e.Sentence, e.Translation, e.Position,
			e.Provenance.SourceSlug, e.Provenance.SourceURL}
	},
}

var pronunciations = Table{
	Kind:    domain.KindPronunciation,
	Name:    "pronunciations",
	Key:     "id",
	Owner:   "version_id",
	Order:   []string{"transcription", "id"},
	Columns: []string{"id", "version_id", "region_id", "transcription", "audio_url"},
	Scan: func(row pgx.Row) (mapping.Entity, error) {
		var p domain.Pronunciation
		if err := row.Scan(&p.ID, &p.VersionID, &p.RegionID, &p.Transcription, &p.AudioURL); err != nil {
			return nil, err
		}
		return &p, nil
	},
	Values: func(ent mapping.Entity, _ time.Time) []any {
		p := ent.(*domain.Pronunciation)
		return []any{p.ID, p.VersionID, p.RegionID, p.Transcription, p.AudioURL}
	},
}
