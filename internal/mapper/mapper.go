// Package mapper declares the translators between dictionary entities and
// their transfer objects.
package mapper

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/lookup"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// Mapper holds the translators of the dictionary content model.
type Mapper struct {
	lookup lookup.Resolver

	version *mapping.Translator[*domain.EntryVersion, *transfer.EntryVersion]
	summary *mapping.Translator[*domain.EntryVersion, *transfer.EntrySummary]
}

// New builds the translators. Rule sets are declared once; translators are
// safe for concurrent use.
func New(res lookup.Resolver, logger *slog.Logger) *Mapper {
	m := &Mapper{lookup: res}
	opts := []mapping.Option{mapping.WithLogger(logger.With("component", "mapper"))}

	m.version = mapping.NewTranslator(mapping.Pair[*domain.EntryVersion, *transfer.EntryVersion]{
		Kind:            domain.KindEntryVersion,
		NewEntity:       func() *domain.EntryVersion { return &domain.EntryVersion{} },
		NewTransfer:     func() *transfer.EntryVersion { return &transfer.EntryVersion{} },
		Forward:         m.versionForward(),
		Reverse:         m.versionReverse(),
		ReverseDefaults: versionReverseDefaults(),
		Prepare:         prepareVersion,
	}, opts...)

	m.summary = mapping.NewTranslator(mapping.Pair[*domain.EntryVersion, *transfer.EntrySummary]{
		Kind:        domain.KindEntryVersion,
		NewTransfer: func() *transfer.EntrySummary { return &transfer.EntrySummary{} },
		Forward:     m.summaryForward(),
	}, opts...)

	return m
}

// EntryVersion translates entry versions with their senses and pronunciations.
func (m *Mapper) EntryVersion() *mapping.Translator[*domain.EntryVersion, *transfer.EntryVersion] {
	return m.version
}

// Summary translates entry versions into listing rows. It is forward only.
func (m *Mapper) Summary() *mapping.Translator[*domain.EntryVersion, *transfer.EntrySummary] {
	return m.summary
}

// prepareVersion declares how a transfer object finds its entry version: no
// id means a new entry, an id names an existing version. A stale id is
// treated as a new entry.
func prepareVersion(def *mapping.Definition[*transfer.EntryVersion, *domain.EntryVersion]) {
	userID, _ := ctxutil.UserIDFromCtx(def.Context())

	def.MarkNewWhen(func(d *transfer.EntryVersion) bool { return d.VersionID == nil }).
		MarkExistingWhen(
			func(d *transfer.EntryVersion) bool { return d.VersionID != nil },
			func(d *transfer.EntryVersion, v *domain.EntryVersion) bool { return v.ID == *d.VersionID },
			mapping.CreateOnMiss,
		).
		NarrowBy(func(d *transfer.EntryVersion) map[string]any {
			if d.VersionID == nil {
				return nil
			}
			return map[string]any{"id": *d.VersionID}
		}).
		Prefetch("senses", "senses.translations", "senses.examples", "pronunciations").
		AttachVersioning(func(*domain.EntryVersion) mapping.Entity {
			return &domain.Entry{UserID: userID, CreatedAt: time.Now().UTC()}
		})
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func (m *Mapper) languageID(tag string) (uuid.UUID, error) {
	return m.lookup.ResolveLanguageID(tag)
}

func (m *Mapper) languageCode(id uuid.UUID) (string, error) {
	return m.lookup.ResolveLanguageCode(id)
}

// typeID resolves an optional code; nil stays nil.
func (m *Mapper) typeID(cat lookup.Category, code *string) (*uuid.UUID, error) {
	if code == nil {
		return nil, nil
	}
	id, err := m.lookup.ResolveID(cat, *code)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (m *Mapper) typeCode(cat lookup.Category, id *uuid.UUID) (*string, error) {
	if id == nil {
		return nil, nil
	}
	code, err := m.lookup.ResolveCode(cat, *id)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// status validates an optional status; "" keeps the current one.
func status(s string) (domain.VersionStatus, error) {
	if s == "" {
		return "", nil
	}
	st := domain.VersionStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("status %q: %w", s, domain.ErrValidation)
	}
	return st, nil
}

func cefrLevel(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	if !domain.CEFRLevel(*s).IsValid() {
		return nil, fmt.Errorf("cefr level %q: %w", *s, domain.ErrValidation)
	}
	return s, nil
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func byID(item *uuid.UUID, prev uuid.UUID) bool {
	return item != nil && *item == prev
}
