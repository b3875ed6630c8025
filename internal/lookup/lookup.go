// Package lookup resolves well-known codes to identifiers and back.
//
// Tables are loaded once at startup and never mutated afterwards, so a
// *Table is safe for concurrent reads without locking.
package lookup

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/heartmarshall/entitymap/internal/domain"
)

// Category groups codes of one kind of type (part of speech, region, ...).
type Category string

const (
	CategoryPartOfSpeech Category = "part_of_speech"
	CategoryRegion       Category = "region"
)

// ErrUnknownCode is returned for codes and identifiers missing from the tables.
var ErrUnknownCode = fmt.Errorf("lookup: unknown code: %w", domain.ErrNotFound)

// Resolver maps codes to identifiers and identifiers to codes.
type Resolver interface {
	ResolveID(category Category, code string) (uuid.UUID, error)
	ResolveCode(category Category, id uuid.UUID) (string, error)
	ResolveLanguageID(tag string) (uuid.UUID, error)
	ResolveLanguageCode(id uuid.UUID) (string, error)
}

// Code is one row of a lookup table.
type Code struct {
	ID   uuid.UUID `yaml:"id"`
	Code string    `yaml:"code"`
}

// Table is an immutable in-memory Resolver.
type Table struct {
	ids       map[Category]map[string]uuid.UUID
	codes     map[Category]map[uuid.UUID]string
	langIDs   map[string]uuid.UUID
	langCodes map[uuid.UUID]string
}

var _ Resolver = (*Table)(nil)

// NewTable builds a Table. Type codes are matched case-insensitively and
// reported upper-case; language codes are canonical BCP 47 tags.
func NewTable(types map[Category][]Code, languages []Code) (*Table, error) {
	t := &Table{
		ids:       make(map[Category]map[string]uuid.UUID, len(types)),
		codes:     make(map[Category]map[uuid.UUID]string, len(types)),
		langIDs:   make(map[string]uuid.UUID, len(languages)),
		langCodes: make(map[uuid.UUID]string, len(languages)),
	}

	for cat, rows := range types {
		ids := make(map[string]uuid.UUID, len(rows))
		codes := make(map[uuid.UUID]string, len(rows))
		for _, r := range rows {
			code := normalizeCode(r.Code)
			if code == "" || r.ID == uuid.Nil {
				return nil, fmt.Errorf("lookup: %s: empty code or id", cat)
			}
			if _, dup := ids[code]; dup {
				return nil, fmt.Errorf("lookup: %s: duplicate code %q", cat, code)
			}
			if _, dup := codes[r.ID]; dup {
				return nil, fmt.Errorf("lookup: %s: duplicate id %s", cat, r.ID)
			}
			ids[code] = r.ID
			codes[r.ID] = code
		}
		t.ids[cat] = ids
		t.codes[cat] = codes
	}

	for _, r := range languages {
		tag, err := CanonicalLanguage(r.Code)
		if err != nil {
			return nil, err
		}
		if r.ID == uuid.Nil {
			return nil, fmt.Errorf("lookup: language %q: empty id", tag)
		}
		if _, dup := t.langIDs[tag]; dup {
			return nil, fmt.Errorf("lookup: duplicate language %q", tag)
		}
		if _, dup := t.langCodes[r.ID]; dup {
			return nil, fmt.Errorf("lookup: duplicate language id %s", r.ID)
		}
		t.langIDs[tag] = r.ID
		t.langCodes[r.ID] = tag
	}

	return t, nil
}

func (t *Table) ResolveID(category Category, code string) (uuid.UUID, error) {
	id, ok := t.ids[category][normalizeCode(code)]
	if !ok {
		return uuid.Nil, fmt.Errorf("%s %q: %w", category, code, ErrUnknownCode)
	}
	return id, nil
}

func (t *Table) ResolveCode(category Category, id uuid.UUID) (string, error) {
	code, ok := t.codes[category][id]
	if !ok {
		return "", fmt.Errorf("%s %s: %w", category, id, ErrUnknownCode)
	}
	return code, nil
}

func (t *Table) ResolveLanguageID(tag string) (uuid.UUID, error) {
	canon, err := CanonicalLanguage(tag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("language %q: %w", tag, ErrUnknownCode)
	}
	id, ok := t.langIDs[canon]
	if !ok {
		return uuid.Nil, fmt.Errorf("language %q: %w", tag, ErrUnknownCode)
	}
	return id, nil
}

func (t *Table) ResolveLanguageCode(id uuid.UUID) (string, error) {
	code, ok := t.langCodes[id]
	if !ok {
		return "", fmt.Errorf("language %s: %w", id, ErrUnknownCode)
	}
	return code, nil
}

// Len reports the number of codes in category.
func (t *Table) Len(category Category) int { return len(t.ids[category]) }

// Languages reports the number of known languages.
func (t *Table) Languages() int { return len(t.langIDs) }

// CanonicalLanguage parses a BCP 47 tag and returns its canonical form
// ("EN-us" -> "en-US").
func CanonicalLanguage(tag string) (string, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", fmt.Errorf("lookup: invalid language tag %q: %w", tag, err)
	}
	return parsed.String(), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
