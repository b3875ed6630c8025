package mapper_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/entitymap/internal/adapter/memstore"
	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/lookup"
	"github.com/heartmarshall/entitymap/internal/mapper"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

var (
	english = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	russian = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	noun    = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	verb    = uuid.MustParse("00000000-0000-0000-0000-000000000012")
	us      = uuid.MustParse("00000000-0000-0000-0000-000000000021")
	uk      = uuid.MustParse("00000000-0000-0000-0000-000000000022")
)

func ptr[T any](v T) *T { return &v }

func newMapper(t *testing.T) *mapper.Mapper {
	t.Helper()
	tbl, err := lookup.NewTable(map[lookup.Category][]lookup.Code{
		lookup.CategoryPartOfSpeech: {{ID: noun, Code: "NOUN"}, {ID: verb, Code: "VERB"}},
		lookup.CategoryRegion:       {{ID: us, Code: "US"}, {ID: uk, Code: "UK"}},
	}, []lookup.Code{{ID: english, Code: "en"}, {ID: russian, Code: "ru"}})
	require.NoError(t, err)
	return mapper.New(tbl, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// trace renders staged operations as "action kind" lines.
func trace(ops []mapping.Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Action.String() + " " + op.Entity.EntityKind()
	}
	return out
}

// ignoreIDs drops generated identifiers from transfer object comparisons.
var ignoreIDs = cmp.Options{
	cmpopts.IgnoreFields(transfer.EntryVersion{}, "VersionID", "EntryID", "Number"),
	cmpopts.IgnoreFields(transfer.Sense{}, "ID"),
	cmpopts.IgnoreFields(transfer.Translation{}, "ID"),
	cmpopts.IgnoreFields(transfer.Example{}, "ID"),
	cmpopts.IgnoreFields(transfer.Pronunciation{}, "ID"),
}

func TestEntryVersion_ForwardGolden(t *testing.T) {
	t.Parallel()
	m := newMapper(t)

	v := &domain.EntryVersion{
		ID:         uuid.MustParse("00000000-0000-0000-0000-000000000101"),
		EntryID:    uuid.MustParse("00000000-0000-0000-0000-000000000100"),
		Number:     2,
		Status:     domain.VersionStatusPublished,
		LanguageID: english,
		Text:       "run",
		Senses: []*domain.Sense{{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000201"),
			PartOfSpeechID: ptr(verb),
			Definition:     ptr("move fast"),
			CEFRLevel:      ptr("A1"),
			Provenance:     domain.Provenance{SourceSlug: "wiktionary"},
			Translations: []*domain.Translation{{
				ID:         uuid.MustParse("00000000-0000-0000-0000-000000000301"),
				LanguageID: russian,
				Text:       "бежать",
			}},
			Examples: []*domain.Example{{
				ID:       uuid.MustParse("00000000-0000-0000-0000-000000000401"),
				Sentence: "I run daily.",
			}},
		}},
		Pronunciations: []*domain.Pronunciation{{
			ID:            uuid.MustParse("00000000-0000-0000-0000-000000000501"),
			RegionID:      ptr(us),
			Transcription: "/rʌn/",
		}},
	}

	d, err := m.EntryVersion().ToTransferObject(context.Background(), v)
	require.NoError(t, err)

	js, err := json.MarshalIndent(d, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "entry_version_forward", append(js, '\n'))
}

func TestEntryVersion_CreateThenFetch(t *testing.T) {
	t.Parallel()
	m := newMapper(t)
	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	in := &transfer.EntryVersion{
		Status:   "DRAFT",
		Language: "en",
		Text:     "Set",
		Notes:    ptr("irregular"),
		Senses: []*transfer.Sense{{
			PartOfSpeech: ptr("NOUN"),
			Definition:   ptr("a group of things"),
			CEFRLevel:    ptr("B1"),
			Provenance:   &transfer.Provenance{SourceSlug: "manual", SourceURL: ptr("https://example.org/set")},
			Translations: []*transfer.Translation{{Language: "ru", Text: "набор"}},
			Examples:     []*transfer.Example{{Sentence: "A set of keys.", Translation: ptr("Связка ключей.")}},
		}},
		Pronunciations: []*transfer.Pronunciation{{Region: ptr("US"), Transcription: "/sɛt/"}},
	}

	st := memstore.New()
	uow := st.Begin()
	e, ops, err := m.EntryVersion().Stage(ctx, uow, in)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"insert entry",
		"insert entry_version",
		"insert sense",
		"insert translation",
		"insert example",
		"insert pronunciation",
	}, trace(ops))

	root := ops[0].Entity.(*domain.Entry)
	assert.Equal(t, userID, root.UserID)
	assert.Equal(t, root.ID, e.EntryID)
	assert.Equal(t, 1, e.Number)
	assert.Equal(t, "set", e.TextNormalized)
	require.NoError(t, uow.Commit(ctx))

	out, err := m.EntryVersion().ToTransferObject(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, *out.VersionID)
	assert.Equal(t, root.ID, *out.EntryID)
	if diff := cmp.Diff(in, out, ignoreIDs); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestEntryVersion_Update(t *testing.T) {
	t.Parallel()
	m := newMapper(t)
	ctx := context.Background()

	entry := &domain.Entry{ID: uuid.New(), UserID: uuid.New()}
	v := &domain.EntryVersion{ID: uuid.New(), EntryID: entry.ID, Number: 3, Status: domain.VersionStatusDraft, LanguageID: english, Text: "bank"}
	s1 := &domain.Sense{ID: uuid.New(), VersionID: v.ID, Position: 0}
	s2 := &domain.Sense{ID: uuid.New(), VersionID: v.ID, Position: 1}
	t1 := &domain.Translation{ID: uuid.New(), SenseID: s1.ID, LanguageID: russian, Text: "берег"}
	ex := &domain.Example{ID: uuid.New(), SenseID: s1.ID, Sentence: "The river bank."}
	p1 := &domain.Pronunciation{ID: uuid.New(), VersionID: v.ID, RegionID: ptr(us), Transcription: "/bæŋk/"}

	st := memstore.New()
	st.Seed(entry, v, s1, s2, t1, ex, p1)

	in := &transfer.EntryVersion{
		VersionID: ptr(v.ID),
		EntryID:   ptr(uuid.New()),
		Number:    9,
		Status:    "PUBLISHED",
		Language:  "en",
		Text:      "bank",
		Senses: []*transfer.Sense{
			{
				ID:           ptr(s1.ID),
				Translations: []*transfer.Translation{{Language: "ru", Text: "берег", Position: 1}},
				Examples:     []*transfer.Example{{Sentence: "A bank of fog."}},
			},
			{Position: 1, Definition: ptr("a financial institution")},
		},
		Pronunciations: []*transfer.Pronunciation{{Region: ptr("UK"), Transcription: "/bæŋk/"}},
	}

	uow := st.Begin()
	e, ops, err := m.EntryVersion().Stage(ctx, uow, in)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"update entry_version",
		"update sense",
		"update translation",
		"insert example",
		"insert sense",
		"delete sense",
		"insert pronunciation",
	}, trace(ops))

	assert.Equal(t, v.ID, e.ID, "identity preserved")
	assert.Equal(t, entry.ID, e.EntryID, "root never repointed")
	assert.Equal(t, 3, e.Number, "number owned by the versioning manager")
	assert.Equal(t, domain.VersionStatusPublished, e.Status)

	require.Len(t, e.Senses, 2)
	assert.Equal(t, s1.ID, e.Senses[0].ID)
	assert.Equal(t, t1.ID, e.Senses[0].Translations[0].ID, "matched by language and text")
	assert.Equal(t, 1, e.Senses[0].Translations[0].Position)
	require.Len(t, e.Senses[0].Examples, 2, "unmatched examples are kept")
	assert.Equal(t, ex.ID, e.Senses[0].Examples[1].ID)
	require.Len(t, e.Pronunciations, 2, "pronunciations are never removed here")
	assert.Equal(t, p1.ID, e.Pronunciations[1].ID)

	require.NoError(t, uow.Commit(ctx))
	assert.Equal(t, 1, st.Len(domain.KindEntry))
	assert.Equal(t, 2, st.Len(domain.KindSense))
	assert.Equal(t, 2, st.Len(domain.KindExample))
	assert.Equal(t, 2, st.Len(domain.KindPronunciation))
	_, ok := st.Get(domain.KindSense, s2.ID)
	assert.False(t, ok)
}

func TestEntryVersion_StaleIDCreates(t *testing.T) {
	t.Parallel()
	m := newMapper(t)

	stale := uuid.New()
	uow := memstore.New().Begin()
	e, ops, err := m.EntryVersion().Stage(context.Background(), uow, &transfer.EntryVersion{
		VersionID: &stale, Language: "en", Text: "ghost",
	})
	require.NoError(t, err)

	assert.NotEqual(t, stale, e.ID)
	assert.Equal(t, domain.VersionStatusDraft, e.Status, "default status")
	assert.Equal(t, []string{"insert entry", "insert entry_version"}, trace(ops))
}

func TestEntryVersion_Faults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     *transfer.EntryVersion
		target string
		want   error
	}{
		{
			name:   "unknown language",
			in:     &transfer.EntryVersion{Language: "de", Text: "Haus"},
			target: "language",
			want:   lookup.ErrUnknownCode,
		},
		{
			name: "unknown part of speech",
			in: &transfer.EntryVersion{Language: "en", Text: "quickly", Senses: []*transfer.Sense{
				{PartOfSpeech: ptr("NOUN")},
				{PartOfSpeech: ptr("ADVERB")},
			}},
			target: "senses[1].part_of_speech",
			want:   domain.ErrNotFound,
		},
		{
			name: "unknown translation language",
			in: &transfer.EntryVersion{Language: "en", Text: "house", Senses: []*transfer.Sense{
				{Translations: []*transfer.Translation{{Language: "xx", Text: "?"}}},
			}},
			target: "senses[0].translations[0]",
			want:   lookup.ErrUnknownCode,
		},
		{
			name: "unknown region",
			in: &transfer.EntryVersion{Language: "en", Text: "house", Pronunciations: []*transfer.Pronunciation{
				{Region: ptr("US"), Transcription: "/haʊs/"},
				{Region: ptr("MARS"), Transcription: "/haʊs/"},
			}},
			target: "pronunciations[1]",
			want:   lookup.ErrUnknownCode,
		},
		{
			name:   "invalid status",
			in:     &transfer.EntryVersion{Status: "LIVE", Language: "en", Text: "x"},
			target: "status",
			want:   domain.ErrValidation,
		},
		{
			name: "invalid cefr level",
			in: &transfer.EntryVersion{Language: "en", Text: "x", Senses: []*transfer.Sense{
				{CEFRLevel: ptr("D1")},
			}},
			target: "senses[0].cefr_level",
			want:   domain.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newMapper(t)
			uow := memstore.New().Begin()

			_, err := m.EntryVersion().ToEntity(context.Background(), uow, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var re *mapping.RuleError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.target, re.Target)
			assert.Empty(t, uow.Pending(), "nothing staged")
		})
	}
}

func TestEntryVersion_EmptySensesClear(t *testing.T) {
	t.Parallel()
	m := newMapper(t)
	ctx := context.Background()

	entry := &domain.Entry{ID: uuid.New()}
	v := &domain.EntryVersion{ID: uuid.New(), EntryID: entry.ID, Number: 1, Status: domain.VersionStatusDraft, LanguageID: english, Text: "tie"}
	s := &domain.Sense{ID: uuid.New(), VersionID: v.ID}
	p := &domain.Pronunciation{ID: uuid.New(), VersionID: v.ID, Transcription: "/taɪ/"}

	st := memstore.New()
	st.Seed(entry, v, s, p)

	_, ops, err := m.EntryVersion().Stage(ctx, st.Begin(), &transfer.EntryVersion{
		VersionID:      &v.ID,
		Language:       "en",
		Text:           "tie",
		Senses:         []*transfer.Sense{},
		Pronunciations: []*transfer.Pronunciation{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"update entry_version", "delete sense"}, trace(ops))
}

func TestSummary(t *testing.T) {
	t.Parallel()
	m := newMapper(t)
	ctx := context.Background()

	v := &domain.EntryVersion{
		ID: uuid.New(), EntryID: uuid.New(), Number: 4,
		Status: domain.VersionStatusArchived, LanguageID: russian, Text: "дом",
		Senses: []*domain.Sense{{ID: uuid.New()}, {ID: uuid.New()}},
	}

	got, err := m.Summary().ToTransferObject(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, &transfer.EntrySummary{
		EntryID: v.EntryID, VersionID: v.ID, Number: 4,
		Status: "ARCHIVED", Language: "ru", Text: "дом", SenseCount: 2,
	}, got)

	_, err = m.Summary().ToEntity(ctx, memstore.New().Begin(), got)
	assert.ErrorIs(t, err, mapping.ErrNotImplemented)
}
