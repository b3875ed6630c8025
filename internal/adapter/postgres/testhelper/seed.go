package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/entitymap/internal/lookup"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// Lookups holds the codes seeded by SeedLookups.
type Lookups struct {
	Table *lookup.Table

	English uuid.UUID
	Russian uuid.UUID
	Noun    uuid.UUID
	Verb    uuid.UUID
	US      uuid.UUID
	UK      uuid.UUID
}

// SeedLookups makes sure the languages and type codes used by tests exist and
// returns a lookup table over them. Rows are shared between tests, so
// existing rows are reused.
func SeedLookups(t *testing.T, pool *pgxpool.Pool) Lookups {
	t.Helper()
	ctx := context.Background()

	lang := func(code string) uuid.UUID {
		var id uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO languages (id, code) VALUES ($1, $2)
			 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
			 RETURNING id`,
			uuid.New(), code,
		).Scan(&id)
		if err != nil {
			t.Fatalf("testhelper: SeedLookups language %s: %v", code, err)
		}
		return id
	}
	typ := func(category lookup.Category, code string) uuid.UUID {
		var id uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO type_codes (id, category, code) VALUES ($1, $2, $3)
			 ON CONFLICT (category, code) DO UPDATE SET code = EXCLUDED.code
			 RETURNING id`,
			uuid.New(), string(category), code,
		).Scan(&id)
		if err != nil {
			t.Fatalf("testhelper: SeedLookups %s %s: %v", category, code, err)
		}
		return id
	}

	l := Lookups{
		English: lang("en"),
		Russian: lang("ru"),
		Noun:    typ(lookup.CategoryPartOfSpeech, "NOUN"),
		Verb:    typ(lookup.CategoryPartOfSpeech, "VERB"),
		US:      typ(lookup.CategoryRegion, "US"),
		UK:      typ(lookup.CategoryRegion, "UK"),
	}

	tbl, err := lookup.NewTable(map[lookup.Category][]lookup.Code{
		lookup.CategoryPartOfSpeech: {{ID: l.Noun, Code: "NOUN"}, {ID: l.Verb, Code: "VERB"}},
		lookup.CategoryRegion:       {{ID: l.US, Code: "US"}, {ID: l.UK, Code: "UK"}},
	}, []lookup.Code{{ID: l.English, Code: "en"}, {ID: l.Russian, Code: "ru"}})
	if err != nil {
		t.Fatalf("testhelper: SeedLookups table: %v", err)
	}
	l.Table = tbl

	return l
}

// SeedEntry creates an entry root for a fresh user and returns its id.
func SeedEntry(t *testing.T, pool *pgxpool.Pool) (entryID, userID uuid.UUID) {
	t.Helper()

	entryID, userID = uuid.New(), uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO entries (id, user_id, created_at) VALUES ($1, $2, now())`,
		entryID, userID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEntry %s: %v", uniqueSuffix(), err)
	}
	return entryID, userID
}
