package lookups_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/entitymap/internal/adapter/postgres/lookups"
	"github.com/heartmarshall/entitymap/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/entitymap/internal/lookup"
)

func TestLoad_Mock(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(false)

	en, noun, us := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT id, code FROM languages ORDER BY code`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}).AddRow(en, "en"))
	mock.ExpectQuery(`SELECT id, category, code FROM type_codes ORDER BY category, code`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "category", "code"}).
			AddRow(noun, "part_of_speech", "noun").
			AddRow(us, "region", "US"))

	tbl, err := lookups.Load(context.Background(), mock)
	require.NoError(t, err)

	id, err := tbl.ResolveID(lookup.CategoryPartOfSpeech, "NOUN")
	require.NoError(t, err)
	assert.Equal(t, noun, id)

	code, err := tbl.ResolveCode(lookup.CategoryRegion, us)
	require.NoError(t, err)
	assert.Equal(t, "US", code)

	langID, err := tbl.ResolveLanguageID("EN")
	require.NoError(t, err)
	assert.Equal(t, en, langID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(false)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM languages`).WillReturnError(boom)
	mock.ExpectQuery(`FROM type_codes`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "category", "code"}))

	_, err = lookups.Load(context.Background(), mock)
	assert.ErrorIs(t, err, boom)
}

func TestLoad_Integration(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	seeded := testhelper.SeedLookups(t, pool)

	tbl, err := lookups.Load(context.Background(), pool)
	require.NoError(t, err)

	id, err := tbl.ResolveID(lookup.CategoryRegion, "uk")
	require.NoError(t, err)
	assert.Equal(t, seeded.UK, id)

	code, err := tbl.ResolveLanguageCode(seeded.Russian)
	require.NoError(t, err)
	assert.Equal(t, "ru", code)
}
