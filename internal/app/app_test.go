package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/entitymap/internal/config"
	"github.com/heartmarshall/entitymap/internal/lookup"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

const lookupYAML = `
languages:
  - {id: 00000000-0000-0000-0000-000000000001, code: en}
types:
  part_of_speech:
    - {id: 00000000-0000-0000-0000-000000000011, code: NOUN}
`

func TestLoadLookups_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lookupYAML), 0o600))

	tbl, err := loadLookups(context.Background(), config.LookupConfig{
		Source: config.LookupSourceYAML,
		Path:   path,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Languages())
	assert.Equal(t, 1, tbl.Len(lookup.CategoryPartOfSpeech))
}

func TestLoadLookups_MissingFile(t *testing.T) {
	_, err := loadLookups(context.Background(), config.LookupConfig{
		Source: config.LookupSourceYAML,
		Path:   filepath.Join(t.TempDir(), "missing.yaml"),
	}, nil)
	assert.Error(t, err)
}

func TestNewInMemory_SaveAndGet(t *testing.T) {
	tbl, err := lookup.ParseYAML([]byte(lookupYAML))
	require.NoError(t, err)

	cfg := &config.Config{Dictionary: config.DictionaryConfig{
		ImportChunkSize:   50,
		MaxImportItems:    10,
		MaxSensesPerEntry: 5,
		ExportMaxEntries:  10,
		DefaultLanguage:   "en",
	}}
	a := NewInMemory(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), tbl)
	defer a.Close()
	assert.Nil(t, a.Pool)

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	res, err := a.Dictionary.SaveEntry(ctx, &transfer.EntryVersion{
		Text:   "table",
		Senses: []*transfer.Sense{{PartOfSpeech: ptr("NOUN")}},
	})
	require.NoError(t, err)

	got, err := a.Dictionary.GetEntry(ctx, res.VersionID)
	require.NoError(t, err)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, "NOUN", *got.Senses[0].PartOfSpeech)
}

func TestMigrate_NoPool(t *testing.T) {
	err := Migrate(context.Background(), nil, "migrations", slog.Default())
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
