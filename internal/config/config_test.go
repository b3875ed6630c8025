package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 4
  min_conns: 2
  max_conn_lifetime: "10m"

log:
  level: "debug"
  format: "text"

lookup:
  source: "yaml"
  path: "./lookup.yaml"

dictionary:
  import_chunk_size: 100
  max_import_items: 200
  max_senses_per_entry: 8
  export_max_entries: 300
  default_language: "EN-gb"
`

func configFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", configFile(t, fullYAML))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DatabaseConfig{
		DSN:             "postgres://u:p@localhost:5432/testdb",
		MaxConns:        4,
		MinConns:        2,
		MaxConnLifetime: 10 * time.Minute,
		MaxConnIdleTime: 30 * time.Minute,
	}, cfg.Database)
	assert.Equal(t, LogConfig{Level: "debug", Format: "text"}, cfg.Log)
	assert.Equal(t, LookupConfig{Source: LookupSourceYAML, Path: "./lookup.yaml"}, cfg.Lookup)
	assert.Equal(t, DictionaryConfig{
		ImportChunkSize:   100,
		MaxImportItems:    200,
		MaxSensesPerEntry: 8,
		ExportMaxEntries:  300,
		DefaultLanguage:   "en-GB",
	}, cfg.Dictionary)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", configFile(t, fullYAML))
	t.Setenv("DICT_IMPORT_CHUNK_SIZE", "7")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Dictionary.ImportChunkSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Dictionary.MaxSensesPerEntry)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, LookupSourceDatabase, cfg.Lookup.Source)
	assert.Equal(t, 50, cfg.Dictionary.ImportChunkSize)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "en", cfg.Dictionary.DefaultLanguage)
}

func TestLoad_EnvOnlyMissingDSN(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	require.NoError(t, os.Unsetenv("DATABASE_DSN"))
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_PathResolution(t *testing.T) {
	good := configFile(t, fullYAML)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name       string
		arg        string
		configPath string
		wantErr    bool
	}{
		{name: "argument", arg: good},
		{name: "argument wins over CONFIG_PATH", arg: good, configPath: missing},
		{name: "missing argument", arg: missing, wantErr: true},
		{name: "missing CONFIG_PATH", configPath: missing, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", tt.configPath)

			cfg, err := Load(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 8, cfg.Dictionary.MaxSensesPerEntry)
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: `{{{invalid yaml`},
		{name: "fails validation", content: "database:\n  dsn: \"postgres://x\"\nlog:\n  format: \"xml\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(configFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "log format is case insensitive", mutate: func(c *Config) { c.Log.Format = "TEXT" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log: format"},
		{name: "unknown lookup source", mutate: func(c *Config) { c.Lookup.Source = "redis" }, wantErr: "lookup: source"},
		{name: "yaml lookup without path", mutate: func(c *Config) { c.Lookup.Source = LookupSourceYAML }, wantErr: "lookup: path"},
		{name: "yaml lookup with path", mutate: func(c *Config) {
			c.Lookup.Source = LookupSourceYAML
			c.Lookup.Path = "lookup.yaml"
		}},
		{name: "import chunk size zero", mutate: func(c *Config) { c.Dictionary.ImportChunkSize = 0 }, wantErr: "import_chunk_size"},
		{name: "import chunk size too large", mutate: func(c *Config) { c.Dictionary.ImportChunkSize = 1001 }, wantErr: "import_chunk_size"},
		{name: "import chunk size boundary", mutate: func(c *Config) { c.Dictionary.ImportChunkSize = 1000 }},
		{name: "max import items zero", mutate: func(c *Config) { c.Dictionary.MaxImportItems = 0 }, wantErr: "max_import_items"},
		{name: "max senses negative", mutate: func(c *Config) { c.Dictionary.MaxSensesPerEntry = -1 }, wantErr: "max_senses_per_entry"},
		{name: "export max zero", mutate: func(c *Config) { c.Dictionary.ExportMaxEntries = 0 }, wantErr: "export_max_entries"},
		{name: "invalid default language", mutate: func(c *Config) { c.Dictionary.DefaultLanguage = "not a tag" }, wantErr: "default_language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CanonicalizesLanguage(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Dictionary.DefaultLanguage = "pt-br"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "pt-BR", cfg.Dictionary.DefaultLanguage)
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Lookup:   LookupConfig{Source: LookupSourceDatabase},
		Dictionary: DictionaryConfig{
			ImportChunkSize:   50,
			MaxImportItems:    5000,
			MaxSensesPerEntry: 20,
			ExportMaxEntries:  1000,
			DefaultLanguage:   "en",
		},
	}
}
