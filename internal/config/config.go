package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Lookup     LookupConfig     `yaml:"lookup"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Lookup table sources.
const (
	LookupSourceDatabase = "database"
	LookupSourceYAML     = "yaml"
)

// LookupConfig selects where the code tables come from.
type LookupConfig struct {
	Source string `yaml:"source" env:"LOOKUP_SOURCE" env-default:"database"`
	Path   string `yaml:"path"   env:"LOOKUP_PATH"`
}

// DictionaryConfig holds dictionary service settings.
type DictionaryConfig struct {
	ImportChunkSize   int    `yaml:"import_chunk_size"    env:"DICT_IMPORT_CHUNK_SIZE"    env-default:"50"`
	MaxImportItems    int    `yaml:"max_import_items"     env:"DICT_MAX_IMPORT_ITEMS"     env-default:"5000"`
	MaxSensesPerEntry int    `yaml:"max_senses_per_entry" env:"DICT_MAX_SENSES_PER_ENTRY" env-default:"20"`
	ExportMaxEntries  int    `yaml:"export_max_entries"   env:"DICT_EXPORT_MAX_ENTRIES"   env-default:"1000"`
	DefaultLanguage   string `yaml:"default_language"     env:"DICT_DEFAULT_LANGUAGE"     env-default:"en"`
}
