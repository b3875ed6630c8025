package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Lookup.validate(); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if err := c.Dictionary.validate(); err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}
	return nil
}

func (l LogConfig) validate() error {
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text (got %q)", l.Format)
	}
	return nil
}

func (l LookupConfig) validate() error {
	switch l.Source {
	case LookupSourceDatabase:
	case LookupSourceYAML:
		if l.Path == "" {
			return fmt.Errorf("path is required for source %q", l.Source)
		}
	default:
		return fmt.Errorf("source must be %q or %q (got %q)", LookupSourceDatabase, LookupSourceYAML, l.Source)
	}
	return nil
}

func (d *DictionaryConfig) validate() error {
	if d.ImportChunkSize <= 0 || d.ImportChunkSize > 1000 {
		return fmt.Errorf("import_chunk_size must be in [1, 1000] (got %d)", d.ImportChunkSize)
	}
	if d.MaxImportItems <= 0 {
		return fmt.Errorf("max_import_items must be > 0 (got %d)", d.MaxImportItems)
	}
	if d.MaxSensesPerEntry <= 0 {
		return fmt.Errorf("max_senses_per_entry must be > 0 (got %d)", d.MaxSensesPerEntry)
	}
	if d.ExportMaxEntries <= 0 {
		return fmt.Errorf("export_max_entries must be > 0 (got %d)", d.ExportMaxEntries)
	}

	tag, err := language.Parse(d.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("default_language: %w", err)
	}
	d.DefaultLanguage = tag.String()
	return nil
}
