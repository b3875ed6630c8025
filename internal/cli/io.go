package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/entitymap/internal/transfer"
)

// readEntries reads transfer objects from a JSON or YAML file. The file
// holds either one entry or a list of entries.
func readEntries(path string) ([]*transfer.EntryVersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var items []*transfer.EntryVersion
	if err := unmarshal(data, &items); err == nil {
		return items, nil
	}

	var one transfer.EntryVersion
	if err := unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []*transfer.EntryVersion{&one}, nil
}

// readEntry reads exactly one transfer object.
func readEntry(path string) (*transfer.EntryVersion, error) {
	items, err := readEntries(path)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("%s: expected one entry, found %d", path, len(items))
	}
	return items[0], nil
}

// encode writes v as YAML when format is "yaml" and as indented JSON
// otherwise.
func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
