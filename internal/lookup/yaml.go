package lookup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a static lookup table:
//
//	languages:
//	  - {id: 6f9c..., code: en}
//	types:
//	  part_of_speech:
//	    - {id: 1a2b..., code: NOUN}
type File struct {
	Languages []Code              `yaml:"languages"`
	Types     map[Category][]Code `yaml:"types"`
}

// LoadYAML reads and parses a lookup file.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup file %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a Table from YAML data.
func ParseYAML(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lookup YAML: %w", err)
	}
	return NewTable(f.Types, f.Languages)
}
