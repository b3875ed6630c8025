package dictionary

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
)

// SaveResult describes a committed entry version.
type SaveResult struct {
	EntryID   uuid.UUID
	VersionID uuid.UUID
	Number    int
	Created   bool
	Inserted  int
	Updated   int
	Deleted   int
}

// Plan is the outcome of a dry run: what SaveEntry would stage.
type Plan struct {
	EntryID   uuid.UUID
	VersionID uuid.UUID
	Created   bool
	Ops       []mapping.Op
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Updated  int
	Skipped  int
	Errors   []ImportError
}

// ImportError describes a single failure during import.
type ImportError struct {
	LineNumber int
	Text       string
	Reason     string
}

// ExportResult contains the exported dictionary data.
type ExportResult struct {
	Items      []*transfer.EntryVersion
	ExportedAt time.Time
}
