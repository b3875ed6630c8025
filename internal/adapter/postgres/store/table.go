// Package store implements mapping.Store on PostgreSQL. Reads go straight to
// the database with staged operations overlaid; writes are buffered and
// executed in staging order on Commit.
package store

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/entitymap/internal/mapping"
)

// Table maps one entity kind to a table.
type Table struct {
	Kind string
	Name string
	// Key is the primary key column; Columns[0] must be Key.
	Key string
	// Owner is the column referencing the parent row of owned kinds.
	Owner string
	// Order is the ORDER BY of child collections.
	Order   []string
	Columns []string

	// Scan reads one row in Columns order.
	Scan func(row pgx.Row) (mapping.Entity, error)
	// Values returns the column values of e in Columns order. now stamps
	// timestamp columns.
	Values func(e mapping.Entity, now time.Time) []any
}

func (t Table) validate() error {
	switch {
	case t.Kind == "" || t.Name == "":
		return fmt.Errorf("store: table without kind or name")
	case len(t.Columns) == 0 || t.Columns[0] != t.Key:
		return fmt.Errorf("store: table %s: first column must be the key %q", t.Name, t.Key)
	case t.Scan == nil || t.Values == nil:
		return fmt.Errorf("store: table %s: scan and values are required", t.Name)
	}
	return nil
}

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (t Table) selectBuilder() squirrel.SelectBuilder {
	return Builder().Select(t.Columns...).From(t.Name)
}

func (t Table) insert(e mapping.Entity, now time.Time) squirrel.InsertBuilder {
	return Builder().Insert(t.Name).Columns(t.Columns...).Values(t.Values(e, now)...)
}

func (t Table) update(e mapping.Entity, now time.Time) squirrel.UpdateBuilder {
	vals := t.Values(e, now)
	b := Builder().Update(t.Name)
	for i, col := range t.Columns {
		if col == t.Key {
			continue
		}
		b = b.Set(col, vals[i])
	}
	return b.Where(squirrel.Eq{t.Key: e.EntityID()})
}

func (t Table) delete(e mapping.Entity) squirrel.DeleteBuilder {
	return Builder().Delete(t.Name).Where(squirrel.Eq{t.Key: e.EntityID()})
}
