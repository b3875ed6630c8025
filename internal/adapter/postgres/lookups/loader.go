// Package lookups loads the lookup tables from PostgreSQL.
package lookups

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/entitymap/internal/adapter/postgres"
	"github.com/heartmarshall/entitymap/internal/adapter/postgres/store"
	"github.com/heartmarshall/entitymap/internal/lookup"
)

// Load reads languages and type codes concurrently and builds a lookup.Table.
func Load(ctx context.Context, db postgres.Querier) (*lookup.Table, error) {
	var (
		languages []lookup.Code
		types     = map[lookup.Category][]lookup.Code{}
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := query(gctx, db, store.Builder().
			Select("id", "code").
			From("languages").
			OrderBy("code"))
		if err != nil {
			return fmt.Errorf("load languages: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c lookup.Code
			if err := rows.Scan(&c.ID, &c.Code); err != nil {
				return fmt.Errorf("scan language: %w", err)
			}
			languages = append(languages, c)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := query(gctx, db, store.Builder().
			Select("id", "category", "code").
			From("type_codes").
			OrderBy("category", "code"))
		if err != nil {
			return fmt.Errorf("load type codes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id       uuid.UUID
				category string
				code     string
			)
			if err := rows.Scan(&id, &category, &code); err != nil {
				return fmt.Errorf("scan type code: %w", err)
			}
			cat := lookup.Category(category)
			types[cat] = append(types[cat], lookup.Code{ID: id, Code: code})
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lookup.NewTable(types, languages)
}

type sqlizer interface {
	ToSql() (string, []any, error)
}

func query(ctx context.Context, db postgres.Querier, b sqlizer) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return postgres.QuerierFromCtx(ctx, db).Query(ctx, sql, args...)
}
