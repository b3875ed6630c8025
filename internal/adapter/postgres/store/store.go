package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/entitymap/internal/adapter/postgres"
	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
)

// Store holds the table mappings and the connection used when the context
// carries no transaction.
type Store struct {
	db     postgres.Querier
	tables map[string]Table
	log    *slog.Logger
	now    func() time.Time
}

// New creates a Store over tables.
func New(db postgres.Querier, logger *slog.Logger, tables ...Table) (*Store, error) {
	s := &Store{
		db:     db,
		tables: make(map[string]Table, len(tables)),
		log:    logger.With("adapter", "postgres.store"),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, t := range tables {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.tables[t.Kind]; dup {
			return nil, fmt.Errorf("store: duplicate table for kind %q", t.Kind)
		}
		s.tables[t.Kind] = t
	}
	return s, nil
}

// Begin opens a unit of work. Reads and Commit use the transaction carried
// by ctx when there is one, so wrapping the whole translation in
// TxManager.RunInTx gives a consistent snapshot.
func (s *Store) Begin() *UnitOfWork {
	return &UnitOfWork{store: s, index: map[opKey]int{}}
}

func (s *Store) table(kind string) (Table, error) {
	t, ok := s.tables[kind]
	if !ok {
		return Table{}, fmt.Errorf("store: no table for kind %q", kind)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// UnitOfWork
// ---------------------------------------------------------------------------

type opKey struct {
	kind string
	id   uuid.UUID
}

// UnitOfWork implements mapping.Store. It is not safe for concurrent use.
type UnitOfWork struct {
	store *Store
	ops   []mapping.Op
	index map[opKey]int
	done  bool
}

var (
	_ mapping.Store        = (*UnitOfWork)(nil)
	_ mapping.Checkpointer = (*UnitOfWork)(nil)
)

func (u *UnitOfWork) check() error {
	if u.done {
		return errors.New("store: unit of work already closed")
	}
	return nil
}

func (u *UnitOfWork) staged(kind string, id uuid.UUID) (mapping.Op, bool) {
	i, ok := u.index[opKey{kind: kind, id: id}]
	if !ok {
		return mapping.Op{}, false
	}
	return u.ops[i], true
}

func (u *UnitOfWork) query(ctx context.Context, t Table, b squirrel.SelectBuilder) ([]mapping.Entity, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.Name, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, u.store.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []mapping.Entity
	for rows.Next() {
		e, err := t.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.Name, err)
	}
	return out, nil
}

// overlay applies staged operations to persisted rows: deleted rows vanish,
// updated rows are replaced and inserts accepted by keep are appended.
func (u *UnitOfWork) overlay(kind string, persisted []mapping.Entity, keep func(mapping.Entity) bool) []mapping.Entity {
	out := make([]mapping.Entity, 0, len(persisted))
	seen := make(map[uuid.UUID]bool, len(persisted))
	for _, e := range persisted {
		seen[e.EntityID()] = true
		op, ok := u.staged(kind, e.EntityID())
		switch {
		case !ok:
			out = append(out, e)
		case op.Action == mapping.ActionDelete:
		case keep(op.Entity):
			out = append(out, mapping.Detach(op.Entity))
		}
	}
	for _, op := range u.ops {
		if op.Action != mapping.ActionInsert || op.Entity.EntityKind() != kind || seen[op.Entity.EntityID()] {
			continue
		}
		if keep(op.Entity) {
			out = append(out, mapping.Detach(op.Entity))
		}
	}
	return out
}

// FindExisting selects rows of q.Kind narrowed by q.Keys, overlays staged
// operations and filters the result with q.Match.
func (u *UnitOfWork) FindExisting(ctx context.Context, q mapping.Query) ([]mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	t, err := u.store.table(q.Kind)
	if err != nil {
		return nil, err
	}

	b := t.selectBuilder()
	if len(q.Keys) > 0 {
		b = b.Where(squirrel.Eq(q.Keys))
	}
	persisted, err := u.query(ctx, t, b)
	if err != nil {
		return nil, err
	}

	match := func(e mapping.Entity) bool { return q.Match == nil || q.Match(e) }
	return slices.DeleteFunc(u.overlay(q.Kind, persisted, match), func(e mapping.Entity) bool {
		return !match(e)
	}), nil
}

// FindChildren returns the rows of kind owned by parentID in table order,
// followed by rows staged for insertion.
func (u *UnitOfWork) FindChildren(ctx context.Context, kind string, parentID uuid.UUID) ([]mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	t, err := u.store.table(kind)
	if err != nil {
		return nil, err
	}
	if t.Owner == "" {
		return nil, fmt.Errorf("store: kind %q has no owner column", kind)
	}

	b := t.selectBuilder().Where(squirrel.Eq{t.Owner: parentID})
	if len(t.Order) > 0 {
		b = b.OrderBy(t.Order...)
	}
	persisted, err := u.query(ctx, t, b)
	if err != nil {
		return nil, err
	}

	owned := func(e mapping.Entity) bool {
		o, ok := e.(mapping.Owned)
		return ok && o.OwnerID() == parentID
	}
	return u.overlay(kind, persisted, owned), nil
}

// Get loads one row by id, staged operations included.
func (u *UnitOfWork) Get(ctx context.Context, kind string, id uuid.UUID) (mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	t, err := u.store.table(kind)
	if err != nil {
		return nil, err
	}

	if op, ok := u.staged(kind, id); ok {
		if op.Action == mapping.ActionDelete {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
		}
		return mapping.Detach(op.Entity), nil
	}

	sql, args, err := t.selectBuilder().Where(squirrel.Eq{t.Key: id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.Name, err)
	}
	e, err := t.Scan(postgres.QuerierFromCtx(ctx, u.store.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, kind, id)
	}
	return e, nil
}

// stage records an operation. Repeated operations on one row collapse: an
// inserted row stays an insert when updated and disappears when deleted.
func (u *UnitOfWork) stage(a mapping.Action, e mapping.Entity) error {
	if err := u.check(); err != nil {
		return err
	}
	if _, err := u.store.table(e.EntityKind()); err != nil {
		return err
	}

	k := opKey{kind: e.EntityKind(), id: e.EntityID()}
	i, ok := u.index[k]
	if !ok {
		u.index[k] = len(u.ops)
		u.ops = append(u.ops, mapping.Op{Action: a, Entity: mapping.Detach(e)})
		return nil
	}

	prev := u.ops[i].Action
	switch {
	case prev == mapping.ActionInsert && a == mapping.ActionInsert:
		return fmt.Errorf("%s %s: %w", k.kind, k.id, domain.ErrAlreadyExists)
	case prev == mapping.ActionDelete && a != mapping.ActionInsert:
		return fmt.Errorf("%s %s: %w", k.kind, k.id, domain.ErrNotFound)
	case prev == mapping.ActionInsert && a == mapping.ActionUpdate:
		u.ops[i].Entity = mapping.Detach(e)
	case prev == mapping.ActionInsert && a == mapping.ActionDelete:
		u.ops = slices.Delete(u.ops, i, i+1)
		u.reindex()
	default:
		u.ops[i] = mapping.Op{Action: a, Entity: mapping.Detach(e)}
	}
	return nil
}

func (u *UnitOfWork) reindex() {
	clear(u.index)
	for i, op := range u.ops {
		u.index[opKey{kind: op.Entity.EntityKind(), id: op.Entity.EntityID()}] = i
	}
}

func (u *UnitOfWork) StageInsert(_ context.Context, e mapping.Entity) error {
	return u.stage(mapping.ActionInsert, e)
}

func (u *UnitOfWork) StageUpdate(_ context.Context, e mapping.Entity) error {
	return u.stage(mapping.ActionUpdate, e)
}

func (u *UnitOfWork) StageDelete(_ context.Context, e mapping.Entity) error {
	return u.stage(mapping.ActionDelete, e)
}

// Checkpoint captures the staged operations. Nothing reaches the database
// before Commit, so rewinding only touches memory.
func (u *UnitOfWork) Checkpoint() func() {
	ops := slices.Clone(u.ops)
	return func() {
		u.ops = ops
		u.reindex()
	}
}

// Pending returns the staged operations in staging order.
func (u *UnitOfWork) Pending() []mapping.Op { return slices.Clone(u.ops) }

// Commit executes the staged operations in staging order. Run it inside
// TxManager.RunInTx: a failure leaves earlier statements to the
// surrounding transaction's rollback.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := u.check(); err != nil {
		return err
	}
	u.done = true

	q := postgres.QuerierFromCtx(ctx, u.store.db)
	now := u.store.now()

	var inserted, updated, deleted int
	for _, op := range u.ops {
		t, err := u.store.table(op.Entity.EntityKind())
		if err != nil {
			return err
		}

		var b squirrel.Sqlizer
		switch op.Action {
		case mapping.ActionInsert:
			b = t.insert(op.Entity, now)
			inserted++
		case mapping.ActionUpdate:
			b = t.update(op.Entity, now)
			updated++
		case mapping.ActionDelete:
			b = t.delete(op.Entity)
			deleted++
		default:
			continue
		}

		sql, args, err := b.ToSql()
		if err != nil {
			return fmt.Errorf("build %s %s: %w", op.Action, t.Name, err)
		}
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return postgres.MapError(err, op.Entity.EntityKind(), op.Entity.EntityID())
		}
		if op.Action != mapping.ActionInsert && tag.RowsAffected() == 0 {
			return postgres.MapError(pgx.ErrNoRows, op.Entity.EntityKind(), op.Entity.EntityID())
		}
	}

	u.store.log.DebugContext(ctx, "unit of work committed",
		slog.Int("inserted", inserted),
		slog.Int("updated", updated),
		slog.Int("deleted", deleted),
	)
	return nil
}

// Discard drops the staged operations.
func (u *UnitOfWork) Discard() {
	u.done = true
	u.ops = nil
	clear(u.index)
}
