// Package memstore is an in-memory persistence staging area. A UnitOfWork
// works on a private copy of the committed rows and publishes it atomically
// on Commit.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
)

// state is the set of rows of every kind, in insertion order per kind.
type state struct {
	rows  map[string]map[uuid.UUID]mapping.Entity
	order map[string][]uuid.UUID
}

func newState() state {
	return state{
		rows:  map[string]map[uuid.UUID]mapping.Entity{},
		order: map[string][]uuid.UUID{},
	}
}

// clone copies the maps. Entities are shared: rows are never mutated in
// place, every write replaces the stored value with a detached copy.
func (s state) clone() state {
	c := state{
		rows:  make(map[string]map[uuid.UUID]mapping.Entity, len(s.rows)),
		order: make(map[string][]uuid.UUID, len(s.order)),
	}
	for kind, rows := range s.rows {
		m := make(map[uuid.UUID]mapping.Entity, len(rows))
		for id, e := range rows {
			m[id] = e
		}
		c.rows[kind] = m
	}
	for kind, ids := range s.order {
		c.order[kind] = slices.Clone(ids)
	}
	return c
}

func (s state) get(kind string, id uuid.UUID) (mapping.Entity, bool) {
	e, ok := s.rows[kind][id]
	return e, ok
}

func (s state) put(e mapping.Entity) {
	kind := e.EntityKind()
	rows, ok := s.rows[kind]
	if !ok {
		rows = map[uuid.UUID]mapping.Entity{}
		s.rows[kind] = rows
	}
	if _, exists := rows[e.EntityID()]; !exists {
		s.order[kind] = append(s.order[kind], e.EntityID())
	}
	rows[e.EntityID()] = mapping.Detach(e)
}

// remove deletes a row and, recursively, every owned row referencing it.
func (s state) remove(kind string, id uuid.UUID) {
	delete(s.rows[kind], id)
	s.order[kind] = slices.DeleteFunc(s.order[kind], func(x uuid.UUID) bool { return x == id })

	for childKind, ids := range s.order {
		for _, cid := range slices.Clone(ids) {
			o, ok := s.rows[childKind][cid].(mapping.Owned)
			if ok && o.OwnerID() == id {
				s.remove(childKind, cid)
			}
		}
	}
}

func (s state) list(kind string) []mapping.Entity {
	out := make([]mapping.Entity, 0, len(s.order[kind]))
	for _, id := range s.order[kind] {
		out = append(out, s.rows[kind][id])
	}
	return out
}

// Store holds committed rows.
type Store struct {
	mu      sync.RWMutex
	state   state
	version uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: newState()}
}

// Seed commits entities directly, bypassing staging.
func (s *Store) Seed(entities ...mapping.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		s.state.put(e)
	}
	s.version++
}

// Get returns a detached copy of a committed row.
func (s *Store) Get(kind string, id uuid.UUID) (mapping.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.get(kind, id)
	if !ok {
		return nil, false
	}
	return mapping.Detach(e), true
}

// Len reports the number of committed rows of kind.
func (s *Store) Len(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.rows[kind])
}

// Begin opens a unit of work over a snapshot of the committed rows.
func (s *Store) Begin() *UnitOfWork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &UnitOfWork{
		store: s,
		base:  s.version,
		state: s.state.clone(),
	}
}

// RunInTx calls fn. Units of work commit atomically on their own, so there
// is no outer transaction to manage.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) publish(u *UnitOfWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != u.base {
		return fmt.Errorf("memstore: concurrent commit: %w", domain.ErrConflict)
	}
	s.state = u.state
	s.version++
	return nil
}

// ---------------------------------------------------------------------------
// UnitOfWork
// ---------------------------------------------------------------------------

// UnitOfWork implements mapping.Store. It is not safe for concurrent use.
type UnitOfWork struct {
	store *Store
	base  uint64
	state state
	ops   []mapping.Op
	hints map[string][]string
	done  bool
}

var (
	_ mapping.Store        = (*UnitOfWork)(nil)
	_ mapping.Prefetcher   = (*UnitOfWork)(nil)
	_ mapping.Checkpointer = (*UnitOfWork)(nil)
)

func (u *UnitOfWork) check() error {
	if u.done {
		return fmt.Errorf("memstore: unit of work already closed")
	}
	return nil
}

// FindExisting scans staged and committed rows of q.Kind. Keys are ignored:
// Match is authoritative.
func (u *UnitOfWork) FindExisting(_ context.Context, q mapping.Query) ([]mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	var out []mapping.Entity
	for _, e := range u.state.list(q.Kind) {
		if q.Match == nil || q.Match(e) {
			out = append(out, mapping.Detach(e))
		}
	}
	return out, nil
}

// FindChildren returns rows of kind owned by parentID in insertion order.
func (u *UnitOfWork) FindChildren(_ context.Context, kind string, parentID uuid.UUID) ([]mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	var out []mapping.Entity
	for _, e := range u.state.list(kind) {
		o, ok := e.(mapping.Owned)
		if !ok {
			return nil, fmt.Errorf("memstore: kind %q is not owned", kind)
		}
		if o.OwnerID() == parentID {
			out = append(out, mapping.Detach(e))
		}
	}
	return out, nil
}

// Get returns a detached copy of a staged or committed row.
func (u *UnitOfWork) Get(_ context.Context, kind string, id uuid.UUID) (mapping.Entity, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	e, ok := u.state.get(kind, id)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return mapping.Detach(e), nil
}

func (u *UnitOfWork) StageInsert(_ context.Context, e mapping.Entity) error {
	if err := u.check(); err != nil {
		return err
	}
	if _, ok := u.state.get(e.EntityKind(), e.EntityID()); ok {
		return fmt.Errorf("%s %s: %w", e.EntityKind(), e.EntityID(), domain.ErrAlreadyExists)
	}
	u.state.put(e)
	u.ops = append(u.ops, mapping.Op{Action: mapping.ActionInsert, Entity: mapping.Detach(e)})
	return nil
}

func (u *UnitOfWork) StageUpdate(_ context.Context, e mapping.Entity) error {
	if err := u.check(); err != nil {
		return err
	}
	if _, ok := u.state.get(e.EntityKind(), e.EntityID()); !ok {
		return fmt.Errorf("%s %s: %w", e.EntityKind(), e.EntityID(), domain.ErrNotFound)
	}
	u.state.put(e)
	u.ops = append(u.ops, mapping.Op{Action: mapping.ActionUpdate, Entity: mapping.Detach(e)})
	return nil
}

func (u *UnitOfWork) StageDelete(_ context.Context, e mapping.Entity) error {
	if err := u.check(); err != nil {
		return err
	}
	if _, ok := u.state.get(e.EntityKind(), e.EntityID()); !ok {
		return fmt.Errorf("%s %s: %w", e.EntityKind(), e.EntityID(), domain.ErrNotFound)
	}
	u.state.remove(e.EntityKind(), e.EntityID())
	u.ops = append(u.ops, mapping.Op{Action: mapping.ActionDelete, Entity: mapping.Detach(e)})
	return nil
}

// Checkpoint captures the staged rows and operations.
func (u *UnitOfWork) Checkpoint() func() {
	st, n := u.state.clone(), len(u.ops)
	return func() {
		u.state = st
		u.ops = u.ops[:n]
	}
}

// Prefetch records hints. Everything is already in memory.
func (u *UnitOfWork) Prefetch(_ context.Context, kind string, paths []string) error {
	if u.hints == nil {
		u.hints = map[string][]string{}
	}
	u.hints[kind] = append(u.hints[kind], paths...)
	return nil
}

// Hints returns the prefetch hints received for kind.
func (u *UnitOfWork) Hints(kind string) []string { return slices.Clone(u.hints[kind]) }

// Pending returns the staged operations in staging order.
func (u *UnitOfWork) Pending() []mapping.Op { return slices.Clone(u.ops) }

// Commit publishes the staged rows. It fails with domain.ErrConflict when
// another unit of work committed since Begin. A unit of work that staged
// nothing commits trivially.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if err := u.check(); err != nil {
		return err
	}
	u.done = true
	if len(u.ops) == 0 {
		return nil
	}
	return u.store.publish(u)
}

// Discard drops the staged rows.
func (u *UnitOfWork) Discard() {
	u.done = true
	u.ops = nil
}
