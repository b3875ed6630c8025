package mapping

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// Entity is a persisted domain object the engine can stage.
type Entity interface {
	EntityKind() string
	EntityID() uuid.UUID
	SetEntityID(id uuid.UUID)
}

// Owned is implemented by child entities that reference their parent row.
type Owned interface {
	Entity
	OwnerID() uuid.UUID
	SetOwnerID(id uuid.UUID)
}

// Versioned is implemented by version rows of the root/version model.
type Versioned interface {
	Entity
	RootID() uuid.UUID
	SetRootID(id uuid.UUID)
	VersionNumber() int
	SetVersionNumber(n int)
}

// Query selects existing entities of one kind. Match is authoritative;
// Keys is an optional equality narrowing (column -> value) that a store may
// push down to its query language. Stores must not return rows that fail Match.
type Query struct {
	Kind  string
	Keys  map[string]any
	Match func(Entity) bool
}

// Store is the persistence staging boundary. Implementations track pending
// inserts/updates/deletes until a later commit owned by the caller. Entities
// returned by the Find methods must be detached copies: mutating them has no
// effect until they are staged.
type Store interface {
	// FindExisting returns every staged or persisted entity satisfying q.
	FindExisting(ctx context.Context, q Query) ([]Entity, error)
	// FindChildren returns the current child collection of kind owned by parentID.
	FindChildren(ctx context.Context, kind string, parentID uuid.UUID) ([]Entity, error)
	StageInsert(ctx context.Context, e Entity) error
	StageUpdate(ctx context.Context, e Entity) error
	StageDelete(ctx context.Context, e Entity) error
}

// Checkpointer is an optional Store extension. Checkpoint captures the
// staging state and the returned rewind restores it. A translation whose plan
// fails halfway through staging rewinds, so the store keeps nothing of it.
// Stores without it keep the operations staged before the failing one.
type Checkpointer interface {
	Checkpoint() (rewind func())
}

// Prefetcher is an optional Store extension receiving subtree hints before
// the upsert predicate runs. Hints never change results.
type Prefetcher interface {
	Prefetch(ctx context.Context, kind string, paths []string) error
}

// Detach returns a copy of e sharing no row-level memory with it. Entities
// implementing Clone() any decide what a copy carries; other pointer
// entities are copied shallowly.
func Detach(e Entity) Entity {
	if c, ok := e.(interface{ Clone() any }); ok {
		if d, ok := c.Clone().(Entity); ok {
			return d
		}
	}
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return e
	}
	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	return cp.Interface().(Entity)
}
