package mapping

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
)

// Fallback decides what happens when an existing-entity branch finds no match.
type Fallback int

const (
	// CreateOnMiss treats a stale identifier as a create. This keeps reverse
	// translation from failing merely because a referenced row is gone.
	CreateOnMiss Fallback = iota + 1
	// FailOnMiss reports domain.ErrNotFound.
	FailOnMiss
)

func (f Fallback) String() string {
	switch f {
	case CreateOnMiss:
		return "create-on-miss"
	case FailOnMiss:
		return "fail-on-miss"
	}
	return fmt.Sprintf("Fallback(%d)", int(f))
}

// Resolution tells how the reverse target was obtained.
type Resolution int

const (
	Unresolved Resolution = iota
	Created
	Matched
)

func (r Resolution) String() string {
	switch r {
	case Created:
		return "created"
	case Matched:
		return "matched"
	}
	return "unresolved"
}

type branch[S, T any] struct {
	when     func(S) bool
	existing bool
	match    func(S, T) bool
	fallback Fallback
}

// upsert is the per-definition resolver state.
type upsert[S, T any] struct {
	branches []branch[S, T]
	narrow   func(S) map[string]any
	prefetch []string
}

// resolve picks the reverse target. Branches are tried in declaration order;
// the first whose predicate holds decides.
func (u *upsert[S, T]) resolve(x *exec, kind string, src S, newTarget func() T) (T, Resolution, error) {
	var zero T

	if len(u.branches) == 0 {
		return zero, Unresolved, configErrorf("%s: no upsert branch declared", kind)
	}

	for i, b := range u.branches {
		if !b.when(src) {
			continue
		}
		if !b.existing {
			t, err := create(kind, newTarget)
			if err != nil {
				return zero, Unresolved, err
			}
			x.log.DebugContext(x.ctx, "upsert resolved",
				slog.String("kind", kind), slog.Int("branch", i), slog.String("resolution", Created.String()))
			return t, Created, nil
		}
		return u.lookup(x, kind, i, b, src, newTarget)
	}

	return zero, Unresolved, configErrorf("%s: no upsert branch applies to the source object", kind)
}

func (u *upsert[S, T]) lookup(x *exec, kind string, i int, b branch[S, T], src S, newTarget func() T) (T, Resolution, error) {
	var zero T

	if x.store == nil {
		return zero, Unresolved, configErrorf("%s: existing-entity branch requires a store", kind)
	}

	if len(u.prefetch) > 0 {
		if p, ok := x.store.(Prefetcher); ok {
			if err := p.Prefetch(x.ctx, kind, u.prefetch); err != nil {
				return zero, Unresolved, fmt.Errorf("%s: prefetch: %w", kind, err)
			}
		}
	}

	q := Query{
		Kind: kind,
		Match: func(e Entity) bool {
			t, ok := e.(T)
			return ok && b.match(src, t)
		},
	}
	if u.narrow != nil {
		q.Keys = u.narrow(src)
	}

	found, err := x.store.FindExisting(x.ctx, q)
	if err != nil {
		return zero, Unresolved, fmt.Errorf("%s: find existing: %w", kind, err)
	}

	switch len(found) {
	case 0:
		if b.fallback == FailOnMiss {
			return zero, Unresolved, fmt.Errorf("%s: %w", kind, domain.ErrNotFound)
		}
		t, err := create(kind, newTarget)
		if err != nil {
			return zero, Unresolved, err
		}
		x.log.DebugContext(x.ctx, "upsert fell back to create",
			slog.String("kind", kind), slog.Int("branch", i))
		return t, Created, nil
	case 1:
		t, ok := found[0].(T)
		if !ok {
			return zero, Unresolved, configErrorf("%s: store returned %T", kind, found[0])
		}
		x.log.DebugContext(x.ctx, "upsert resolved",
			slog.String("kind", kind), slog.Int("branch", i),
			slog.String("resolution", Matched.String()),
			slog.String("id", found[0].EntityID().String()))
		return t, Matched, nil
	default:
		return zero, Unresolved, fmt.Errorf("%s: %d rows satisfy the match predicate: %w", kind, len(found), ErrAmbiguousMatch)
	}
}

func create[T any](kind string, newTarget func() T) (T, error) {
	t := newTarget()
	e, ok := any(t).(Entity)
	if !ok {
		var zero T
		return zero, configErrorf("%s: target %T does not implement mapping.Entity", kind, t)
	}
	e.SetEntityID(uuid.New())
	return t, nil
}
