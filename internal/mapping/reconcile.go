package mapping

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Policy governs previously persisted children that no source item matched.
type Policy int

const (
	// ReplaceForwardOnly inserts and updates; unmatched children are not
	// considered for deletion. Deleting them is the caller's business.
	ReplaceForwardOnly Policy = iota + 1
	// RemoveObsolete stages unmatched children for deletion.
	RemoveObsolete
	// KeepUnmatched retains unmatched children unchanged, on purpose.
	KeepUnmatched
)

func (p Policy) String() string {
	switch p {
	case ReplaceForwardOnly:
		return "replace-forward-only"
	case RemoveObsolete:
		return "remove-obsolete"
	case KeepUnmatched:
		return "keep-unmatched"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Child describes how elements of a collection are translated.
//
// In the forward direction only Rules and New are used. In the reverse
// direction CT must implement Owned; Match locates the previous child an
// item corresponds to and IsNew, when set, short-circuits matching for items
// that are known to be new.
//
// Matcher replaces Match when the comparison needs resolved values: it runs
// once per item and returns the predicate applied to every previous child.
// Its error aborts the translation at the item's path.
type Child[CS, CT any] struct {
	Rules   RuleSet[CS, CT]
	New     func() CT
	Match   func(item CS, previous CT) bool
	Matcher func(item CS) (func(previous CT) bool, error)
	IsNew   func(item CS) bool
}

// Collection maps a sequence. A nil sequence means "not specified" and
// leaves the target collection untouched; an empty non-nil sequence is a
// real, empty desired state. In the reverse direction the sequence is
// reconciled against the owner's persisted children under policy.
func Collection[S, T, CS, CT any](target string, read func(S) []CS, write func(T, []CT), child Child[CS, CT], policy Policy) Rule[S, T] {
	return Rule[S, T]{
		Kind:   RuleCollection,
		Target: target,
		apply: func(x *exec, src S, dst T) error {
			items := read(src)
			if items == nil {
				return nil
			}
			if child.New == nil {
				return configErrorf("collection %q has no element constructor", x.qualify(target))
			}

			var (
				out []CT
				err error
			)
			switch x.dir {
			case Forward:
				out, err = mapEach(x, target, items, child)
			case Reverse:
				out, err = reconcile(x, target, items, child, policy)
			default:
				err = configErrorf("unknown direction %s", x.dir)
			}
			if err != nil {
				return err
			}
			write(dst, out)
			return nil
		},
	}
}

func mapEach[CS, CT any](x *exec, target string, items []CS, child Child[CS, CT]) ([]CT, error) {
	out := make([]CT, 0, len(items))
	for i, item := range items {
		ct := child.New()
		if err := applyRules(x.nested(fmt.Sprintf("%s[%d]", target, i)), child.Rules, item, ct); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}

// reconcile computes inserts, updates and deletes for one collection and
// returns the live children: source order first, then retained previous
// children in their persisted order.
func reconcile[CS, CT any](x *exec, target string, items []CS, child Child[CS, CT], policy Policy) ([]CT, error) {
	path := x.qualify(target)

	switch policy {
	case ReplaceForwardOnly, RemoveObsolete, KeepUnmatched:
	default:
		return nil, configErrorf("collection %q has unknown policy %s", path, policy)
	}
	if x.owner == nil {
		return nil, configErrorf("collection %q has no owning entity", path)
	}
	if child.Match == nil && child.Matcher == nil && child.IsNew == nil {
		return nil, configErrorf("collection %q has no match predicate", path)
	}

	sample, ok := any(child.New()).(Owned)
	if !ok {
		return nil, configErrorf("collection %q: element %T does not implement mapping.Owned", path, child.New())
	}
	kind := sample.EntityKind()
	ownerID := x.owner.EntityID()

	previous, err := previousChildren[CT](x, kind, path)
	if err != nil {
		return nil, err
	}

	claimed := make([]bool, len(previous))
	live := make([]CT, 0, len(items)+len(previous))
	var inserted, updated, deleted int

	for i, item := range items {
		ix := x.nested(fmt.Sprintf("%s[%d]", target, i))

		found := -1
		if child.IsNew == nil || !child.IsNew(item) {
			match, err := matcherFor(child, item)
			if err != nil {
				return nil, &RuleError{Target: ix.path, Kind: RuleCollection, Err: err}
			}
			if match != nil {
				for j, prev := range previous {
					if !match(prev) {
						continue
					}
					if found >= 0 {
						return nil, fmt.Errorf("%s: item matches more than one %s: %w", ix.path, kind, ErrAmbiguousMatch)
					}
					found = j
				}
			}
		}

		var (
			ct  CT
			row Owned
		)
		if found >= 0 {
			if claimed[found] {
				return nil, fmt.Errorf("%s: %s %s is claimed by more than one item: %w",
					ix.path, kind, any(previous[found]).(Entity).EntityID(), ErrAmbiguousMatch)
			}
			claimed[found] = true
			ct = previous[found]
			row = any(ct).(Owned)
			x.plan.add(ActionUpdate, row)
			updated++
		} else {
			ct = child.New()
			row = any(ct).(Owned)
			row.SetEntityID(uuid.New())
			row.SetOwnerID(ownerID)
			x.plan.add(ActionInsert, row)
			inserted++
		}

		if err := applyRules(ix.withOwner(row), child.Rules, item, ct); err != nil {
			return nil, err
		}
		// The owner reference always points at the parent being translated.
		row.SetOwnerID(ownerID)
		live = append(live, ct)
	}

	for j, prev := range previous {
		if claimed[j] {
			continue
		}
		if policy == RemoveObsolete {
			x.plan.add(ActionDelete, any(prev).(Entity))
			deleted++
			continue
		}
		live = append(live, prev)
	}

	x.log.DebugContext(x.ctx, "collection reconciled",
		slog.String("path", path),
		slog.String("kind", kind),
		slog.String("policy", policy.String()),
		slog.Int("inserted", inserted),
		slog.Int("updated", updated),
		slog.Int("deleted", deleted),
		slog.Int("retained", len(live)-inserted-updated),
	)

	return live, nil
}

// previousChildren loads the persisted collection of the current owner. An
// owner created by this translation has no previous children.
func previousChildren[CT any](x *exec, kind, path string) ([]CT, error) {
	if x.plan.created(x.owner) {
		return nil, nil
	}
	if x.store == nil {
		return nil, configErrorf("collection %q: no store to load previous children from", path)
	}

	rows, err := x.store.FindChildren(x.ctx, kind, x.owner.EntityID())
	if err != nil {
		return nil, fmt.Errorf("%s: load previous %s: %w", path, kind, err)
	}

	previous := make([]CT, 0, len(rows))
	for _, r := range rows {
		ct, ok := any(r).(CT)
		if !ok {
			return nil, configErrorf("collection %q: store returned %T for kind %q", path, r, kind)
		}
		previous = append(previous, ct)
	}
	return previous, nil
}

func matcherFor[CS, CT any](child Child[CS, CT], item CS) (func(CT) bool, error) {
	if child.Matcher != nil {
		return child.Matcher(item)
	}
	if child.Match != nil {
		return func(prev CT) bool { return child.Match(item, prev) }, nil
	}
	return nil, nil
}
