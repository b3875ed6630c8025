package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Direction selects which way a definition translates.
type Direction int

const (
	// Forward translates a persisted entity into a transfer object.
	Forward Direction = iota + 1
	// Reverse translates a transfer object into an entity ready to be staged.
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// RuleKind tags the variant of a Rule.
type RuleKind int

const (
	RuleSimple RuleKind = iota + 1
	RuleNavigation
	RulePartial
	RuleCollection
)

func (k RuleKind) String() string {
	switch k {
	case RuleSimple:
		return "simple"
	case RuleNavigation:
		return "navigation"
	case RulePartial:
		return "partial"
	case RuleCollection:
		return "collection"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// Rule is one declarative mapping instruction from S to T. Rules are
// stateless; Target names the written field and is used by RuleSet.Without.
type Rule[S, T any] struct {
	Kind   RuleKind
	Target string
	apply  func(x *exec, src S, dst T) error
}

// RuleSet is an ordered list of rules. Rules run in order, so a later rule
// writing the same field wins. RuleSet values are never mutated in place:
// Extend and Without return copies, which lets concrete translators build on
// a shared base set.
type RuleSet[S, T any] []Rule[S, T]

// Rules builds a RuleSet.
func Rules[S, T any](rules ...Rule[S, T]) RuleSet[S, T] {
	return RuleSet[S, T](slices.Clone(rules))
}

// Extend returns a copy of rs with rules appended.
func (rs RuleSet[S, T]) Extend(rules ...Rule[S, T]) RuleSet[S, T] {
	out := make(RuleSet[S, T], 0, len(rs)+len(rules))
	out = append(out, rs...)
	return append(out, rules...)
}

// Without returns a copy of rs with every rule writing one of targets removed.
func (rs RuleSet[S, T]) Without(targets ...string) RuleSet[S, T] {
	out := make(RuleSet[S, T], 0, len(rs))
	for _, r := range rs {
		if !slices.Contains(targets, r.Target) {
			out = append(out, r)
		}
	}
	return out
}

// Targets lists the written fields in declaration order.
func (rs RuleSet[S, T]) Targets() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Target
	}
	return out
}

// Simple copies a value verbatim.
func Simple[S, T, V any](target string, read func(S) V, write func(T, V)) Rule[S, T] {
	return Rule[S, T]{
		Kind:   RuleSimple,
		Target: target,
		apply: func(_ *exec, src S, dst T) error {
			write(dst, read(src))
			return nil
		},
	}
}

// Navigate copies a value produced by a lookup or a light transform. An
// error from read aborts the whole translation.
func Navigate[S, T, V any](target string, read func(S) (V, error), write func(T, V)) Rule[S, T] {
	return Rule[S, T]{
		Kind:   RuleNavigation,
		Target: target,
		apply: func(_ *exec, src S, dst T) error {
			v, err := read(src)
			if err != nil {
				return err
			}
			write(dst, v)
			return nil
		},
	}
}

// Partial merges a shared field group. sub returns the source sub-object and
// whether it is present; an absent sub-object leaves dst untouched. dst
// returns the value the sub rules write into, typically a field of the
// current target.
func Partial[S, T, SS, ST any](target string, sub func(S) (SS, bool), dst func(T) ST, rules RuleSet[SS, ST]) Rule[S, T] {
	return Rule[S, T]{
		Kind:   RulePartial,
		Target: target,
		apply: func(x *exec, src S, d T) error {
			ss, ok := sub(src)
			if !ok {
				return nil
			}
			return applyRules(x.nested(target), rules, ss, dst(d))
		},
	}
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// exec carries the per-translation state shared by nested rules.
type exec struct {
	ctx   context.Context
	dir   Direction
	store Store
	plan  *plan
	log   *slog.Logger
	owner Entity
	path  string
}

func (x *exec) nested(segment string) *exec {
	n := *x
	n.path = x.qualify(segment)
	return &n
}

func (x *exec) withOwner(e Entity) *exec {
	n := *x
	n.owner = e
	return &n
}

func (x *exec) qualify(target string) string {
	if x.path == "" {
		return target
	}
	return x.path + "." + target
}

func applyRules[S, T any](x *exec, rules RuleSet[S, T], src S, dst T) error {
	for _, r := range rules {
		if r.apply == nil {
			return configErrorf("rule %q has no body", x.qualify(r.Target))
		}
		if err := r.apply(x, src, dst); err != nil {
			var re *RuleError
			if errors.As(err, &re) {
				return err
			}
			return &RuleError{Target: x.qualify(r.Target), Kind: r.Kind, Err: err}
		}
	}
	return nil
}
