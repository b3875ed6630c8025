package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// State is the lifecycle position of a Definition. Transitions only move forward.
type State int

const (
	StateOpen State = iota
	StateAccumulating
	StateUpsertResolved
	StateRulesApplied
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAccumulating:
		return "rules-accumulating"
	case StateUpsertResolved:
		return "upsert-resolved"
	case StateRulesApplied:
		return "rules-applied"
	case StateFinalized:
		return "finalized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type settings struct {
	log   *slog.Logger
	store Store
}

// Option configures a Definition or Translator.
type Option func(*settings)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithStore sets the persistence staging area of a reverse translation.
func WithStore(st Store) Option {
	return func(s *settings) { s.store = st }
}

func newSettings(opts []Option) settings {
	s := settings{log: slog.Default()}
	for _, o := range opts {
		o(&s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Definition accumulates the rules of one translation of one source object
// and executes them on Finalize. A Definition is single use and is not safe
// for concurrent use.
type Definition[S, T any] struct {
	ctx       context.Context
	src       S
	dir       Direction
	newTarget func() T
	settings  settings

	state    State
	rules    RuleSet[S, T]
	defaults RuleSet[S, T]
	noAuto   bool

	upsert     upsert[S, T]
	versioning *versioning[T]

	plan   *plan
	target T
	res    Resolution
	err    error
}

// Begin opens a definition bound to src and dir. newTarget constructs the
// forward result and, in the reverse direction, the entity allocated when
// the upsert resolver decides to create.
func Begin[S, T any](ctx context.Context, src S, dir Direction, newTarget func() T, opts ...Option) *Definition[S, T] {
	return &Definition[S, T]{
		ctx:       ctx,
		src:       src,
		dir:       dir,
		newTarget: newTarget,
		settings:  newSettings(opts),
		state:     StateOpen,
		plan:      newPlan(),
	}
}

// State reports the current lifecycle state.
func (d *Definition[S, T]) State() State { return d.state }

// Direction reports the translation direction.
func (d *Definition[S, T]) Direction() Direction { return d.dir }

// Context returns the context the definition was opened with.
func (d *Definition[S, T]) Context() context.Context { return d.ctx }

// Source returns the bound source object.
func (d *Definition[S, T]) Source() S { return d.src }

// accumulating guards builder methods. The first builder fault is kept and
// reported by Finalize.
func (d *Definition[S, T]) accumulating(op string) bool {
	if d.err != nil {
		return false
	}
	switch d.state {
	case StateOpen:
		d.state = StateAccumulating
		return true
	case StateAccumulating:
		return true
	}
	d.err = fmt.Errorf("%s in state %s: %w", op, d.state, ErrState)
	return false
}

// Add appends rules in declaration order.
func (d *Definition[S, T]) Add(rules ...Rule[S, T]) *Definition[S, T] {
	if d.accumulating("add rule") {
		d.rules = append(d.rules, rules...)
	}
	return d
}

// Defaults contributes implicit rules that run before the declared ones,
// unless DisableAutoApply is called.
func (d *Definition[S, T]) Defaults(rs RuleSet[S, T]) *Definition[S, T] {
	if d.accumulating("set defaults") {
		d.defaults = append(d.defaults, rs...)
	}
	return d
}

// DisableAutoApply drops the default rules so every rule must be declared
// explicitly.
func (d *Definition[S, T]) DisableAutoApply() *Definition[S, T] {
	if d.accumulating("disable auto apply") {
		d.noAuto = true
	}
	return d
}

// Prefetch hints which related subtrees the store should load before the
// match predicate runs. Hints never change the result.
func (d *Definition[S, T]) Prefetch(paths ...string) *Definition[S, T] {
	if d.accumulating("prefetch") {
		d.upsert.prefetch = append(d.upsert.prefetch, paths...)
	}
	return d
}

// MarkNewWhen declares a create branch: when pred holds the target is a new
// entity with a freshly allocated id and no lookup happens.
func (d *Definition[S, T]) MarkNewWhen(pred func(S) bool) *Definition[S, T] {
	if !d.reverseOnly("mark new") {
		return d
	}
	if pred == nil {
		d.err = configErrorf("mark new: nil predicate")
		return d
	}
	d.upsert.branches = append(d.upsert.branches, branch[S, T]{when: pred})
	return d
}

// MarkExistingWhen declares an update branch: when pred holds, match locates
// the existing entity among staged and persisted rows. fallback decides what
// happens when nothing matches.
func (d *Definition[S, T]) MarkExistingWhen(pred func(S) bool, match func(S, T) bool, fallback Fallback) *Definition[S, T] {
	if !d.reverseOnly("mark existing") {
		return d
	}
	if pred == nil || match == nil {
		d.err = configErrorf("mark existing: nil predicate or match")
		return d
	}
	switch fallback {
	case CreateOnMiss, FailOnMiss:
	default:
		d.err = configErrorf("mark existing: unknown fallback %s", fallback)
		return d
	}
	d.upsert.branches = append(d.upsert.branches, branch[S, T]{
		when:     pred,
		existing: true,
		match:    match,
		fallback: fallback,
	})
	return d
}

// NarrowBy supplies equality keys a store may push into its query before
// evaluating the match predicate.
func (d *Definition[S, T]) NarrowBy(keys func(S) map[string]any) *Definition[S, T] {
	if d.reverseOnly("narrow by") {
		d.upsert.narrow = keys
	}
	return d
}

// AttachVersioning declares the target a version row. newRoot builds the
// root entity when the resolver creates a new version.
func (d *Definition[S, T]) AttachVersioning(newRoot func(version T) Entity) *Definition[S, T] {
	if d.reverseOnly("attach versioning") {
		d.versioning = &versioning[T]{newRoot: newRoot}
	}
	return d
}

func (d *Definition[S, T]) reverseOnly(op string) bool {
	if !d.accumulating(op) {
		return false
	}
	if d.dir != Reverse {
		d.err = configErrorf("%s: only valid in the reverse direction", op)
		return false
	}
	return true
}

// Resolution reports how the reverse target was obtained.
func (d *Definition[S, T]) Resolution() Resolution { return d.res }

// Ops returns the staged operations of a finalized reverse translation.
func (d *Definition[S, T]) Ops() []Op {
	if d.state != StateFinalized {
		return nil
	}
	return d.plan.snapshot()
}

// Finalize applies the rules and returns the target. In the reverse direction
// it stages the resolved entity and every reconciled child on the store, but
// only after all rules succeeded: on error nothing is staged. It never commits.
func (d *Definition[S, T]) Finalize() (result T, err error) {
	var zero T

	if d.state == StateFinalized || d.state == StateRulesApplied || d.state == StateUpsertResolved {
		return zero, fmt.Errorf("finalize in state %s: %w", d.state, ErrState)
	}
	if d.err != nil {
		d.state = StateFinalized
		return zero, d.err
	}
	if d.newTarget == nil {
		d.state = StateFinalized
		return zero, configErrorf("no target constructor")
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = zero, recovered(r)
		}
		d.state = StateFinalized
		if err != nil {
			d.settings.log.DebugContext(d.ctx, "translation aborted",
				slog.String("direction", d.dir.String()),
				slog.String("error", err.Error()))
		}
	}()

	d.state = StateAccumulating

	x := &exec{
		ctx:   d.ctx,
		dir:   d.dir,
		store: d.settings.store,
		plan:  d.plan,
		log:   d.settings.log,
	}

	var rules RuleSet[S, T]
	if d.noAuto {
		rules = slices.Clone(d.rules)
	} else {
		rules = RuleSet[S, T](slices.Concat(d.defaults, d.rules))
	}

	switch d.dir {
	case Forward:
		return d.forward(x, rules)
	case Reverse:
		return d.reverse(x, rules)
	}
	return zero, configErrorf("unknown direction %s", d.dir)
}

func (d *Definition[S, T]) forward(x *exec, rules RuleSet[S, T]) (T, error) {
	var zero T

	target := d.newTarget()
	if err := applyRules(x, rules, d.src, target); err != nil {
		return zero, err
	}
	d.state = StateRulesApplied
	d.target = target
	return target, nil
}

func (d *Definition[S, T]) reverse(x *exec, rules RuleSet[S, T]) (T, error) {
	var zero T

	if x.store == nil {
		return zero, configErrorf("reverse translation without a store")
	}

	kind, err := d.kind()
	if err != nil {
		return zero, err
	}

	target, res, err := d.upsert.resolve(x, kind, d.src, d.newTarget)
	if err != nil {
		return zero, err
	}
	d.res = res
	d.state = StateUpsertResolved

	if d.versioning != nil {
		if err := d.versioning.link(x, target, res); err != nil {
			return zero, err
		}
	}

	entity := any(target).(Entity)
	if res == Created {
		d.plan.add(ActionInsert, entity)
	} else {
		d.plan.add(ActionUpdate, entity)
	}

	if err := applyRules(x.withOwner(entity), rules, d.src, target); err != nil {
		return zero, err
	}

	if d.versioning != nil {
		if err := d.versioning.verify(x, target); err != nil {
			return zero, err
		}
	}
	d.state = StateRulesApplied

	if err := d.plan.flush(d.ctx, x.store); err != nil {
		return zero, err
	}

	d.settings.log.DebugContext(d.ctx, "translation staged",
		slog.String("kind", kind),
		slog.String("resolution", res.String()),
		slog.Int("inserts", d.plan.count(ActionInsert)),
		slog.Int("updates", d.plan.count(ActionUpdate)),
		slog.Int("deletes", d.plan.count(ActionDelete)),
	)

	d.target = target
	return target, nil
}

func (d *Definition[S, T]) kind() (string, error) {
	sample, ok := any(d.newTarget()).(Entity)
	if !ok {
		var t T
		return "", configErrorf("reverse target %T does not implement mapping.Entity", t)
	}
	return sample.EntityKind(), nil
}
