package mapping

import (
	"context"
	"fmt"
)

// Pair declares the rules of one (entity, transfer object) pair. Either rule
// set may be nil: that direction then reports ErrNotImplemented.
type Pair[E, D any] struct {
	Kind        string
	NewEntity   func() E
	NewTransfer func() D

	Forward RuleSet[E, D]
	Reverse RuleSet[D, E]

	// ForwardDefaults and ReverseDefaults are contributed as implicit rules
	// that Prepare may switch off with DisableAutoApply.
	ForwardDefaults RuleSet[E, D]
	ReverseDefaults RuleSet[D, E]

	// Prepare declares the upsert branches, versioning and hints of a reverse
	// translation. It runs before Reverse is added.
	Prepare func(def *Definition[D, E])
}

// Translator is the per-pair facade. It is immutable and safe for
// concurrent use; every call opens its own Definition.
type Translator[E, D any] struct {
	pair Pair[E, D]
	opts []Option
}

// NewTranslator builds a Translator. opts apply to every Definition it opens.
func NewTranslator[E, D any](pair Pair[E, D], opts ...Option) *Translator[E, D] {
	return &Translator[E, D]{pair: pair, opts: opts}
}

// Kind returns the entity kind the translator handles.
func (t *Translator[E, D]) Kind() string { return t.pair.Kind }

// ForwardRules returns a copy of the forward rules for composition.
func (t *Translator[E, D]) ForwardRules() RuleSet[E, D] {
	return t.pair.Forward.Extend()
}

// ReverseRules returns a copy of the reverse rules for composition.
func (t *Translator[E, D]) ReverseRules() RuleSet[D, E] {
	return t.pair.Reverse.Extend()
}

// ToTransferObject translates e without mutating it.
func (t *Translator[E, D]) ToTransferObject(ctx context.Context, e E) (D, error) {
	var zero D
	if t.pair.Forward == nil {
		return zero, fmt.Errorf("%s forward: %w", t.pair.Kind, ErrNotImplemented)
	}

	def := Begin(ctx, e, Forward, t.pair.NewTransfer, t.opts...)
	if t.pair.ForwardDefaults != nil {
		def.Defaults(t.pair.ForwardDefaults)
	}
	def.Add(t.pair.Forward...)

	d, err := def.Finalize()
	if err != nil {
		return zero, fmt.Errorf("%s forward: %w", t.pair.Kind, err)
	}
	return d, nil
}

// ToEntity translates d into an entity and stages it on store together with
// every reconciled child. The caller owns the commit.
func (t *Translator[E, D]) ToEntity(ctx context.Context, store Store, d D) (E, error) {
	e, _, err := t.Stage(ctx, store, d)
	return e, err
}

// Stage is ToEntity that also returns the staged operations.
func (t *Translator[E, D]) Stage(ctx context.Context, store Store, d D) (E, []Op, error) {
	var zero E
	if t.pair.Reverse == nil {
		return zero, nil, fmt.Errorf("%s reverse: %w", t.pair.Kind, ErrNotImplemented)
	}

	opts := append(t.opts[:len(t.opts):len(t.opts)], WithStore(store))
	def := Begin(ctx, d, Reverse, t.pair.NewEntity, opts...)
	if t.pair.ReverseDefaults != nil {
		def.Defaults(t.pair.ReverseDefaults)
	}
	if t.pair.Prepare != nil {
		t.pair.Prepare(def)
	}
	def.Add(t.pair.Reverse...)

	e, err := def.Finalize()
	if err != nil {
		return zero, nil, fmt.Errorf("%s reverse: %w", t.pair.Kind, err)
	}
	return e, def.Ops(), nil
}
