package mapping

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Action is a staged persistence operation.
type Action int

const (
	actionNone Action = iota
	ActionInsert
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Op is one staged operation.
type Op struct {
	Action Action
	Entity Entity
}

type opKey struct {
	kind string
	id   uuid.UUID
}

// plan accumulates operations for one translation. Nothing reaches the Store
// until flush, so a fault anywhere leaves the staging area untouched.
type plan struct {
	ops   []Op
	index map[opKey]int
}

func newPlan() *plan {
	return &plan{index: make(map[opKey]int)}
}

func (p *plan) add(a Action, e Entity) {
	k := opKey{kind: e.EntityKind(), id: e.EntityID()}
	if i, ok := p.index[k]; ok {
		prev := p.ops[i].Action
		switch {
		case prev == ActionInsert && a == ActionUpdate:
			// Inserted in this plan: stays an insert.
			p.ops[i].Entity = e
		case prev == ActionInsert && a == ActionDelete:
			p.ops[i].Action = actionNone
		default:
			p.ops[i] = Op{Action: a, Entity: e}
		}
		return
	}
	p.index[k] = len(p.ops)
	p.ops = append(p.ops, Op{Action: a, Entity: e})
}

// created reports whether e is inserted by this plan.
func (p *plan) created(e Entity) bool {
	i, ok := p.index[opKey{kind: e.EntityKind(), id: e.EntityID()}]
	return ok && p.ops[i].Action == ActionInsert
}

// snapshot returns the effective operations in staging order.
func (p *plan) snapshot() []Op {
	out := make([]Op, 0, len(p.ops))
	for _, op := range p.ops {
		if op.Action != actionNone {
			out = append(out, op)
		}
	}
	return out
}

func (p *plan) count(a Action) int {
	n := 0
	for _, op := range p.ops {
		if op.Action == a {
			n++
		}
	}
	return n
}

func (p *plan) flush(ctx context.Context, s Store) (err error) {
	if c, ok := s.(Checkpointer); ok {
		rewind := c.Checkpoint()
		defer func() {
			if err != nil {
				rewind()
			}
		}()
	}

	for _, op := range p.snapshot() {
		var err error
		switch op.Action {
		case ActionInsert:
			err = s.StageInsert(ctx, op.Entity)
		case ActionUpdate:
			err = s.StageUpdate(ctx, op.Entity)
		case ActionDelete:
			err = s.StageDelete(ctx, op.Entity)
		}
		if err != nil {
			return fmt.Errorf("stage %s %s %s: %w", op.Action, op.Entity.EntityKind(), op.Entity.EntityID(), err)
		}
	}
	return nil
}
