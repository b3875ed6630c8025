package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// SaveEntry
// ---------------------------------------------------------------------------

// SaveEntry translates in into entities, stages the result and commits it.
// A transfer object without a version id creates an entry with its first
// version; one with an id updates that version in place.
func (s *Service) SaveEntry(ctx context.Context, in *transfer.EntryVersion) (*SaveResult, error) {
	var result *SaveResult

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		uow := s.open()
		defer uow.Discard()

		v, ops, err := s.stage(txCtx, uow, in)
		if err != nil {
			return err
		}
		if err := uow.Commit(txCtx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		ins, upd, del := counts(ops)
		result = &SaveResult{
			EntryID:   v.EntryID,
			VersionID: v.ID,
			Number:    v.Number,
			Created:   created(ops, v),
			Inserted:  ins,
			Updated:   upd,
			Deleted:   del,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entry saved",
		slog.String("entry_id", result.EntryID.String()),
		slog.String("version_id", result.VersionID.String()),
		slog.Bool("created", result.Created),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
		slog.Int("deleted", result.Deleted),
	)
	return result, nil
}

// PlanEntry runs the same translation as SaveEntry and returns the staged
// operations without committing them.
func (s *Service) PlanEntry(ctx context.Context, in *transfer.EntryVersion) (*Plan, error) {
	uow := s.open()
	defer uow.Discard()

	v, ops, err := s.stage(ctx, uow, in)
	if err != nil {
		return nil, err
	}
	return &Plan{
		EntryID:   v.EntryID,
		VersionID: v.ID,
		Created:   created(ops, v),
		Ops:       ops,
	}, nil
}

// stage validates in, checks that an addressed version belongs to the
// caller and translates it onto uow.
func (s *Service) stage(ctx context.Context, uow UnitOfWork, in *transfer.EntryVersion) (*domain.EntryVersion, []mapping.Op, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, nil, domain.ErrUnauthorized
	}

	if err := validateVersion(in, s.cfg.MaxSensesPerEntry); err != nil {
		return nil, nil, err
	}
	if in.Language == "" {
		c := *in
		c.Language = s.cfg.DefaultLanguage
		in = &c
	}

	if in.VersionID != nil {
		existing, err := get[*domain.EntryVersion](ctx, uow, domain.KindEntryVersion, *in.VersionID)
		switch {
		case err == nil:
			if err := checkOwner(ctx, uow, userID, existing.EntryID); err != nil {
				return nil, nil, err
			}
		case errors.Is(err, domain.ErrNotFound):
			// Stale ids fall through to a new entry.
		default:
			return nil, nil, err
		}
	}

	v, ops, err := s.versions.Stage(ctx, uow, in)
	if err != nil {
		return nil, nil, err
	}
	return v, ops, nil
}

// created reports whether ops insert the version itself.
func created(ops []mapping.Op, v *domain.EntryVersion) bool {
	for _, op := range ops {
		if op.Action == mapping.ActionInsert && op.Entity.EntityKind() == domain.KindEntryVersion && op.Entity.EntityID() == v.ID {
			return true
		}
	}
	return false
}
