package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/config"
	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

// UnitOfWork is the staging area of one operation. Both the in-memory and
// the PostgreSQL stores provide one.
type UnitOfWork interface {
	mapping.Store
	Get(ctx context.Context, kind string, id uuid.UUID) (mapping.Entity, error)
	Pending() []mapping.Op
	Commit(ctx context.Context) error
	Discard()
}

// Opener starts a unit of work.
type Opener func() UnitOfWork

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type versionTranslator interface {
	Stage(ctx context.Context, store mapping.Store, d *transfer.EntryVersion) (*domain.EntryVersion, []mapping.Op, error)
	ToTransferObject(ctx context.Context, e *domain.EntryVersion) (*transfer.EntryVersion, error)
}

type summaryTranslator interface {
	ToTransferObject(ctx context.Context, e *domain.EntryVersion) (*transfer.EntrySummary, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the dictionary operations on top of the translators.
type Service struct {
	log       *slog.Logger
	tx        txManager
	open      Opener
	versions  versionTranslator
	summaries summaryTranslator
	cfg       config.DictionaryConfig
}

// NewService creates a new Dictionary service.
func NewService(
	logger *slog.Logger,
	tx txManager,
	open Opener,
	versions versionTranslator,
	summaries summaryTranslator,
	cfg config.DictionaryConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "dictionary"),
		tx:        tx,
		open:      open,
		versions:  versions,
		summaries: summaries,
		cfg:       cfg,
	}
}

// ---------------------------------------------------------------------------
// Graph loading
// ---------------------------------------------------------------------------

// loadVersion reads a version with its senses, their translations and
// examples, and its pronunciations. Versions of other users are reported as
// not found.
func loadVersion(ctx context.Context, uow UnitOfWork, userID, versionID uuid.UUID) (*domain.EntryVersion, error) {
	v, err := get[*domain.EntryVersion](ctx, uow, domain.KindEntryVersion, versionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, uow, userID, v.EntryID); err != nil {
		return nil, err
	}

	if v.Senses, err = children[*domain.Sense](ctx, uow, domain.KindSense, v.ID); err != nil {
		return nil, err
	}
	for _, s := range v.Senses {
		if s.Translations, err = children[*domain.Translation](ctx, uow, domain.KindTranslation, s.ID); err != nil {
			return nil, err
		}
		if s.Examples, err = children[*domain.Example](ctx, uow, domain.KindExample, s.ID); err != nil {
			return nil, err
		}
	}
	if v.Pronunciations, err = children[*domain.Pronunciation](ctx, uow, domain.KindPronunciation, v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

func checkOwner(ctx context.Context, uow UnitOfWork, userID, entryID uuid.UUID) error {
	entry, err := get[*domain.Entry](ctx, uow, domain.KindEntry, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return fmt.Errorf("entry %s: %w", entryID, domain.ErrNotFound)
	}
	return nil
}

// latestVersions returns the newest version of every entry of the user,
// most recently created entry first, at most limit of them.
func latestVersions(ctx context.Context, uow UnitOfWork, userID uuid.UUID, limit int) ([]*domain.EntryVersion, error) {
	entries, err := uow.FindExisting(ctx, mapping.Query{
		Kind: domain.KindEntry,
		Keys: map[string]any{"user_id": userID},
		Match: func(e mapping.Entity) bool {
			en, ok := e.(*domain.Entry)
			return ok && en.UserID == userID
		},
	})
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b mapping.Entity) int {
		return b.(*domain.Entry).CreatedAt.Compare(a.(*domain.Entry).CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]*domain.EntryVersion, 0, len(entries))
	for _, e := range entries {
		entryID := e.EntityID()
		versions, err := uow.FindExisting(ctx, mapping.Query{
			Kind: domain.KindEntryVersion,
			Keys: map[string]any{"entry_id": entryID},
			Match: func(e mapping.Entity) bool {
				v, ok := e.(*domain.EntryVersion)
				return ok && v.EntryID == entryID
			},
		})
		if err != nil {
			return nil, fmt.Errorf("find versions of %s: %w", entryID, err)
		}
		if len(versions) == 0 {
			continue
		}
		latest := slices.MaxFunc(versions, func(a, b mapping.Entity) int {
			return a.(*domain.EntryVersion).Number - b.(*domain.EntryVersion).Number
		})
		out = append(out, latest.(*domain.EntryVersion))
	}
	return out, nil
}

func get[T mapping.Entity](ctx context.Context, uow UnitOfWork, kind string, id uuid.UUID) (T, error) {
	var zero T
	e, err := uow.Get(ctx, kind, id)
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", kind, err)
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("get %s: unexpected %T", kind, e)
	}
	return t, nil
}

func children[T mapping.Entity](ctx context.Context, uow UnitOfWork, kind string, parentID uuid.UUID) ([]T, error) {
	rows, err := uow.FindChildren(ctx, kind, parentID)
	if err != nil {
		return nil, fmt.Errorf("load %s of %s: %w", kind, parentID, err)
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		t, ok := r.(T)
		if !ok {
			return nil, fmt.Errorf("load %s: unexpected %T", kind, r)
		}
		out = append(out, t)
	}
	return out, nil
}

// counts tallies staged operations by action.
func counts(ops []mapping.Op) (inserted, updated, deleted int) {
	for _, op := range ops {
		switch op.Action {
		case mapping.ActionInsert:
			inserted++
		case mapping.ActionUpdate:
			updated++
		case mapping.ActionDelete:
			deleted++
		}
	}
	return inserted, updated, deleted
}
