package dictionary

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// GetEntry returns a version with all of its content.
func (s *Service) GetEntry(ctx context.Context, versionID uuid.UUID) (*transfer.EntryVersion, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	uow := s.open()
	defer uow.Discard()

	v, err := loadVersion(ctx, uow, userID, versionID)
	if err != nil {
		return nil, err
	}
	out, err := s.versions.ToTransferObject(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("translate version %s: %w", versionID, err)
	}
	return out, nil
}

// ListEntries returns the latest version of each entry of the caller as a
// summary row, newest entry first.
func (s *Service) ListEntries(ctx context.Context, limit int) ([]*transfer.EntrySummary, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 || limit > s.cfg.ExportMaxEntries {
		limit = s.cfg.ExportMaxEntries
	}

	uow := s.open()
	defer uow.Discard()

	versions, err := latestVersions(ctx, uow, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*transfer.EntrySummary, 0, len(versions))
	for _, v := range versions {
		// Only the count of senses is needed.
		if v.Senses, err = children[*domain.Sense](ctx, uow, domain.KindSense, v.ID); err != nil {
			return nil, err
		}
		row, err := s.summaries.ToTransferObject(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("translate summary %s: %w", v.ID, err)
		}
		out = append(out, row)
	}
	return out, nil
}
