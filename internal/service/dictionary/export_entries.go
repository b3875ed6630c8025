package dictionary

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// ExportEntries
// ---------------------------------------------------------------------------

// ExportEntries returns the named versions as transfer objects. Without ids
// it exports the latest version of the most recent entries of the user, up
// to the configured limit, oldest first.
func (s *Service) ExportEntries(ctx context.Context, versionIDs []uuid.UUID) (*ExportResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if len(versionIDs) > s.cfg.ExportMaxEntries {
		return nil, domain.NewValidationError("ids", fmt.Sprintf("too many (max %d)", s.cfg.ExportMaxEntries))
	}

	uow := s.open()
	defer uow.Discard()

	if len(versionIDs) == 0 {
		latest, err := latestVersions(ctx, uow, userID, s.cfg.ExportMaxEntries)
		if err != nil {
			return nil, fmt.Errorf("find entries for export: %w", err)
		}
		// Oldest first, so that importing the file replays creation order.
		for _, v := range slices.Backward(latest) {
			versionIDs = append(versionIDs, v.ID)
		}
	}

	items := make([]*transfer.EntryVersion, 0, len(versionIDs))
	for _, id := range versionIDs {
		v, err := loadVersion(ctx, uow, userID, id)
		if err != nil {
			return nil, err
		}
		item, err := s.versions.ToTransferObject(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("translate version %s: %w", id, err)
		}
		items = append(items, item)
	}

	return &ExportResult{
		Items:      items,
		ExportedAt: time.Now(),
	}, nil
}
