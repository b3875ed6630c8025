package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// errChunkTainted aborts a chunk whose unit of work holds a partial plan.
var errChunkTainted = errors.New("staging area left inconsistent")

// ---------------------------------------------------------------------------
// ImportEntries
// ---------------------------------------------------------------------------

// ImportEntries saves a batch of entries. Items are committed in chunks, one
// transaction per chunk. An item that fails translation is reported and
// skipped; a chunk that fails to commit reports all of its items.
func (s *Service) ImportEntries(ctx context.Context, input ImportInput) (*ImportResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(s.cfg.MaxImportItems); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	seen := make(map[string]bool)

	chunkSize := s.cfg.ImportChunkSize
	if chunkSize <= 0 {
		chunkSize = 50
	}

	for chunkStart := 0; chunkStart < len(input.Items); chunkStart += chunkSize {
		chunkEnd := min(chunkStart+chunkSize, len(input.Items))
		chunk := input.Items[chunkStart:chunkEnd]

		// Per-chunk results are merged only when the chunk commits.
		var (
			chunkImported  int
			chunkUpdated   int
			chunkSkipped   int
			chunkErrors    []ImportError
			chunkSeenTexts []string
		)

		txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			uow := s.open()
			defer uow.Discard()

			for i, item := range chunk {
				lineNumber := chunkStart + i + 1 // 1-based

				skip := func(reason string) {
					chunkErrors = append(chunkErrors, ImportError{
						LineNumber: lineNumber,
						Text:       textOf(item),
						Reason:     reason,
					})
					chunkSkipped++
				}

				if item == nil {
					skip("empty item")
					continue
				}

				if item.VersionID == nil {
					normalized := domain.NormalizeText(item.Text)
					if normalized == "" {
						skip("empty text after normalization")
						continue
					}
					if seen[normalized] {
						skip("duplicate within import")
						continue
					}

					exists, err := s.textExists(txCtx, uow, userID, normalized)
					if err != nil {
						return fmt.Errorf("check duplicate: %w", err)
					}
					seen[normalized] = true
					chunkSeenTexts = append(chunkSeenTexts, normalized)
					if exists {
						skip("entry already exists")
						continue
					}
				}

				before := len(uow.Pending())
				v, ops, err := s.stage(txCtx, uow, item)
				if err != nil {
					if len(uow.Pending()) != before {
						return fmt.Errorf("line %d: %w: %w", lineNumber, errChunkTainted, err)
					}
					if isItemFault(err) {
						skip(err.Error())
						continue
					}
					return fmt.Errorf("line %d: %w", lineNumber, err)
				}

				if created(ops, v) {
					chunkImported++
				} else {
					chunkUpdated++
				}
			}

			return uow.Commit(txCtx)
		})

		if txErr != nil {
			// Chunk failed: drop its bookkeeping and report every item.
			for _, text := range chunkSeenTexts {
				delete(seen, text)
			}
			for i, item := range chunk {
				result.Errors = append(result.Errors, ImportError{
					LineNumber: chunkStart + i + 1,
					Text:       textOf(item),
					Reason:     fmt.Sprintf("chunk failed: %v", txErr),
				})
			}
			result.Skipped += len(chunk)
			s.log.WarnContext(ctx, "import chunk failed",
				slog.Int("chunk_start", chunkStart+1),
				slog.Int("chunk_end", chunkEnd),
				slog.String("error", txErr.Error()),
			)
			continue
		}

		result.Imported += chunkImported
		result.Updated += chunkUpdated
		result.Skipped += chunkSkipped
		result.Errors = append(result.Errors, chunkErrors...)
	}

	s.log.InfoContext(ctx, "import completed",
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// textExists reports whether the user already has an entry version with the
// given normalized text.
func (s *Service) textExists(ctx context.Context, uow UnitOfWork, userID uuid.UUID, normalized string) (bool, error) {
	found, err := uow.FindExisting(ctx, mapping.Query{
		Kind: domain.KindEntryVersion,
		Keys: map[string]any{"text_normalized": normalized},
		Match: func(e mapping.Entity) bool {
			v, ok := e.(*domain.EntryVersion)
			return ok && v.TextNormalized == normalized
		},
	})
	if err != nil {
		return false, err
	}
	for _, e := range found {
		err := checkOwner(ctx, uow, userID, e.(*domain.EntryVersion).EntryID)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, domain.ErrNotFound):
		default:
			return false, err
		}
	}
	return false, nil
}

// isItemFault reports errors caused by the item itself rather than by the
// store.
func isItemFault(err error) bool {
	var re *mapping.RuleError
	return errors.As(err, &re) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}

func textOf(item *transfer.EntryVersion) string {
	if item == nil {
		return ""
	}
	return item.Text
}
