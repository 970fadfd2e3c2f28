package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/platform/logger"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// Verify interface compliance at compile time
var _ BatchReviewService = (*batchReviewServiceImpl)(nil)

// batchReviewServiceImpl implements the BatchReviewService interface.
type batchReviewServiceImpl struct {
	db             *sql.DB
	batchStore     store.GenerationBatchStore
	flashcardStore store.FlashcardStore
	logger         *slog.Logger
}

// NewBatchReviewService creates a new BatchReviewService implementation.
func NewBatchReviewService(
	db *sql.DB,
	batchStore store.GenerationBatchStore,
	flashcardStore store.FlashcardStore,
	logger *slog.Logger,
) BatchReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if batchStore == nil {
		panic("batchStore cannot be nil")
	}
	if flashcardStore == nil {
		panic("flashcardStore cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &batchReviewServiceImpl{
		db:             db,
		batchStore:     batchStore,
		flashcardStore: flashcardStore,
		logger:         logger.With(slog.String("component", "batch_review_service")),
	}
}

// ReviewBatch implements BatchReviewService.ReviewBatch.
// Every check and every write runs inside one transaction, so a failure at
// any point leaves the batch pending and the owner's cards untouched.
func (s *batchReviewServiceImpl) ReviewBatch(
	ctx context.Context,
	ownerID uuid.UUID,
	batchID uuid.UUID,
	decisions []domain.ReviewDecision,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing batch review",
		slog.String("user_id", ownerID.String()),
		slog.String("batch_id", batchID.String()),
		slog.Int("decision_count", len(decisions)))

	var result *ReviewResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		batchStore := s.batchStore.WithTx(tx)
		flashcardStore := s.flashcardStore.WithTx(tx)

		// 1. The batch must exist and belong to the caller. The lookup is
		// filtered by owner, so a foreign batch reads as not found.
		batch, err := batchStore.GetByIDForOwner(ctx, batchID, ownerID)
		if err != nil {
			if errors.Is(err, store.ErrBatchNotFound) {
				log.Debug("batch not found for review",
					slog.String("user_id", ownerID.String()),
					slog.String("batch_id", batchID.String()))
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to get batch: %w", err)
		}

		// 2. A batch is reviewed at most once.
		if batch.IsReviewed() {
			log.Debug("batch already reviewed",
				slog.String("batch_id", batchID.String()))
			return ErrBatchAlreadyReviewed
		}

		// 3. Any malformed decision fails the whole request before a write.
		if err := validateDecisions(decisions, batch.TotalCardsGenerated); err != nil {
			log.Warn("invalid review decisions",
				slog.String("batch_id", batchID.String()),
				slog.String("error", err.Error()))
			return err
		}

		accepted, rejected, edited := countDecisions(decisions)

		// 4. Capacity. The store re-checks under a row lock at insert time;
		// this early check keeps a doomed review from claiming the batch.
		toCreate := accepted + edited
		if toCreate > 0 {
			count, err := flashcardStore.CountByOwner(ctx, ownerID)
			if err != nil {
				return fmt.Errorf("failed to count flashcards: %w", err)
			}
			if count+toCreate > domain.MaxFlashcardsPerUser {
				log.Debug("review rejected by capacity ceiling",
					slog.String("user_id", ownerID.String()),
					slog.Int("current_count", count),
					slog.Int("requested", toCreate))
				return store.NewFlashcardLimitError(count)
			}
		}

		// Claim the batch before inserting cards; the conditional update
		// fails when a concurrent review got here first.
		err = batchStore.FinalizeReview(ctx, batchID, ownerID, accepted, rejected, edited)
		if err != nil {
			if errors.Is(err, store.ErrBatchAlreadyReviewed) {
				log.Debug("lost review claim to a concurrent request",
					slog.String("batch_id", batchID.String()))
				return ErrBatchAlreadyReviewed
			}
			return fmt.Errorf("failed to finalize batch review: %w", err)
		}

		cards, err := buildFlashcards(ownerID, batchID, decisions)
		if err != nil {
			return err
		}

		if len(cards) > 0 {
			if err := flashcardStore.CreateMany(ctx, cards); err != nil {
				// A capacity failure here rolls the claim back with the
				// rest of the transaction.
				if errors.Is(err, store.ErrFlashcardLimitExceeded) {
					return err
				}
				return fmt.Errorf("failed to create flashcards: %w", err)
			}
		}

		result = &ReviewResult{
			BatchID:           batchID,
			CardsAccepted:     accepted,
			CardsRejected:     rejected,
			CardsEdited:       edited,
			CreatedFlashcards: cards,
		}
		return nil
	})

	if err != nil {
		// Service sentinels and the capacity error pass through untouched
		// so the HTTP layer can map them.
		if errors.Is(err, ErrBatchNotFound) ||
			errors.Is(err, ErrBatchAlreadyReviewed) ||
			errors.Is(err, ErrInvalidDecision) ||
			errors.Is(err, store.ErrFlashcardLimitExceeded) {
			return nil, err
		}

		log.Error("failed to review batch",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()),
			slog.String("batch_id", batchID.String()))
		return nil, NewReviewBatchError("transaction failed", err)
	}

	log.Info("batch review completed",
		slog.String("user_id", ownerID.String()),
		slog.String("batch_id", batchID.String()),
		slog.Int("cards_accepted", result.CardsAccepted),
		slog.Int("cards_rejected", result.CardsRejected),
		slog.Int("cards_edited", result.CardsEdited),
		slog.Int("cards_created", len(result.CreatedFlashcards)))

	return result, nil
}

// validateDecisions checks a review submission against a batch's candidate
// count: the list must be non-empty, every decision well formed, indices
// unique and in range, and accept/edit text within the flashcard bounds.
func validateDecisions(decisions []domain.ReviewDecision, totalCards int) error {
	if len(decisions) == 0 {
		return ErrNoDecisions
	}

	seen := make(map[int]struct{}, len(decisions))
	for i, d := range decisions {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: decision %d: %v", ErrInvalidDecision, i, err)
		}

		if d.Index >= totalCards {
			return fmt.Errorf("%w: decision %d targets index %d but the batch generated %d candidates",
				ErrDecisionIndexOutOfRange, i, d.Index, totalCards)
		}

		if _, dup := seen[d.Index]; dup {
			return fmt.Errorf("%w: index %d", ErrDuplicateDecisionIndex, d.Index)
		}
		seen[d.Index] = struct{}{}

		if d.CreatesFlashcard() {
			if err := domain.ValidateFrontText(strings.TrimSpace(d.FrontText)); err != nil {
				return fmt.Errorf("%w: decision %d: %v", ErrInvalidDecision, i, err)
			}
			if err := domain.ValidateBackText(strings.TrimSpace(d.BackText)); err != nil {
				return fmt.Errorf("%w: decision %d: %v", ErrInvalidDecision, i, err)
			}
		}
	}

	return nil
}

// countDecisions tallies the submission by action. Candidates without a
// decision appear in no tally.
func countDecisions(decisions []domain.ReviewDecision) (accepted, rejected, edited int) {
	for _, d := range decisions {
		switch d.Action {
		case domain.ReviewActionAccept:
			accepted++
		case domain.ReviewActionReject:
			rejected++
		case domain.ReviewActionEdit:
			edited++
		}
	}
	return accepted, rejected, edited
}

// buildFlashcards turns the accept and edit decisions into flashcards for the
// owner, in decision order. Rejected candidates produce nothing.
func buildFlashcards(
	ownerID, batchID uuid.UUID,
	decisions []domain.ReviewDecision,
) ([]*domain.Flashcard, error) {
	cards := make([]*domain.Flashcard, 0, len(decisions))
	for i, d := range decisions {
		if !d.CreatesFlashcard() {
			continue
		}

		card, err := domain.NewGeneratedFlashcard(
			ownerID,
			batchID,
			d.FrontText,
			d.BackText,
			d.Action == domain.ReviewActionEdit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build flashcard for decision %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
