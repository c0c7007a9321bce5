package service

import (
	"context"
	"fmt"
	"math/rand"

	"kudos/config"
	"kudos/events"
	"kudos/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// likeService implements the LikeService interface. It is the only path by
// which points move between users: the eligibility checks, the three balance
// mutations and the like append all commit or roll back as one transaction.
type likeService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewLikeService creates a new like service
func NewLikeService(uowFactory UnitOfWorkFactory, cfg *config.Config) LikeService {
	return &likeService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// CreateLike processes a like against a card:
//
//  1. the card row is locked, serializing concurrent likes on the same card
//  2. sender and recipients are rejected with ErrSelfInteraction
//  3. the like cap is checked under the card lock
//  4. the actor is debited, the card sender is credited, and one recipient
//     chosen uniformly at random receives the lifetime credit
//  5. the like is appended with the lottery outcome
//
// Any failure rolls the whole unit back; no partial transfer is ever visible.
// A non-nil idempotency key that was already recorded short-circuits to the
// stored like without charging anyone a second time.
func (s *likeService) CreateLike(ctx context.Context, cardID, actorID int64, idempotencyKey *uuid.UUID) (*models.LikeResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if idempotencyKey != nil {
		existing, err := uow.LikeRepository().GetByIdempotencyKey(ctx, *idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			return s.replayResult(ctx, uow, existing)
		}
	}

	card, err := uow.CardRepository().GetByIDForUpdate(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("card %d: %w", cardID, ErrCardNotFound)
	}

	if card.IsParticipant(actorID) {
		return nil, fmt.Errorf("user %d on card %d: %w", actorID, cardID, ErrSelfInteraction)
	}

	// The card row lock is held, so this count cannot race a concurrent insert
	count, err := uow.LikeRepository().CountByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	if count >= s.cfg.MaxLikesPerCard {
		return nil, fmt.Errorf("card %d has %d likes: %w", cardID, count, ErrLikeLimitReached)
	}

	actor, err := uow.UserRepository().GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("user %d: %w", actorID, ErrUserNotFound)
	}

	sender, err := uow.UserRepository().GetByID(ctx, card.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card sender: %w", err)
	}
	if sender == nil {
		return nil, fmt.Errorf("user %d: %w", card.SenderID, ErrUserNotFound)
	}

	// Lottery: exactly one recipient receives the lifetime credit, chosen
	// independently per like
	recipients := card.Recipients()
	beneficiaryID := recipients[rand.Intn(len(recipients))]

	beneficiary, err := uow.UserRepository().GetByID(ctx, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}
	if beneficiary == nil {
		return nil, fmt.Errorf("user %d: %w", beneficiaryID, ErrUserNotFound)
	}

	if err := uow.UserRepository().DeductBalance(ctx, actorID, s.cfg.LikeCost); err != nil {
		return nil, fmt.Errorf("failed to debit actor: %w", err)
	}
	if err := uow.UserRepository().AddBalance(ctx, card.SenderID, s.cfg.SenderCredit); err != nil {
		return nil, fmt.Errorf("failed to credit sender: %w", err)
	}
	if err := uow.UserRepository().AddLifetimeReceived(ctx, beneficiaryID, s.cfg.LifetimeCredit); err != nil {
		return nil, fmt.Errorf("failed to credit beneficiary: %w", err)
	}

	like := &models.Like{
		CardID:         cardID,
		ActorID:        actorID,
		BeneficiaryID:  beneficiaryID,
		PointsDebited:  int(s.cfg.LikeCost),
		IdempotencyKey: idempotencyKey,
	}
	if err := uow.LikeRepository().Create(ctx, like); err != nil {
		return nil, fmt.Errorf("failed to create like: %w", err)
	}

	if err := s.recordHistory(ctx, uow, like, card, actor, sender, beneficiary); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.LikeCreatedEvent{
		LikeID:        like.ID,
		CardID:        cardID,
		ActorID:       actorID,
		SenderID:      card.SenderID,
		BeneficiaryID: beneficiaryID,
		PointsDebited: s.cfg.LikeCost,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"likeID":      like.ID,
		"cardID":      cardID,
		"actorID":     actorID,
		"beneficiary": beneficiaryID,
	}).Debug("Like processed")

	return &models.LikeResult{
		Like:                like,
		ActorBalance:        actor.WeeklyBalance - s.cfg.LikeCost,
		SenderBalance:       sender.WeeklyBalance + s.cfg.SenderCredit,
		BeneficiaryLifetime: beneficiary.LifetimeReceived + s.cfg.LifetimeCredit,
		Replayed:            false,
	}, nil
}

// recordHistory writes one audit row per balance mutation of the like
func (s *likeService) recordHistory(ctx context.Context, uow UnitOfWork, like *models.Like, card *models.Card, actor, sender, beneficiary *models.User) error {
	likeID := like.ID
	relatedType := models.RelatedTypeLike

	entries := []*models.BalanceHistory{
		{
			UserID:          actor.ID,
			BalanceBefore:   actor.WeeklyBalance,
			BalanceAfter:    actor.WeeklyBalance - s.cfg.LikeCost,
			ChangeAmount:    -s.cfg.LikeCost,
			TransactionType: models.TransactionTypeLikeDebit,
			TransactionMetadata: map[string]any{
				"card_id":   card.ID,
				"sender_id": card.SenderID,
			},
			RelatedID:   &likeID,
			RelatedType: &relatedType,
		},
		{
			UserID:          sender.ID,
			BalanceBefore:   sender.WeeklyBalance,
			BalanceAfter:    sender.WeeklyBalance + s.cfg.SenderCredit,
			ChangeAmount:    s.cfg.SenderCredit,
			TransactionType: models.TransactionTypeLikeCredit,
			TransactionMetadata: map[string]any{
				"card_id":  card.ID,
				"actor_id": actor.ID,
			},
			RelatedID:   &likeID,
			RelatedType: &relatedType,
		},
		{
			UserID:          beneficiary.ID,
			BalanceBefore:   beneficiary.LifetimeReceived,
			BalanceAfter:    beneficiary.LifetimeReceived + s.cfg.LifetimeCredit,
			ChangeAmount:    s.cfg.LifetimeCredit,
			TransactionType: models.TransactionTypeLifetimeCredit,
			TransactionMetadata: map[string]any{
				"card_id":  card.ID,
				"actor_id": actor.ID,
			},
			RelatedID:   &likeID,
			RelatedType: &relatedType,
		},
	}

	for _, entry := range entries {
		if err := RecordBalanceChange(ctx, uow, entry); err != nil {
			return fmt.Errorf("failed to record balance change: %w", err)
		}
	}

	return nil
}

// replayResult rebuilds a LikeResult for an idempotent retry from the stored
// like and the current balances. Nothing is charged again.
func (s *likeService) replayResult(ctx context.Context, uow UnitOfWork, like *models.Like) (*models.LikeResult, error) {
	card, err := uow.CardRepository().GetByID(ctx, like.CardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("card %d: %w", like.CardID, ErrCardNotFound)
	}

	actor, err := uow.UserRepository().GetByID(ctx, like.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	sender, err := uow.UserRepository().GetByID(ctx, card.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card sender: %w", err)
	}
	beneficiary, err := uow.UserRepository().GetByID(ctx, like.BeneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}
	if actor == nil || sender == nil || beneficiary == nil {
		return nil, ErrUserNotFound
	}

	log.WithFields(log.Fields{
		"likeID": like.ID,
		"cardID": like.CardID,
	}).Info("Idempotency key replayed, returning stored like")

	return &models.LikeResult{
		Like:                like,
		ActorBalance:        actor.WeeklyBalance,
		SenderBalance:       sender.WeeklyBalance,
		BeneficiaryLifetime: beneficiary.LifetimeReceived,
		Replayed:            true,
	}, nil
}
