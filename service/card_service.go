package service

import (
	"context"
	"fmt"

	"kudos/events"
	"kudos/models"
)

const (
	maxMessageLength  = 140
	maxDeclaredPoints = 140
	declaredPointStep = 5
)

// cardService implements the CardService interface
type cardService struct {
	uowFactory UnitOfWorkFactory
}

// NewCardService creates a new card service
func NewCardService(uowFactory UnitOfWorkFactory) CardService {
	return &cardService{
		uowFactory: uowFactory,
	}
}

// CreateCard validates and persists a recognition card. Cards never move
// points: declared points are descriptive metadata the sender picks for
// display, not a transfer.
func (s *cardService) CreateCard(ctx context.Context, senderID, primaryRecipientID int64, additionalRecipientIDs []int64, message string, declaredPoints int) (*models.Card, error) {
	if err := validateCard(senderID, primaryRecipientID, additionalRecipientIDs, message, declaredPoints); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	card := &models.Card{
		SenderID:               senderID,
		PrimaryRecipientID:     primaryRecipientID,
		AdditionalRecipientIDs: additionalRecipientIDs,
		Message:                message,
		DeclaredPoints:         declaredPoints,
	}

	if err := uow.CardRepository().Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	uow.EventBus().Publish(events.CardCreatedEvent{
		CardID:         card.ID,
		SenderID:       card.SenderID,
		RecipientIDs:   card.Recipients(),
		DeclaredPoints: card.DeclaredPoints,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return card, nil
}

// GetCard retrieves a card by ID
func (s *cardService) GetCard(ctx context.Context, cardID int64) (*models.Card, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	card, err := uow.CardRepository().GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("card %d: %w", cardID, ErrCardNotFound)
	}

	return card, nil
}

func validateCard(senderID, primaryRecipientID int64, additionalRecipientIDs []int64, message string, declaredPoints int) error {
	if message == "" {
		return &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	if len([]rune(message)) > maxMessageLength {
		return &ValidationError{Field: "message", Reason: fmt.Sprintf("must be at most %d characters", maxMessageLength)}
	}
	if declaredPoints < 0 || declaredPoints > maxDeclaredPoints {
		return &ValidationError{Field: "declaredPoints", Reason: fmt.Sprintf("must be between 0 and %d", maxDeclaredPoints)}
	}
	if declaredPoints%declaredPointStep != 0 {
		return &ValidationError{Field: "declaredPoints", Reason: fmt.Sprintf("must be a multiple of %d", declaredPointStep)}
	}
	if primaryRecipientID == senderID {
		return &ValidationError{Field: "primaryRecipientId", Reason: "sender cannot recognize themselves"}
	}

	seen := map[int64]bool{primaryRecipientID: true}
	for _, id := range additionalRecipientIDs {
		if id == senderID {
			return &ValidationError{Field: "additionalRecipientIds", Reason: "sender cannot recognize themselves"}
		}
		if seen[id] {
			return &ValidationError{Field: "additionalRecipientIds", Reason: "recipients must be distinct"}
		}
		seen[id] = true
	}

	return nil
}
