package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kudos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCardService_CreateCard_Success(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCardRepo := new(MockCardRepository)

	// Configure unit of work
	mockUoW.SetRepositories(nil, mockCardRepo, nil, nil, nil, nil)

	service := NewCardService(mockFactory)

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCardRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Card) bool {
		return c.SenderID == 1 &&
			c.PrimaryRecipientID == 2 &&
			len(c.AdditionalRecipientIDs) == 1 &&
			c.AdditionalRecipientIDs[0] == 4 &&
			c.Message == "thanks for the launch help" &&
			c.DeclaredPoints == 20
	})).Return(nil).Run(func(args mock.Arguments) {
		card := args.Get(1).(*models.Card)
		card.ID = 55
	})

	card, err := service.CreateCard(ctx, 1, 2, []int64{4}, "thanks for the launch help", 20)

	assert.NoError(t, err)
	assert.NotNil(t, card)
	assert.Equal(t, int64(55), card.ID)
	assert.Equal(t, []int64{2, 4}, card.Recipients())

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockCardRepo.AssertExpectations(t)
}

func TestCardService_CreateCard_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		senderID       int64
		primaryID      int64
		additionalIDs  []int64
		message        string
		declaredPoints int
		field          string
	}{
		{
			name:           "empty message",
			senderID:       1,
			primaryID:      2,
			message:        "",
			declaredPoints: 20,
			field:          "message",
		},
		{
			name:           "message too long",
			senderID:       1,
			primaryID:      2,
			message:        strings.Repeat("x", 141),
			declaredPoints: 20,
			field:          "message",
		},
		{
			name:           "negative points",
			senderID:       1,
			primaryID:      2,
			message:        "thanks",
			declaredPoints: -5,
			field:          "declaredPoints",
		},
		{
			name:           "points above maximum",
			senderID:       1,
			primaryID:      2,
			message:        "thanks",
			declaredPoints: 145,
			field:          "declaredPoints",
		},
		{
			name:           "points not a multiple of five",
			senderID:       1,
			primaryID:      2,
			message:        "thanks",
			declaredPoints: 7,
			field:          "declaredPoints",
		},
		{
			name:           "self as primary recipient",
			senderID:       1,
			primaryID:      1,
			message:        "thanks",
			declaredPoints: 20,
			field:          "primaryRecipientId",
		},
		{
			name:           "self as additional recipient",
			senderID:       1,
			primaryID:      2,
			additionalIDs:  []int64{1},
			message:        "thanks",
			declaredPoints: 20,
			field:          "additionalRecipientIds",
		},
		{
			name:           "duplicate recipient",
			senderID:       1,
			primaryID:      2,
			additionalIDs:  []int64{3, 2},
			message:        "thanks",
			declaredPoints: 20,
			field:          "additionalRecipientIds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockFactory := new(MockUnitOfWorkFactory)
			service := NewCardService(mockFactory)

			card, err := service.CreateCard(ctx, tt.senderID, tt.primaryID, tt.additionalIDs, tt.message, tt.declaredPoints)

			assert.Error(t, err)
			assert.Nil(t, card)

			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)

			// Validation happens before any transaction is opened
			mockFactory.AssertNotCalled(t, "Create")
		})
	}
}

func TestCardService_CreateCard_MessageLengthCountsRunes(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCardRepo := new(MockCardRepository)

	mockUoW.SetRepositories(nil, mockCardRepo, nil, nil, nil, nil)

	service := NewCardService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockCardRepo.On("Create", ctx, mock.AnythingOfType("*models.Card")).Return(nil)

	// 140 multi-byte characters, well over 140 bytes
	message := strings.Repeat("é", 140)

	card, err := service.CreateCard(ctx, 1, 2, nil, message, 0)

	assert.NoError(t, err)
	assert.NotNil(t, card)
}

func TestCardService_GetCard_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCardRepo := new(MockCardRepository)

	mockUoW.SetRepositories(nil, mockCardRepo, nil, nil, nil, nil)

	service := NewCardService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCardRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	card, err := service.GetCard(ctx, 404)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrCardNotFound))
	assert.Nil(t, card)
}
