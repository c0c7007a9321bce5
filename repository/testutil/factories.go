package testutil

import (
	"time"

	"kudos/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(userID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		ID:               userID,
		Username:         username,
		WeeklyBalance:    500,
		WeeklyBalanceCap: 500,
		LifetimeReceived: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific weekly balance
func CreateTestUserWithBalance(userID int64, username string, balance int64) *models.User {
	user := CreateTestUser(userID, username)
	user.WeeklyBalance = balance
	return user
}

// CreateTestCard creates a test card with a single recipient
func CreateTestCard(senderID, recipientID int64) *models.Card {
	return &models.Card{
		SenderID:           senderID,
		PrimaryRecipientID: recipientID,
		Message:            "thanks for the help",
		DeclaredPoints:     20,
		CreatedAt:          time.Now(),
	}
}

// CreateTestCardWithRecipients creates a test card with additional recipients
func CreateTestCardWithRecipients(senderID, primaryID int64, additionalIDs ...int64) *models.Card {
	card := CreateTestCard(senderID, primaryID)
	card.AdditionalRecipientIDs = additionalIDs
	return card
}

// CreateTestResetRun creates a test reset run
func CreateTestResetRun(weekStart time.Time) *models.ResetRun {
	return &models.ResetRun{
		WeekStart:   weekStart,
		UsersReset:  10,
		UsersFailed: 0,
		ExecutionSummary: map[string]interface{}{
			"due": 10,
		},
		CreatedAt: time.Now(),
	}
}
