package models

import (
	"time"
)

// Card represents a recognition message from one sender to one or more
// recipients. Cards are immutable once created and never move points on
// their own; DeclaredPoints is descriptive metadata chosen by the sender.
type Card struct {
	ID                     int64     `db:"id"`
	SenderID               int64     `db:"sender_id"`
	PrimaryRecipientID     int64     `db:"-"`
	AdditionalRecipientIDs []int64   `db:"-"`
	Message                string    `db:"message"`
	DeclaredPoints         int       `db:"declared_points"`
	CreatedAt              time.Time `db:"created_at"`
}

// Recipients returns the full recipient set, primary first.
func (c *Card) Recipients() []int64 {
	recipients := make([]int64, 0, 1+len(c.AdditionalRecipientIDs))
	recipients = append(recipients, c.PrimaryRecipientID)
	recipients = append(recipients, c.AdditionalRecipientIDs...)
	return recipients
}

// IsParticipant reports whether userID is the card's sender or one of its
// recipients. Participants may never like their own card.
func (c *Card) IsParticipant(userID int64) bool {
	if userID == c.SenderID || userID == c.PrimaryRecipientID {
		return true
	}
	for _, id := range c.AdditionalRecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}
