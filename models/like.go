package models

import (
	"time"

	"github.com/google/uuid"
)

// Like represents a third party's endorsement of a card. Creating a like is
// the only operation that moves points between users. BeneficiaryID records
// which recipient won the lifetime-credit lottery for this like.
type Like struct {
	ID             int64      `db:"id"`
	CardID         int64      `db:"card_id"`
	ActorID        int64      `db:"actor_id"`
	BeneficiaryID  int64      `db:"beneficiary_id"`
	PointsDebited  int        `db:"points_debited"`
	IdempotencyKey *uuid.UUID `db:"idempotency_key"`
	CreatedAt      time.Time  `db:"created_at"`
}

// LikeResult is returned after a successful like so callers can update
// cached views without re-reading the ledger.
type LikeResult struct {
	Like                *Like
	ActorBalance        int64
	SenderBalance       int64
	BeneficiaryLifetime int64
	Replayed            bool // true when an idempotency key matched an existing like
}
