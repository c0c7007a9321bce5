package repository

import (
	"context"
	"fmt"

	"kudos/database"
	"kudos/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LikeRepository implements the service.LikeRepository interface
type LikeRepository struct {
	q queryable
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *database.DB) *LikeRepository {
	return &LikeRepository{q: db.Pool}
}

// newLikeRepositoryWithTx creates a new like repository with a transaction
func newLikeRepositoryWithTx(tx queryable) *LikeRepository {
	return &LikeRepository{q: tx}
}

// Create persists a like. The partial unique index on idempotency_key
// rejects a second insert with the same key.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `
		INSERT INTO likes (card_id, actor_id, beneficiary_id, points_debited, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		like.CardID,
		like.ActorID,
		like.BeneficiaryID,
		like.PointsDebited,
		like.IdempotencyKey,
	).Scan(&like.ID, &like.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create like for card %d: %w", like.CardID, err)
	}

	return nil
}

// CountByCard returns the number of likes recorded for a card
func (r *LikeRepository) CountByCard(ctx context.Context, cardID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM likes
		WHERE card_id = $1
	`

	var count int
	if err := r.q.QueryRow(ctx, query, cardID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes for card %d: %w", cardID, err)
	}

	return count, nil
}

// GetByIdempotencyKey returns the like previously recorded for the key
func (r *LikeRepository) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Like, error) {
	query := `
		SELECT id, card_id, actor_id, beneficiary_id, points_debited, idempotency_key, created_at
		FROM likes
		WHERE idempotency_key = $1
	`

	var like models.Like
	err := r.q.QueryRow(ctx, query, key).Scan(
		&like.ID,
		&like.CardID,
		&like.ActorID,
		&like.BeneficiaryID,
		&like.PointsDebited,
		&like.IdempotencyKey,
		&like.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get like by idempotency key: %w", err)
	}

	return &like, nil
}

// GetByCard returns all likes for a card, oldest first
func (r *LikeRepository) GetByCard(ctx context.Context, cardID int64) ([]*models.Like, error) {
	query := `
		SELECT id, card_id, actor_id, beneficiary_id, points_debited, idempotency_key, created_at
		FROM likes
		WHERE card_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var likes []*models.Like
	for rows.Next() {
		var like models.Like
		err := rows.Scan(
			&like.ID,
			&like.CardID,
			&like.ActorID,
			&like.BeneficiaryID,
			&like.PointsDebited,
			&like.IdempotencyKey,
			&like.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, &like)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate likes: %w", err)
	}

	return likes, nil
}
