package repository

import (
	"context"
	"fmt"

	"kudos/database"
	"kudos/models"

	"github.com/jackc/pgx/v5"
)

// CardRepository implements the service.CardRepository interface
type CardRepository struct {
	q queryable
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{q: db.Pool}
}

// newCardRepositoryWithTx creates a new card repository with a transaction
func newCardRepositoryWithTx(tx queryable) *CardRepository {
	return &CardRepository{q: tx}
}

// Create persists a card and its recipient set
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (sender_id, message, declared_points)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		card.SenderID,
		card.Message,
		card.DeclaredPoints,
	).Scan(&card.ID, &card.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	recipientQuery := `
		INSERT INTO card_recipients (card_id, user_id, is_primary)
		VALUES ($1, $2, $3)
	`

	if _, err := r.q.Exec(ctx, recipientQuery, card.ID, card.PrimaryRecipientID, true); err != nil {
		return fmt.Errorf("failed to add primary recipient for card %d: %w", card.ID, err)
	}
	for _, recipientID := range card.AdditionalRecipientIDs {
		if _, err := r.q.Exec(ctx, recipientQuery, card.ID, recipientID, false); err != nil {
			return fmt.Errorf("failed to add recipient %d for card %d: %w", recipientID, card.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a card with its recipients
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a card with a row lock. Holding the card row
// for the duration of the like transaction serializes concurrent like
// attempts on the same card, which is what makes the per-card like cap a
// non-racy check. Likes on different cards do not contend.
func (r *CardRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Card, error) {
	return r.getByID(ctx, id, true)
}

func (r *CardRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.Card, error) {
	query := `
		SELECT id, sender_id, message, declared_points, created_at
		FROM cards
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var card models.Card
	err := r.q.QueryRow(ctx, query, id).Scan(
		&card.ID,
		&card.SenderID,
		&card.Message,
		&card.DeclaredPoints,
		&card.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}

	if err := r.loadRecipients(ctx, &card); err != nil {
		return nil, err
	}

	return &card, nil
}

func (r *CardRepository) loadRecipients(ctx context.Context, card *models.Card) error {
	query := `
		SELECT user_id, is_primary
		FROM card_recipients
		WHERE card_id = $1
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, card.ID)
	if err != nil {
		return fmt.Errorf("failed to get recipients for card %d: %w", card.ID, err)
	}
	defer rows.Close()

	card.AdditionalRecipientIDs = nil
	for rows.Next() {
		var userID int64
		var isPrimary bool
		if err := rows.Scan(&userID, &isPrimary); err != nil {
			return fmt.Errorf("failed to scan card recipient: %w", err)
		}
		if isPrimary {
			card.PrimaryRecipientID = userID
		} else {
			card.AdditionalRecipientIDs = append(card.AdditionalRecipientIDs, userID)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate card recipients: %w", err)
	}

	return nil
}
