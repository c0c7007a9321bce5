package repository

import (
	"context"
	"fmt"
	"time"

	"kudos/database"
	"kudos/models"

	"github.com/jackc/pgx/v5"
)

// StatsRepository implements the service.StatsRepository interface. All
// queries are read-only scans of the transaction log; ties are broken by
// ascending user id so repeated queries over the same data rank identically.
type StatsRepository struct {
	q queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{q: db.Pool}
}

// newStatsRepositoryWithTx creates a new stats repository with a transaction
func newStatsRepositoryWithTx(tx queryable) *StatsRepository {
	return &StatsRepository{q: tx}
}

// TopCardSenders returns the users who sent the most cards in the window
func (r *StatsRepository) TopCardSenders(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error) {
	query := `
		SELECT c.sender_id, u.username, COUNT(*) AS cnt
		FROM cards c
		JOIN users u ON u.id = c.sender_id
		WHERE c.created_at >= $1 AND c.created_at < $2
		GROUP BY c.sender_id, u.username
		ORDER BY cnt DESC, c.sender_id ASC
		LIMIT $3
	`
	return r.queryRanking(ctx, query, from, to, limit)
}

// TopCardReceivers returns the users who appeared in the most cards'
// recipient sets in the window
func (r *StatsRepository) TopCardReceivers(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error) {
	query := `
		SELECT cr.user_id, u.username, COUNT(*) AS cnt
		FROM card_recipients cr
		JOIN cards c ON c.id = cr.card_id
		JOIN users u ON u.id = cr.user_id
		WHERE c.created_at >= $1 AND c.created_at < $2
		GROUP BY cr.user_id, u.username
		ORDER BY cnt DESC, cr.user_id ASC
		LIMIT $3
	`
	return r.queryRanking(ctx, query, from, to, limit)
}

// TopLikeSenders returns the users who gave the most likes in the window
func (r *StatsRepository) TopLikeSenders(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error) {
	query := `
		SELECT l.actor_id, u.username, COUNT(*) AS cnt
		FROM likes l
		JOIN users u ON u.id = l.actor_id
		WHERE l.created_at >= $1 AND l.created_at < $2
		GROUP BY l.actor_id, u.username
		ORDER BY cnt DESC, l.actor_id ASC
		LIMIT $3
	`
	return r.queryRanking(ctx, query, from, to, limit)
}

// TopLikeReceivers returns the card senders whose cards collected the most
// likes in the window. The card sender is the party credited on each like.
func (r *StatsRepository) TopLikeReceivers(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error) {
	query := `
		SELECT c.sender_id, u.username, COUNT(*) AS cnt
		FROM likes l
		JOIN cards c ON c.id = l.card_id
		JOIN users u ON u.id = c.sender_id
		WHERE l.created_at >= $1 AND l.created_at < $2
		GROUP BY c.sender_id, u.username
		ORDER BY cnt DESC, c.sender_id ASC
		LIMIT $3
	`
	return r.queryRanking(ctx, query, from, to, limit)
}

func (r *StatsRepository) queryRanking(ctx context.Context, query string, from, to time.Time, limit int) ([]*models.RankingEntry, error) {
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	return scanRanking(rows)
}

func scanRanking(rows pgx.Rows) ([]*models.RankingEntry, error) {
	var entries []*models.RankingEntry
	for rows.Next() {
		var entry models.RankingEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranking entries: %w", err)
	}

	return entries, nil
}

// WindowStats returns one user's activity counts within the window
func (r *StatsRepository) WindowStats(ctx context.Context, userID int64, from, to time.Time) (*models.WindowStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM cards
			 WHERE sender_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT COUNT(*) FROM card_recipients cr
			 JOIN cards c ON c.id = cr.card_id
			 WHERE cr.user_id = $1 AND c.created_at >= $2 AND c.created_at < $3),
			(SELECT COUNT(*) FROM likes
			 WHERE actor_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT COUNT(*) FROM likes l
			 JOIN cards c ON c.id = l.card_id
			 WHERE c.sender_id = $1 AND l.created_at >= $2 AND l.created_at < $3)
	`

	var stats models.WindowStats
	err := r.q.QueryRow(ctx, query, userID, from, to).Scan(
		&stats.CardsSent,
		&stats.CardsReceived,
		&stats.LikesSent,
		&stats.LikesReceived,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get window stats for user %d: %w", userID, err)
	}

	return &stats, nil
}
