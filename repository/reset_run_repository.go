package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kudos/database"
	"kudos/models"

	"github.com/jackc/pgx/v5"
)

// ResetRunRepository implements the service.ResetRunRepository interface
type ResetRunRepository struct {
	q queryable
}

// NewResetRunRepository creates a new reset run repository
func NewResetRunRepository(db *database.DB) *ResetRunRepository {
	return &ResetRunRepository{q: db.Pool}
}

// newResetRunRepositoryWithTx creates a new reset run repository with a transaction
func newResetRunRepositoryWithTx(tx queryable) *ResetRunRepository {
	return &ResetRunRepository{q: tx}
}

// Create creates a new reset run record
func (r *ResetRunRepository) Create(ctx context.Context, run *models.ResetRun) error {
	// Normalize to the date of the week boundary
	run.WeekStart = time.Date(run.WeekStart.Year(), run.WeekStart.Month(), run.WeekStart.Day(),
		0, 0, 0, 0, run.WeekStart.Location())

	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO reset_runs (week_start, users_reset, users_failed, execution_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.WeekStart,
		run.UsersReset,
		run.UsersFailed,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reset run for week %s: %w",
			run.WeekStart.Format("2006-01-02"), err)
	}

	return nil
}

// GetLatest returns the most recent reset run
func (r *ResetRunRepository) GetLatest(ctx context.Context) (*models.ResetRun, error) {
	query := `
		SELECT id, week_start, users_reset, users_failed, execution_summary, created_at
		FROM reset_runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	var run models.ResetRun
	var summaryJSON []byte

	err := r.q.QueryRow(ctx, query).Scan(
		&run.ID,
		&run.WeekStart,
		&run.UsersReset,
		&run.UsersFailed,
		&summaryJSON,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reset run: %w", err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}
