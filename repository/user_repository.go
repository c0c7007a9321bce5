package repository

import (
	"context"
	"fmt"
	"time"

	"kudos/database"
	"kudos/models"
	"kudos/service"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, username, weekly_balance, weekly_balance_cap,
		       lifetime_received, last_reset_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.WeeklyBalance,
		&user.WeeklyBalanceCap,
		&user.LifetimeReceived,
		&user.LastResetAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// Create creates a new user with a full weekly allowance
func (r *UserRepository) Create(ctx context.Context, userID int64, username string, allowance int64) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, weekly_balance, weekly_balance_cap)
		VALUES ($1, $2, $3, $3)
		RETURNING id, username, weekly_balance, weekly_balance_cap,
		          lifetime_received, last_reset_at, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID, username, allowance).Scan(
		&user.ID,
		&user.Username,
		&user.WeeklyBalance,
		&user.WeeklyBalanceCap,
		&user.LifetimeReceived,
		&user.LastResetAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	return &user, nil
}

// AddBalance adds to a user's weekly balance atomically. Credits may push
// the balance above the cap; the cap applies only at reset time.
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET weekly_balance = weekly_balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, service.ErrUserNotFound)
	}

	return nil
}

// DeductBalance deducts from a user's weekly balance atomically. The balance
// check and the write are one statement, so two concurrent debits that would
// jointly overdraw can never both succeed.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET weekly_balance = weekly_balance - $1, updated_at = NOW()
		WHERE id = $2 AND weekly_balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		// Zero rows means either a missing user or an overdraw
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, service.ErrUserNotFound)
		}
		return fmt.Errorf("have %d, need %d: %w", user.WeeklyBalance, amount, service.ErrInsufficientBalance)
	}

	return nil
}

// AddLifetimeReceived adds to a user's lifetime-received counter atomically.
// The counter only ever increases.
func (r *UserRepository) AddLifetimeReceived(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET lifetime_received = lifetime_received + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add lifetime received for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, service.ErrUserNotFound)
	}

	return nil
}

// GetResetDue returns users whose last reset predates weekStart
func (r *UserRepository) GetResetDue(ctx context.Context, weekStart time.Time) ([]*models.User, error) {
	query := `
		SELECT id, username, weekly_balance, weekly_balance_cap,
		       lifetime_received, last_reset_at, created_at, updated_at
		FROM users
		WHERE last_reset_at IS NULL OR last_reset_at < $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get reset-due users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ResetWeeklyBalance restores a user's weekly balance to their cap if a
// reset is still due. The due check rides in the WHERE clause, so running
// the sweep twice in the same week is a no-op the second time.
func (r *UserRepository) ResetWeeklyBalance(ctx context.Context, userID int64, weekStart, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET weekly_balance = weekly_balance_cap, last_reset_at = $3, updated_at = NOW()
		WHERE id = $1 AND (last_reset_at IS NULL OR last_reset_at < $2)
	`

	result, err := r.q.Exec(ctx, query, userID, weekStart, now)
	if err != nil {
		return false, fmt.Errorf("failed to reset weekly balance for user %d: %w", userID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, username, weekly_balance, weekly_balance_cap,
		       lifetime_received, last_reset_at, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.WeeklyBalance,
			&user.WeeklyBalanceCap,
			&user.LifetimeReceived,
			&user.LastResetAt,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
