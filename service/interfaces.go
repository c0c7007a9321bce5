package service

import (
	"context"
	"time"

	"kudos/events"
	"kudos/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user balance data access
type UserRepository interface {
	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a new user with a full weekly allowance
	Create(ctx context.Context, userID int64, username string, allowance int64) (*models.User, error)

	// AddBalance adds to a user's weekly balance atomically. Credits may push
	// the balance above the cap; the cap is enforced only at reset time.
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance deducts from a user's weekly balance atomically, failing
	// with ErrInsufficientBalance if the balance would go negative
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// AddLifetimeReceived adds to a user's lifetime-received counter atomically
	AddLifetimeReceived(ctx context.Context, userID int64, amount int64) error

	// GetResetDue returns users whose last reset predates weekStart
	GetResetDue(ctx context.Context, weekStart time.Time) ([]*models.User, error)

	// ResetWeeklyBalance restores a user's weekly balance to their cap if a
	// reset is still due. Returns false when another sweep got there first.
	ResetWeeklyBalance(ctx context.Context, userID int64, weekStart, now time.Time) (bool, error)

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)
}

// CardRepository defines the interface for recognition card data access
type CardRepository interface {
	// Create persists a card and its recipient set
	Create(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card with its recipients
	GetByID(ctx context.Context, id int64) (*models.Card, error)

	// GetByIDForUpdate retrieves a card with a row lock, serializing
	// concurrent like attempts on the same card
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Card, error)
}

// LikeRepository defines the interface for like data access
type LikeRepository interface {
	// Create persists a like
	Create(ctx context.Context, like *models.Like) error

	// CountByCard returns the number of likes recorded for a card
	CountByCard(ctx context.Context, cardID int64) (int, error)

	// GetByIdempotencyKey returns the like previously recorded for the key,
	// or nil when the key has not been seen
	GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Like, error)

	// GetByCard returns all likes for a card, oldest first
	GetByCard(ctx context.Context, cardID int64) ([]*models.Like, error)
}

// BalanceHistoryRepository defines the interface for the balance audit trail
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// ResetRunRepository defines the interface for reset sweep audit records
type ResetRunRepository interface {
	// Create creates a new reset run record
	Create(ctx context.Context, run *models.ResetRun) error

	// GetLatest returns the most recent reset run
	GetLatest(ctx context.Context) (*models.ResetRun, error)
}

// StatsRepository defines the read-side aggregation queries over the
// transaction log. All queries are windowed [from, to) and never mutate state.
type StatsRepository interface {
	TopCardSenders(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error)
	TopCardReceivers(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error)
	TopLikeSenders(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error)
	TopLikeReceivers(ctx context.Context, from, to time.Time, limit int) ([]*models.RankingEntry, error)

	// WindowStats returns one user's activity counts within the window
	WindowStats(ctx context.Context, userID int64, from, to time.Time) (*models.WindowStats, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with a
	// full weekly allowance
	GetOrCreateUser(ctx context.Context, userID int64, username string) (*models.User, error)

	// GetBalance returns a point-in-time snapshot of a user's balances
	GetBalance(ctx context.Context, userID int64) (*models.BalanceSnapshot, error)
}

// CardService defines the interface for recognition card operations
type CardService interface {
	// CreateCard validates and persists a recognition card. Cards never move
	// points; declared points are descriptive metadata.
	CreateCard(ctx context.Context, senderID, primaryRecipientID int64, additionalRecipientIDs []int64, message string, declaredPoints int) (*models.Card, error)

	// GetCard retrieves a card by ID
	GetCard(ctx context.Context, cardID int64) (*models.Card, error)
}

// LikeService defines the interface for the like transaction flow, the only
// path by which points move between users
type LikeService interface {
	// CreateLike validates eligibility, moves points and appends the like as
	// one atomic unit. A non-nil idempotency key makes the call safe to
	// retry: replaying a key returns the stored like without re-charging.
	CreateLike(ctx context.Context, cardID, actorID int64, idempotencyKey *uuid.UUID) (*models.LikeResult, error)
}

// ResetService defines the interface for the weekly balance reset sweep
type ResetService interface {
	// Run performs one idempotent sweep, resetting every user whose weekly
	// balance is due
	Run(ctx context.Context) (*models.ResetRun, error)

	// Start launches the recurring sweep until ctx is cancelled
	Start(ctx context.Context, interval time.Duration)
}

// StatsService defines the interface for dashboards and leaderboards
type StatsService interface {
	// GetRankings returns the four leaderboards for the window
	GetRankings(ctx context.Context, from, to time.Time, limit int) (*models.Rankings, error)

	// GetDashboardStats returns a user's windowed activity plus their current
	// balance snapshot
	GetDashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	CardRepository() CardRepository
	LikeRepository() LikeRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	ResetRunRepository() ResetRunRepository
	StatsRepository() StatsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
