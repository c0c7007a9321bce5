package models

import (
	"time"
)

// User represents an employee with a point balance
type User struct {
	ID               int64      `db:"id"`
	Username         string     `db:"username"`
	WeeklyBalance    int64      `db:"weekly_balance"`
	WeeklyBalanceCap int64      `db:"weekly_balance_cap"`
	LifetimeReceived int64      `db:"lifetime_received"`
	LastResetAt      *time.Time `db:"last_reset_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// BalanceSnapshot is a point-in-time read of a user's balances
type BalanceSnapshot struct {
	UserID           int64
	WeeklyBalance    int64
	LifetimeReceived int64
	LastResetAt      *time.Time
}
