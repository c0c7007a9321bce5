package models

import (
	"time"
)

// ResetRun represents one sweep of the weekly balance reset
type ResetRun struct {
	ID               int64                  `db:"id"`
	WeekStart        time.Time              `db:"week_start"`
	UsersReset       int                    `db:"users_reset"`
	UsersFailed      int                    `db:"users_failed"`
	ExecutionSummary map[string]interface{} `db:"execution_summary"`
	CreatedAt        time.Time              `db:"created_at"`
}
