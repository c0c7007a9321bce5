package models

import (
	"time"
)

// RankingEntry represents one user's position on a leaderboard
type RankingEntry struct {
	Rank     int
	UserID   int64
	Username string
	Count    int64
}

// Rankings bundles the four leaderboards for a time window
type Rankings struct {
	From          time.Time
	To            time.Time
	CardSenders   []*RankingEntry
	CardReceivers []*RankingEntry
	LikeSenders   []*RankingEntry
	LikeReceivers []*RankingEntry
}

// WindowStats holds per-user activity counts within a time window.
// PointsSent reconstructs the debit side of the ledger from the event log:
// one point per card sent plus two per like sent. PointsReceived is one
// point per like received on the user's own cards.
type WindowStats struct {
	CardsSent      int64
	CardsReceived  int64
	LikesSent      int64
	LikesReceived  int64
	PointsSent     int64
	PointsReceived int64
}

// DashboardStats represents a user's dashboard view: windowed activity plus
// the current balance snapshot read from the ledger, not derived from the log
type DashboardStats struct {
	UserID           int64
	Weekly           *WindowStats
	Monthly          *WindowStats
	Lifetime         *WindowStats
	WeeklyBalance    int64
	LifetimeReceived int64
	LastResetAt      *time.Time
}
