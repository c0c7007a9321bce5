package service

import (
	"context"
	"fmt"
	"time"

	"kudos/config"
	"kudos/models"

	log "github.com/sirupsen/logrus"
)

// aggregation reads are retried a bounded number of times on transient
// storage errors; they never mutate state so a retry is always safe
const statsReadAttempts = 3

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory, cfg *config.Config) StatsService {
	return &statsService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// GetRankings returns the four leaderboards for the window
func (s *statsService) GetRankings(ctx context.Context, from, to time.Time, limit int) (*models.Rankings, error) {
	if limit <= 0 {
		limit = s.cfg.RankingLimit
	}

	var rankings *models.Rankings
	err := s.withRetry(ctx, "rankings", func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		stats := uow.StatsRepository()

		cardSenders, err := stats.TopCardSenders(ctx, from, to, limit)
		if err != nil {
			return err
		}
		cardReceivers, err := stats.TopCardReceivers(ctx, from, to, limit)
		if err != nil {
			return err
		}
		likeSenders, err := stats.TopLikeSenders(ctx, from, to, limit)
		if err != nil {
			return err
		}
		likeReceivers, err := stats.TopLikeReceivers(ctx, from, to, limit)
		if err != nil {
			return err
		}

		rankings = &models.Rankings{
			From:          from,
			To:            to,
			CardSenders:   cardSenders,
			CardReceivers: cardReceivers,
			LikeSenders:   likeSenders,
			LikeReceivers: likeReceivers,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rankings, nil
}

// GetDashboardStats returns a user's weekly, month-to-date and lifetime
// activity plus the current balance snapshot. The snapshot comes from the
// ledger, never derived from the log.
func (s *statsService) GetDashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	now := time.Now()
	weekStart := WeekStart(now, s.cfg.Timezone)
	monthStart := MonthStart(now, s.cfg.Timezone)
	// Far enough in the future to include in-flight writes
	horizon := now.Add(time.Hour)

	var dashboard *models.DashboardStats
	err := s.withRetry(ctx, "dashboard", func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		user, err := uow.UserRepository().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
		}

		weekly, err := s.windowStats(ctx, uow, userID, weekStart, horizon)
		if err != nil {
			return err
		}
		monthly, err := s.windowStats(ctx, uow, userID, monthStart, horizon)
		if err != nil {
			return err
		}
		lifetime, err := s.windowStats(ctx, uow, userID, time.Time{}, horizon)
		if err != nil {
			return err
		}

		dashboard = &models.DashboardStats{
			UserID:           userID,
			Weekly:           weekly,
			Monthly:          monthly,
			Lifetime:         lifetime,
			WeeklyBalance:    user.WeeklyBalance,
			LifetimeReceived: user.LifetimeReceived,
			LastResetAt:      user.LastResetAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dashboard, nil
}

// windowStats fetches raw counts and derives the point totals: the debit
// side of the ledger reconstructed from the event log, one point per card
// sent plus the like cost per like sent
func (s *statsService) windowStats(ctx context.Context, uow UnitOfWork, userID int64, from, to time.Time) (*models.WindowStats, error) {
	stats, err := uow.StatsRepository().WindowStats(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	stats.PointsSent = stats.CardsSent + stats.LikesSent*s.cfg.LikeCost
	stats.PointsReceived = stats.LikesReceived * s.cfg.SenderCredit

	return stats, nil
}

func (s *statsService) withRetry(ctx context.Context, name string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= statsReadAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if IsUserFacing(err) || ctx.Err() != nil {
			return err
		}
		log.WithFields(log.Fields{
			"query":   name,
			"attempt": attempt,
			"error":   err,
		}).Warn("Aggregation query failed, retrying")
	}
	return fmt.Errorf("stats temporarily unavailable: %w", err)
}
