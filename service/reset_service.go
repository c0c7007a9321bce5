package service

import (
	"context"
	"fmt"
	"time"

	"kudos/config"
	"kudos/events"
	"kudos/models"

	log "github.com/sirupsen/logrus"
)

// resetService implements the ResetService interface. The sweep is keyed off
// each user's last_reset_at rather than a global flag, so it tolerates
// process restarts, missed ticks and downtime spanning multiple weeks: a
// user who missed several resets is reset once, to the standard cap.
type resetService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewResetService creates a new reset service
func NewResetService(uowFactory UnitOfWorkFactory, cfg *config.Config) ResetService {
	return &resetService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// Run performs one idempotent sweep. A failed reset for one user never
// blocks the others; the user stays due and is retried on the next tick.
func (s *resetService) Run(ctx context.Context) (*models.ResetRun, error) {
	now := time.Now()
	weekStart := WeekStart(now, s.cfg.Timezone)

	due, err := s.fetchDueUsers(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	run := &models.ResetRun{WeekStart: weekStart}
	if len(due) == 0 {
		return run, nil
	}

	for _, user := range due {
		applied, err := s.resetUser(ctx, user, weekStart, now)
		if err != nil {
			run.UsersFailed++
			log.WithFields(log.Fields{
				"userID": user.ID,
				"error":  err,
			}).Warn("Failed to reset weekly balance, will retry next tick")
			continue
		}
		if applied {
			run.UsersReset++
		}
	}

	run.ExecutionSummary = map[string]interface{}{
		"due":        len(due),
		"week_start": weekStart.Format("2006-01-02"),
	}

	if err := s.recordRun(ctx, run); err != nil {
		// The resets themselves are committed; only the audit row failed
		log.WithField("error", err).Warn("Failed to record reset run")
	}

	log.WithFields(log.Fields{
		"weekStart":   weekStart.Format("2006-01-02"),
		"usersReset":  run.UsersReset,
		"usersFailed": run.UsersFailed,
	}).Info("Weekly reset sweep completed")

	return run, nil
}

// Start launches the recurring sweep until ctx is cancelled. One sweep runs
// immediately so a restart never leaves balances stale for a full interval.
func (s *resetService) Start(ctx context.Context, interval time.Duration) {
	go func() {
		if _, err := s.Run(ctx); err != nil {
			log.WithField("error", err).Error("Weekly reset sweep failed")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					log.WithField("error", err).Error("Weekly reset sweep failed")
				}
			}
		}
	}()
}

func (s *resetService) fetchDueUsers(ctx context.Context, weekStart time.Time) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	due, err := uow.UserRepository().GetResetDue(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get reset-due users: %w", err)
	}

	return due, nil
}

// resetUser resets one user in its own transaction so a failure stays
// contained. The conditional update serializes correctly against a
// concurrent like on the same user: both go through the same row lock.
func (s *resetService) resetUser(ctx context.Context, user *models.User, weekStart, now time.Time) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	applied, err := uow.UserRepository().ResetWeeklyBalance(ctx, user.ID, weekStart, now)
	if err != nil {
		return false, err
	}
	if !applied {
		// Another sweep reset this user between fetch and update
		return false, uow.Rollback()
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   user.WeeklyBalance,
		BalanceAfter:    user.WeeklyBalanceCap,
		ChangeAmount:    user.WeeklyBalanceCap - user.WeeklyBalance,
		TransactionType: models.TransactionTypeWeeklyReset,
		TransactionMetadata: map[string]any{
			"week_start": weekStart.Format("2006-01-02"),
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

func (s *resetService) recordRun(ctx context.Context, run *models.ResetRun) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ResetRunRepository().Create(ctx, run); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WeeklyResetEvent{
		WeekStart:   run.WeekStart.Format("2006-01-02"),
		UsersReset:  run.UsersReset,
		UsersFailed: run.UsersFailed,
	})

	return uow.Commit()
}
