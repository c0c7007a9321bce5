package service

import (
	"context"
	"errors"
	"testing"

	"kudos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResetService_Run_ResetsDueUsers(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockResetRunRepo := new(MockResetRunRepository)

	// Configure unit of work
	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockBalanceHistoryRepo, mockResetRunRepo, nil)

	service := NewResetService(mockFactory, testConfig())

	due := []*models.User{
		{ID: 1, Username: "alice", WeeklyBalance: 3, WeeklyBalanceCap: 500},
		{ID: 2, Username: "bob", WeeklyBalance: 620, WeeklyBalanceCap: 500},
	}

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetResetDue", ctx, mock.AnythingOfType("time.Time")).Return(due, nil)
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil)
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(2), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil)

	// Depleted balance is restored to the cap
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 1 &&
			h.BalanceBefore == 3 &&
			h.BalanceAfter == 500 &&
			h.ChangeAmount == 497 &&
			h.TransactionType == models.TransactionTypeWeeklyReset
	})).Return(nil)
	// Balance above the cap is clamped back down to it
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 2 &&
			h.BalanceBefore == 620 &&
			h.BalanceAfter == 500 &&
			h.ChangeAmount == -120 &&
			h.TransactionType == models.TransactionTypeWeeklyReset
	})).Return(nil)

	mockResetRunRepo.On("Create", ctx, mock.MatchedBy(func(r *models.ResetRun) bool {
		return r.UsersReset == 2 && r.UsersFailed == 0
	})).Return(nil)

	run, err := service.Run(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, run)
	assert.Equal(t, 2, run.UsersReset)
	assert.Equal(t, 0, run.UsersFailed)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)
	mockResetRunRepo.AssertExpectations(t)
}

func TestResetService_Run_NoUsersDue(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockResetRunRepo := new(MockResetRunRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockResetRunRepo, nil)

	service := NewResetService(mockFactory, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetResetDue", ctx, mock.AnythingOfType("time.Time")).Return([]*models.User{}, nil)

	run, err := service.Run(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, run)
	assert.Equal(t, 0, run.UsersReset)
	assert.Equal(t, 0, run.UsersFailed)

	// An empty sweep records no audit row
	mockResetRunRepo.AssertNotCalled(t, "Create")
	mockUserRepo.AssertNotCalled(t, "ResetWeeklyBalance")
}

func TestResetService_Run_SkipsAlreadyResetUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockResetRunRepo := new(MockResetRunRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockBalanceHistoryRepo, mockResetRunRepo, nil)

	service := NewResetService(mockFactory, testConfig())

	due := []*models.User{
		{ID: 1, Username: "alice", WeeklyBalance: 3, WeeklyBalanceCap: 500},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetResetDue", ctx, mock.AnythingOfType("time.Time")).Return(due, nil)

	// A concurrent sweep already reset this user; the conditional update
	// matched no row
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(false, nil)

	mockResetRunRepo.On("Create", ctx, mock.MatchedBy(func(r *models.ResetRun) bool {
		return r.UsersReset == 0 && r.UsersFailed == 0
	})).Return(nil)

	run, err := service.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, run.UsersReset)
	assert.Equal(t, 0, run.UsersFailed)

	mockBalanceHistoryRepo.AssertNotCalled(t, "Record")
	mockResetRunRepo.AssertExpectations(t)
}

func TestResetService_Run_FailureIsolation(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockResetRunRepo := new(MockResetRunRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockBalanceHistoryRepo, mockResetRunRepo, nil)

	service := NewResetService(mockFactory, testConfig())

	due := []*models.User{
		{ID: 1, Username: "alice", WeeklyBalance: 3, WeeklyBalanceCap: 500},
		{ID: 2, Username: "bob", WeeklyBalance: 10, WeeklyBalanceCap: 500},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetResetDue", ctx, mock.AnythingOfType("time.Time")).Return(due, nil)

	// One user fails, the other still gets reset
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(false, errors.New("deadlock detected"))
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(2), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(true, nil)

	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 2 && h.TransactionType == models.TransactionTypeWeeklyReset
	})).Return(nil)

	mockResetRunRepo.On("Create", ctx, mock.MatchedBy(func(r *models.ResetRun) bool {
		return r.UsersReset == 1 && r.UsersFailed == 1
	})).Return(nil)

	run, err := service.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, run.UsersReset)
	assert.Equal(t, 1, run.UsersFailed)

	mockUserRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)
	mockResetRunRepo.AssertExpectations(t)
}

func TestResetService_Run_AuditRowFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)
	mockResetRunRepo := new(MockResetRunRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockBalanceHistoryRepo, mockResetRunRepo, nil)

	service := NewResetService(mockFactory, testConfig())

	due := []*models.User{
		{ID: 1, Username: "alice", WeeklyBalance: 3, WeeklyBalanceCap: 500},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetResetDue", ctx, mock.AnythingOfType("time.Time")).Return(due, nil)
	mockUserRepo.On("ResetWeeklyBalance", ctx, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.AnythingOfType("*models.BalanceHistory")).Return(nil)

	// The resets themselves are committed; a failed audit row only warns
	mockResetRunRepo.On("Create", ctx, mock.AnythingOfType("*models.ResetRun")).Return(errors.New("connection lost"))

	run, err := service.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, run.UsersReset)
}
