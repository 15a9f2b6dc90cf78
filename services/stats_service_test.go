package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
)

type stubStatsRepo struct {
	entries []models.LeaderboardEntry
	total   int
}

func (s *stubStatsRepo) ContestTaskStats(_ context.Context, _ int) ([]models.TaskStats, error) {
	return nil, nil
}

func (s *stubStatsRepo) UserTaskProgress(_ context.Context, _, _ int) ([]models.UserTaskProgress, error) {
	return nil, nil
}

func (s *stubStatsRepo) ContestOverallStats(_ context.Context, _ int) (*models.ContestOverallStats, error) {
	return &models.ContestOverallStats{}, nil
}

func (s *stubStatsRepo) Leaderboard(_ context.Context, _, limit, offset int) ([]models.LeaderboardEntry, error) {
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func (s *stubStatsRepo) LeaderboardTotal(_ context.Context, _ int) (int, error) {
	return s.total, nil
}

func (s *stubStatsRepo) UserContestStats(_ context.Context, userID, _ int) (*models.UserContestStats, error) {
	return &models.UserContestStats{UserID: userID}, nil
}

var _ repositories.StatsRepository = (*stubStatsRepo)(nil)

func TestStatsServiceRequiresContest(t *testing.T) {
	service := NewStatsService(&stubStatsRepo{}, newFakeContestRepo())

	_, err := service.ContestOverallStats(context.Background(), 42)
	assert.ErrorIs(t, err, ErrContestNotFound)

	_, err = service.Leaderboard(context.Background(), 42, 1, 10)
	assert.ErrorIs(t, err, ErrContestNotFound)

	_, err = service.UserTaskProgress(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestStatsServiceLeaderboardOrdering(t *testing.T) {
	contestRepo := newFakeContestRepo()
	contest := &models.Contest{Title: "Rank Cup", Slug: "rank-cup", IsPublic: true, CreatedBy: 1}
	require.NoError(t, contestRepo.Create(context.Background(), contest))

	pct := func(v float64) *float64 { return &v }
	statsRepo := &stubStatsRepo{
		entries: []models.LeaderboardEntry{
			{UserID: 1, TotalPoints: 50, CompletedTasks: 2, CompletionPercentage: pct(40)},
			{UserID: 2, TotalPoints: 50, CompletedTasks: 3, CompletionPercentage: pct(60)},
			{UserID: 3, TotalPoints: 120, CompletedTasks: 1, CompletionPercentage: pct(20)},
			{UserID: 4, TotalPoints: 50, CompletedTasks: 3, CompletionPercentage: pct(30)},
			{UserID: 5, TotalPoints: 0, CompletedTasks: 0, CompletionPercentage: nil},
		},
		total: 5,
	}
	service := NewStatsService(statsRepo, contestRepo)

	page, err := service.Leaderboard(context.Background(), contest.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 5)

	gotOrder := make([]int, 0, len(page.Entries))
	for _, e := range page.Entries {
		gotOrder = append(gotOrder, e.UserID)
	}
	// Points first, then completed count, then completion percentage.
	assert.Equal(t, []int{3, 2, 4, 1, 5}, gotOrder)
}

func TestStatsServiceLeaderboardPaging(t *testing.T) {
	contestRepo := newFakeContestRepo()
	contest := &models.Contest{Title: "Board Cup", Slug: "board-cup", IsPublic: true, CreatedBy: 1}
	require.NoError(t, contestRepo.Create(context.Background(), contest))

	statsRepo := &stubStatsRepo{
		entries: []models.LeaderboardEntry{
			{UserID: 1, TotalPoints: 300},
			{UserID: 2, TotalPoints: 200},
			{UserID: 3, TotalPoints: 100},
		},
		total: 3,
	}
	service := NewStatsService(statsRepo, contestRepo)

	page, err := service.Leaderboard(context.Background(), contest.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, 1, page.Entries[0].UserID)

	page, err = service.Leaderboard(context.Background(), contest.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, 3, page.Entries[0].UserID)
}
