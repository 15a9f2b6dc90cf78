package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/repositories"
	"golang.org/x/sync/errgroup"
)

// LeaderboardPage is a ranked slice of a contest leaderboard.
type LeaderboardPage struct {
	Entries []models.LeaderboardEntry `json:"entries"`
	Total   int                       `json:"total"`
}

type StatsService interface {
	ContestTaskStats(ctx context.Context, contestID int) ([]models.TaskStats, error)
	UserTaskProgress(ctx context.Context, userID, contestID int) ([]models.UserTaskProgress, error)
	ContestOverallStats(ctx context.Context, contestID int) (*models.ContestOverallStats, error)
	Leaderboard(ctx context.Context, contestID, page, limit int) (*LeaderboardPage, error)
	UserContestStats(ctx context.Context, userID, contestID int) (*models.UserContestStats, error)
}

type statsService struct {
	statsRepo   repositories.StatsRepository
	contestRepo repositories.ContestRepository
}

func NewStatsService(statsRepo repositories.StatsRepository, contestRepo repositories.ContestRepository) StatsService {
	return &statsService{statsRepo: statsRepo, contestRepo: contestRepo}
}

func (s *statsService) ContestTaskStats(ctx context.Context, contestID int) ([]models.TaskStats, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.ContestTaskStats(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) UserTaskProgress(ctx context.Context, userID, contestID int) ([]models.UserTaskProgress, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}
	progress, err := s.statsRepo.UserTaskProgress(ctx, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user task progress: %w", err)
	}
	return progress, nil
}

func (s *statsService) ContestOverallStats(ctx context.Context, contestID int) (*models.ContestOverallStats, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.ContestOverallStats(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate overall stats: %w", err)
	}
	return stats, nil
}

// Leaderboard runs the page query and the distinct-user count in parallel;
// both are independent reads over the same tables.
func (s *statsService) Leaderboard(ctx context.Context, contestID, page, limit int) (*LeaderboardPage, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}

	pageLimit, offset := normalizePage(page, limit)

	var (
		entries []models.LeaderboardEntry
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.statsRepo.Leaderboard(gctx, contestID, pageLimit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.statsRepo.LeaderboardTotal(gctx, contestID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RankedBefore(entries[j])
	})
	return &LeaderboardPage{Entries: entries, Total: total}, nil
}

func (s *statsService) UserContestStats(ctx context.Context, userID, contestID int) (*models.UserContestStats, error) {
	if err := s.requireContest(ctx, contestID); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.UserContestStats(ctx, userID, contestID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) requireContest(ctx context.Context, contestID int) error {
	if _, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return ErrContestNotFound
		}
		return err
	}
	return nil
}
