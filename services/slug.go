package services

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/tasknet/contest-system/repositories"
)

// slugChecker is the narrow slice of ContestRepository the generator needs.
type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// generateUniqueSlug derives a URL slug from the contest title and, on
// collision with an existing contest, appends -1, -2, ... until free. It is
// re-run whenever a title changes.
func generateUniqueSlug(ctx context.Context, repo slugChecker, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "contest"
	}

	candidate := base
	for counter := 1; ; counter++ {
		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

var _ slugChecker = (repositories.ContestRepository)(nil)
