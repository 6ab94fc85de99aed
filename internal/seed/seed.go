package seed

import (
	"context"
	"fmt"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
)

func bound(v float64) *float64 { return &v }

// difficultyTiers are the star rating ranges of the per-mode difficulty awards
var difficultyTiers = []struct {
	name   string
	filter domain.CategoryFilter
}{
	{"Easy/Normal", domain.CategoryFilter{MaxSR: bound(2.7)}},
	{"Hard", domain.CategoryFilter{MinSR: bound(2.7), MaxSR: bound(4)}},
	{"Insane", domain.CategoryFilter{MinSR: bound(4), MaxSR: bound(5.3)}},
	{"Expert", domain.CategoryFilter{MinSR: bound(5.3)}},
	{"Marathon", domain.CategoryFilter{MinLength: bound(300)}},
}

// DefaultCategories returns the standard category set of a cycle year
func DefaultCategories(year int) []domain.Category {
	var categories []domain.Category
	for _, mode := range domain.Modes {
		if mode == domain.ModeStoryboard {
			categories = append(categories, domain.Category{
				Year: year, Name: "Storyboard", Type: domain.CategoryTypeBeatmapsets,
				Mode: mode, IsRequired: true, MaxNominations: 3,
			})
			continue
		}

		categories = append(categories,
			domain.Category{
				Year: year, Name: "Grand Award", Type: domain.CategoryTypeBeatmapsets,
				Mode: mode, IsRequired: true, MaxNominations: 3,
				Description: "The best beatmapset of the year",
			},
			domain.Category{
				Year: year, Name: "Mapper of the Year", Type: domain.CategoryTypeUsers,
				Mode: mode, IsRequired: true, MaxNominations: 3,
				Description: "The best mapper of the year",
			},
			domain.Category{
				Year: year, Name: "Rookie", Type: domain.CategoryTypeUsers,
				Mode: mode, MaxNominations: 3,
			},
		)
		for _, tier := range difficultyTiers {
			filter := tier.filter
			categories = append(categories, domain.Category{
				Year: year, Name: tier.name, Type: domain.CategoryTypeBeatmapsets,
				Mode: mode, MaxNominations: 3, Filter: &filter,
			})
		}
	}
	return categories
}

// Cycle creates the award cycle of year in phase and, when the year has no
// categories yet, the default category set. Returns the number of categories created.
func Cycle(ctx context.Context, repos *repository.Repositories, year int, phase domain.Phase) (int, error) {
	if !phase.Valid() {
		return 0, fmt.Errorf("unknown phase %q", phase)
	}
	if err := repos.AwardCycles.Upsert(ctx, &domain.AwardCycle{Year: year, Phase: phase}); err != nil {
		return 0, fmt.Errorf("failed to upsert award cycle: %w", err)
	}

	existing, err := repos.Categories.ListByYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, c := range DefaultCategories(year) {
		category := c
		if err := repos.Categories.Create(ctx, &category); err != nil {
			return created, fmt.Errorf("failed to create category %s/%s: %w", category.Mode, category.Name, err)
		}
		created++
	}
	return created, nil
}
