package rules

import "mca-api/internal/domain"

type filterBound struct {
	bound   domain.FilterBound
	limit   func(*domain.CategoryFilter) *float64
	value   func(domain.Beatmap) float64
	min     bool
	message string
}

// Checked in this order; the first failing bound is reported.
var filterBounds = []filterBound{
	{domain.BoundMinLength, func(f *domain.CategoryFilter) *float64 { return f.MinLength }, hitLength, true,
		"Beatmapset does not exceed minimum length requirement!"},
	{domain.BoundMaxLength, func(f *domain.CategoryFilter) *float64 { return f.MaxLength }, hitLength, false,
		"Beatmapset exceeds maximum length requirement!"},
	{domain.BoundMinBPM, func(f *domain.CategoryFilter) *float64 { return f.MinBPM }, bpm, true,
		"Beatmapset does not exceed minimum BPM requirement!"},
	{domain.BoundMaxBPM, func(f *domain.CategoryFilter) *float64 { return f.MaxBPM }, bpm, false,
		"Beatmapset exceeds maximum BPM requirement!"},
	{domain.BoundMinSR, func(f *domain.CategoryFilter) *float64 { return f.MinSR }, starRating, true,
		"Beatmapset does not exceed minimum SR requirement!"},
	{domain.BoundMaxSR, func(f *domain.CategoryFilter) *float64 { return f.MaxSR }, starRating, false,
		"Beatmapset exceeds maximum SR requirement!"},
	{domain.BoundMinCS, func(f *domain.CategoryFilter) *float64 { return f.MinCS }, circleSize, true,
		"Beatmapset does not exceed minimum CS requirement!"},
	{domain.BoundMaxCS, func(f *domain.CategoryFilter) *float64 { return f.MaxCS }, circleSize, false,
		"Beatmapset exceeds maximum CS requirement!"},
}

func hitLength(b domain.Beatmap) float64  { return b.HitLength }
func bpm(b domain.Beatmap) float64        { return b.BPM }
func starRating(b domain.Beatmap) float64 { return b.StarRating }
func circleSize(b domain.Beatmap) float64 { return b.CircleSize }

// ValidateAttributeFilter accepts a set when, for every bound the filter defines,
// at least one of its beatmaps satisfies that bound. Different bounds may be
// satisfied by different beatmaps.
func ValidateAttributeFilter(set *domain.Beatmapset, filter *domain.CategoryFilter) *domain.Rejection {
	if filter == nil {
		return nil
	}
	for _, fb := range filterBounds {
		limit := fb.limit(filter)
		if limit == nil {
			continue
		}
		if !anyBeatmap(set.Beatmaps, fb, *limit) {
			return &domain.Rejection{
				Reason:  domain.ReasonFilterViolation,
				Message: fb.message,
				Bound:   fb.bound,
			}
		}
	}
	return nil
}

func anyBeatmap(beatmaps []domain.Beatmap, fb filterBound, limit float64) bool {
	for _, b := range beatmaps {
		v := fb.value(b)
		if fb.min && v >= limit {
			return true
		}
		if !fb.min && v <= limit {
			return true
		}
	}
	return false
}
