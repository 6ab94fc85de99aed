package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonKeys collects every object key in a decoded JSON document
func jsonKeys(v any, into map[string]bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			into[k] = true
			jsonKeys(child, into)
		}
	case []any:
		for _, child := range t {
			jsonKeys(child, into)
		}
	}
}

func TestPayloadKeysAreCamelCase(t *testing.T) {
	maxLen := 240.0
	approved := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	category := &Category{ID: 1, Year: 2023, Name: "Grand Award", Type: CategoryTypeBeatmapsets,
		Mode: ModeStandard, IsRequired: true, MaxNominations: 3, Filter: &CategoryFilter{MaxLength: &maxLen}}

	tests := []struct {
		name    string
		payload any
		want    []string
	}{
		{
			name: "beatmapset nomination",
			payload: &Nomination{ID: 1, NominatorID: 2, Category: category, IsValid: true,
				Candidate: &Beatmapset{ID: 10, CreatorName: "Asphyxia", ApprovedDate: approved,
					Beatmaps: []Beatmap{{ID: 1, BeatmapsetID: 10, DifficultyName: "Extra", HitLength: 200}}}},
			want: []string{"nominatorId", "isValid", "creatorName", "approvedDate", "beatmapsetId", "difficultyName", "hitLength", "starRating", "circleSize", "maxLength"},
		},
		{
			name: "user nomination",
			payload: &Nomination{ID: 2, NominatorID: 2, Category: category, IsValid: true,
				Candidate: &UserCandidate{ID: 5, OsuID: 500, Username: "mapper", AvatarURL: "https://a.ppy.sh/500"}},
			want: []string{"osuId", "avatarUrl"},
		},
		{
			name:    "user",
			payload: &User{ID: 1, OsuID: 100, Username: "nominator", RegisteredAt: approved},
			want:    []string{"osuId", "avatarUrl", "registeredAt"},
		},
		{
			name:    "rate limit",
			payload: &RateLimitInfo{UserID: 1, Group: "nominating", RequestCount: 2, Limit: 30},
			want:    []string{"userId", "requestCount", "resetIn", "isAllowed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			var decoded any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			keys := map[string]bool{}
			jsonKeys(decoded, keys)

			for k := range keys {
				assert.False(t, strings.Contains(k, "_"), "key %q is not camelCase", k)
			}
			for _, k := range tt.want {
				assert.True(t, keys[k], "missing key %q", k)
			}
		})
	}
}

func TestOsuProfileKeepsUpstreamFieldNames(t *testing.T) {
	var p OsuProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"x","avatar_url":"a","join_date":"2020-01-01T00:00:00Z","is_restricted":true}`), &p))
	assert.Equal(t, "a", p.AvatarURL)
	assert.True(t, p.IsRestricted)
	assert.Equal(t, 2020, p.JoinDate.Year())
}
