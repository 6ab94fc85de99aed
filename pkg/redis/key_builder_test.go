package redis

import (
	"testing"
)

func TestKeyBuilder_Environment_Prefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{
			name:           "Production environment should use prod prefix",
			environment:    "production",
			expectedPrefix: "prod",
		},
		{
			name:           "Development environment should use staging prefix",
			environment:    "development",
			expectedPrefix: "staging",
		},
		{
			name:           "Staging environment should use staging prefix",
			environment:    "staging",
			expectedPrefix: "staging",
		},
		{
			name:           "Test environment should use test prefix",
			environment:    "test",
			expectedPrefix: "test",
		},
		{
			name:           "Unknown environment should default to prod prefix",
			environment:    "unknown",
			expectedPrefix: "prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			if kb.GetPrefix() != tt.expectedPrefix {
				t.Errorf("NewKeyBuilder(%s).GetPrefix() = %s, want %s",
					tt.environment, kb.GetPrefix(), tt.expectedPrefix)
			}
		})
	}
}

func TestKeyBuilder_KeyGeneration(t *testing.T) {
	kb := NewKeyBuilder("production")

	tests := []struct {
		name     string
		method   func() string
		expected string
	}{
		{
			name:     "AwardCycle key",
			method:   func() string { return kb.KeyAwardCycle(2024) },
			expected: "prod:mca:2024:cycle",
		},
		{
			name:     "Categories key",
			method:   func() string { return kb.KeyCategories(2024) },
			expected: "prod:mca:2024:categories",
		},
		{
			name:     "Categories pattern",
			method:   kb.KeyCategoriesPattern,
			expected: "prod:mca:*:categories",
		},
		{
			name:     "RateLimitUser key",
			method:   func() string { return kb.KeyRateLimitUser(7, "nominating") },
			expected: "prod:ratelimit:user:7:nominating",
		},
		{
			name:     "Custom key",
			method:   func() string { return kb.KeyCustom("oauth:state:%s", "abc") },
			expected: "prod:oauth:state:abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.method()
			if result != tt.expected {
				t.Errorf("%s = %s, want %s", tt.name, result, tt.expected)
			}
		})
	}
}

func TestKeyBuilder_EnvironmentSeparation(t *testing.T) {
	prodKey := NewKeyBuilder("production").KeyCategories(2023)
	stagingKey := NewKeyBuilder("development").KeyCategories(2023)

	if prodKey == stagingKey {
		t.Errorf("Production and staging keys should be different. Got: prod=%s, staging=%s",
			prodKey, stagingKey)
	}

	if prodKey != "prod:mca:2023:categories" {
		t.Errorf("Production key = %s, want %s", prodKey, "prod:mca:2023:categories")
	}

	if stagingKey != "staging:mca:2023:categories" {
		t.Errorf("Staging key = %s, want %s", stagingKey, "staging:mca:2023:categories")
	}
}
