package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod/test)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyAwardCycle(year int) string {
	return kb.BuildKey(fmt.Sprintf(KeyAwardCycle, year))
}

func (kb *KeyBuilder) KeyCategories(year int) string {
	return kb.BuildKey(fmt.Sprintf(KeyCategories, year))
}

// KeyCategoriesPattern matches the category lists of every year
func (kb *KeyBuilder) KeyCategoriesPattern() string {
	return kb.BuildKey(KeyCategoriesAll)
}

// KeyRateLimitUser is the fixed-window counter for a user and route group
func (kb *KeyBuilder) KeyRateLimitUser(userID int, group string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimitUser, userID, group))
}

// Generic key builders for custom patterns
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
