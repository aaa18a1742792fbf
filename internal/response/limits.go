package response

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Per-category default smart-limits. Each tool picks the category matching
// its payload; `default` covers anything unlisted. Every value is
// overridable with LIMIT_<CATEGORY> (e.g. LIMIT_TOKEN_HOLDERS=500).
var defaultLimits = map[string]int{
	"addresses":            50,
	"blocks":               20,
	"transactions":         25,
	"boxes":                50,
	"tokens":               50,
	"token_holders":        100,
	"collections":          25,
	"search_results":       20,
	"address_transactions": 25,
	"address_tokens":       100,
	"analytics":            50,
	"default":              50,
}

// Limits is the resolved smart-limit table. Built once at startup,
// read-only afterwards.
type Limits struct {
	values map[string]int
}

// LoadLimits resolves the default table against LIMIT_* environment
// overrides.
func LoadLimits() Limits {
	values := make(map[string]int, len(defaultLimits))
	for category, def := range defaultLimits {
		values[category] = def
		envKey := "LIMIT_" + strings.ToUpper(category)
		if raw := os.Getenv(envKey); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				log.Printf("[Limits] Ignoring invalid %s=%q", envKey, raw)
				continue
			}
			values[category] = parsed
		}
	}
	return Limits{values: values}
}

// For returns the limit for a category, falling back to `default`.
func (l Limits) For(category string) int {
	if v, ok := l.values[category]; ok {
		return v
	}
	return l.values["default"]
}
