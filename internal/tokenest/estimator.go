package tokenest

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Token-count estimation for LLM consumers of the tool surface.
//
// When the tiktoken encoding can be loaded the count is exact; when loading
// fails (offline environments, unknown encodings) the estimator degrades
// deterministically to the len(utf8)/4 heuristic and reports the result as
// approximate.

const (
	defaultEncoding = "cl100k_base"
	cacheSize       = 2048 // distinct (text, model) results kept per process
)

// Usage tier thresholds.
const (
	tierStandardFloor  = 500
	tierIntensiveFloor = 2000
	tierExcessiveFloor = 5000
)

// modelEncodings maps model identifiers to tiktoken encoding names. Every
// supported family currently shares cl100k_base; unknown models fall back to
// the default encoding.
var modelEncodings = map[string]string{
	"claude":  "cl100k_base",
	"gpt-3.5": "cl100k_base",
	"gpt-4":   "cl100k_base",
	"gpt-4o":  "cl100k_base",
	"palm":    "cl100k_base",
	"gemini":  "cl100k_base",
	"mistral": "cl100k_base",
	"llama":   "cl100k_base",
}

type cacheKey struct {
	text  string
	model string
}

type cacheEntry struct {
	count  int
	approx bool
}

// Estimator counts tokens with per-encoding tokenizer caching and a bounded
// LRU of recent results. Safe for concurrent use.
type Estimator struct {
	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
	failed   map[string]bool // encodings that could not be loaded
	results  *lru.Cache[cacheKey, cacheEntry]
}

func NewEstimator() *Estimator {
	results, _ := lru.New[cacheKey, cacheEntry](cacheSize)
	return &Estimator{
		encoders: make(map[string]*tiktoken.Tiktoken),
		failed:   make(map[string]bool),
		results:  results,
	}
}

// Count returns the token count of text for the given model.
func (e *Estimator) Count(text, model string) int {
	count, _ := e.CountDetailed(text, model)
	return count
}

// CountDetailed additionally reports whether the heuristic fallback produced
// the number.
func (e *Estimator) CountDetailed(text, model string) (int, bool) {
	if text == "" {
		return 0, false
	}

	key := cacheKey{text, model}
	if entry, ok := e.results.Get(key); ok {
		return entry.count, entry.approx
	}

	count, approx := e.countUncached(text, model)
	e.results.Add(key, cacheEntry{count, approx})
	return count, approx
}

func (e *Estimator) countUncached(text, model string) (int, bool) {
	enc := e.encoder(encodingFor(model))
	if enc == nil {
		return heuristicCount(text), true
	}
	return len(enc.Encode(text, nil, nil)), false
}

// CountJSON serialises v compactly (non-ASCII preserved) and counts the
// result. nil and unserialisable values count as 0.
func (e *Estimator) CountJSON(v any, model string) int {
	count, _ := e.CountJSONDetailed(v, model)
	return count
}

// CountJSONDetailed is CountJSON with the approximation flag.
func (e *Estimator) CountJSONDetailed(v any, model string) (int, bool) {
	text, ok := CompactJSON(v)
	if !ok {
		return 0, false
	}
	return e.CountDetailed(text, model)
}

// Breakdown counts the sections of a response envelope separately. metadata
// is counted as zero when nil. The returned total equals the sum of the
// per-section counts.
func (e *Estimator) Breakdown(data, metadata any, status, model string) (int, map[string]int) {
	sections := map[string]int{
		"data":     e.CountJSON(data, model),
		"metadata": 0,
		"status":   e.Count(status, model),
	}
	if metadata != nil {
		sections["metadata"] = e.CountJSON(metadata, model)
	}
	total := sections["data"] + sections["metadata"] + sections["status"]
	return total, sections
}

// ShouldTruncate reports whether count exceeds threshold after model-family
// adjustment: gpt-3.5 budgets are tightened by 0.8, gpt-4 widened by 1.2.
func ShouldTruncate(count, threshold int, model string) bool {
	adjusted := float64(threshold)
	switch {
	case strings.HasPrefix(model, "gpt-3.5"):
		adjusted *= 0.8
	case strings.HasPrefix(model, "gpt-4"):
		adjusted *= 1.2
	}
	return float64(count) > adjusted
}

// Tier labels a token count for usage reporting.
func Tier(count int) string {
	switch {
	case count < tierStandardFloor:
		return "minimal"
	case count < tierIntensiveFloor:
		return "standard"
	case count < tierExcessiveFloor:
		return "intensive"
	default:
		return "excessive"
	}
}

// encoder returns the cached tokenizer for an encoding, loading it on first
// use. A failed load is remembered so offline runs do not retry every call.
func (e *Estimator) encoder(name string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encoders[name]; ok {
		return enc
	}
	if e.failed[name] {
		return nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		log.Printf("[Estimator] Encoding %s unavailable, using 4-chars-per-token heuristic: %v", name, err)
		e.failed[name] = true
		return nil
	}
	e.encoders[name] = enc
	return enc
}

func encodingFor(model string) string {
	if enc, ok := modelEncodings[strings.ToLower(model)]; ok {
		return enc
	}
	return defaultEncoding
}

func heuristicCount(text string) int {
	return len(text) / 4
}

// CompactJSON renders v as compact JSON without HTML escaping, keeping
// non-ASCII characters as-is. The bool is false for nil values and
// serialisation failures.
func CompactJSON(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	// Encoder appends a trailing newline.
	return strings.TrimSuffix(buf.String(), "\n"), true
}
