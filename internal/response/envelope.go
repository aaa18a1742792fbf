package response

import (
	"math"
	"reflect"
	"time"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/tokenest"
)

// Every tool operation returns the same envelope: status, data, an optional
// message, and observability metadata. Verbose emission carries the
// metadata; minimal emission drops it.

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Metadata is finalised immediately before serialisation.
type Metadata struct {
	ExecutionTimeMS     float64        `json:"execution_time_ms"`
	ResultCount         *int           `json:"result_count"`
	ResultSizeBytes     int            `json:"result_size_bytes"`
	IsTruncated         bool           `json:"is_truncated"`
	OriginalCount       *int           `json:"original_count"`
	TokenEstimate       int            `json:"token_estimate"`
	TokenEstimateApprox bool           `json:"token_estimate_approx,omitempty"`
	TokenBreakdown      map[string]int `json:"token_breakdown,omitempty"`
	UsageTier           string         `json:"usage_tier,omitempty"`
}

type Response struct {
	Status   Status    `json:"status"`
	Data     any       `json:"data"`
	Message  string    `json:"message,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`

	start         time.Time
	truncated     bool
	originalCount *int
	limits        Thresholds
}

// Thresholds bound a finalised envelope. MaxBytes caps the serialised data
// size, MaxTokens the token estimate (model-adjusted via ShouldTruncate).
// Zero disables a bound.
type Thresholds struct {
	MaxBytes  int
	MaxTokens int
}

// New starts an envelope, recording the start time monotonically.
func New() *Response {
	return &Response{Status: StatusSuccess, start: time.Now()}
}

// Success sets the data payload.
func (r *Response) Success(data any) *Response {
	r.Status = StatusSuccess
	r.Data = data
	return r
}

// Error marks the envelope failed. A status=error envelope always carries a
// non-empty message.
func (r *Response) Error(message string) *Response {
	r.Status = StatusError
	r.Data = nil
	if message == "" {
		message = "unknown error"
	}
	r.Message = message
	return r
}

// ErrorFrom humanises an engine error. APIError messages are already
// single-line and source-agnostic; anything else is wrapped as-is.
func (r *Response) ErrorFrom(err error) *Response {
	return r.Error(ergo.AsAPIError(err).Error())
}

// WithMessage attaches an informational message without failing the envelope.
func (r *Response) WithMessage(message string) *Response {
	r.Message = message
	return r
}

// Truncated records that a smart-limit dropped items. originalCount < 0
// means the true count is unknown (partial upstream walks).
func (r *Response) Truncated(originalCount int) *Response {
	r.truncated = true
	if originalCount >= 0 {
		r.originalCount = &originalCount
	}
	return r
}

// WithThresholds attaches the configured response budgets, enforced during
// Finalize.
func (r *Response) WithThresholds(t Thresholds) *Response {
	r.limits = t
	return r
}

// Finalize computes the metadata and settles the emission shape. Minimal
// emission computes metadata too (error paths still need timing) but strips
// it from the wire form.
func (r *Response) Finalize(est *tokenest.Estimator, model string, verbose bool) *Response {
	meta := &Metadata{
		ExecutionTimeMS: round2(float64(time.Since(r.start).Microseconds()) / 1000.0),
		IsTruncated:     r.truncated,
		OriginalCount:   r.originalCount,
	}
	r.measure(est, model, meta)

	if r.overBudget(meta, model) {
		r.shrink(est, model, meta)
	}

	if verbose {
		r.Metadata = meta
	} else {
		r.Metadata = nil
	}
	return r
}

// measure fills the size, count, and token fields of meta for the current
// data payload.
func (r *Response) measure(est *tokenest.Estimator, model string, meta *Metadata) {
	meta.ResultSizeBytes = 0
	if serialized, ok := tokenest.CompactJSON(r.Data); ok {
		meta.ResultSizeBytes = len([]byte(serialized))
	}
	meta.ResultCount = nil
	if count, isList := listLength(r.Data); isList {
		meta.ResultCount = &count
	}

	total, approx := est.CountJSONDetailed(r.Data, model)
	meta.TokenEstimate = total
	meta.TokenEstimateApprox = approx
	meta.UsageTier = tokenest.Tier(total)
}

func (r *Response) overBudget(meta *Metadata, model string) bool {
	if r.limits.MaxTokens > 0 && tokenest.ShouldTruncate(meta.TokenEstimate, r.limits.MaxTokens, model) {
		return true
	}
	return r.limits.MaxBytes > 0 && meta.ResultSizeBytes > r.limits.MaxBytes
}

// shrink halves a list payload until it fits the configured budgets. A
// non-list payload cannot be trimmed; the overrun is reported through the
// message instead.
func (r *Response) shrink(est *tokenest.Estimator, model string, meta *Metadata) {
	v := reflect.ValueOf(r.Data)
	if r.Data == nil || v.Kind() != reflect.Slice || v.Len() == 0 {
		r.Message = joinMessages(r.Message, "response exceeds the configured size budget")
		return
	}

	original := v.Len()
	for v.Len() > 1 {
		v = v.Slice(0, (v.Len()+1)/2)
		r.Data = v.Interface()
		r.measure(est, model, meta)
		if !r.overBudget(meta, model) {
			break
		}
	}
	if v.Len() == original {
		// Nothing removable; a single oversized item is reported, not trimmed.
		r.Message = joinMessages(r.Message, "response exceeds the configured size budget")
		return
	}

	r.truncated = true
	if r.originalCount == nil {
		r.originalCount = &original
	}
	meta.IsTruncated = true
	meta.OriginalCount = r.originalCount
	r.Message = joinMessages(r.Message, "result truncated to fit the configured response budget")
}

func joinMessages(existing, added string) string {
	if existing == "" {
		return added
	}
	return existing + "; " + added
}

// FinalizeWithBreakdown is Finalize plus a per-section token breakdown.
func (r *Response) FinalizeWithBreakdown(est *tokenest.Estimator, model string) *Response {
	r.Finalize(est, model, true)
	total, sections := est.Breakdown(r.Data, r.Metadata, string(r.Status), model)
	r.Metadata.TokenBreakdown = sections
	r.Metadata.TokenEstimate = total
	return r
}

// ApplyLimit truncates items to limit, reporting whether anything was
// dropped. A non-positive limit leaves the list untouched. Idempotent for a
// fixed limit.
func ApplyLimit[T any](items []T, limit int) ([]T, bool) {
	if limit <= 0 || len(items) <= limit {
		return items, false
	}
	return items[:limit], true
}

// listLength reports the length of slice/array data.
func listLength(data any) (int, bool) {
	if data == nil {
		return 0, false
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len(), true
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
