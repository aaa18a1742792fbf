package tools

import (
	"github.com/ergoscope/analytics-engine/internal/config"
	"github.com/ergoscope/analytics-engine/internal/eips"
	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/graph"
	"github.com/ergoscope/analytics-engine/internal/holders"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/internal/tokenest"
)

// Service is the tool surface: every named operation is a thin method that
// drives an engine and wraps the outcome in a response envelope. Methods
// hold no mutable state; concurrent invocations are independent.
type Service struct {
	client      *ergo.Client
	holders     *holders.Engine
	tracer      *graph.Tracer
	mirror      *eips.Mirror
	estimator   *tokenest.Estimator
	limits      response.Limits
	thresholds  response.Thresholds
	addressBook *ergo.AddressBookSource

	verbose bool
	model   string // target model for token estimates
}

// NewService wires the engines together.
func NewService(cfg *config.Config, client *ergo.Client, mirror *eips.Mirror) *Service {
	return &Service{
		client:      client,
		holders:     holders.NewEngine(client),
		tracer:      graph.NewTracer(client),
		mirror:      mirror,
		estimator:   tokenest.NewEstimator(),
		limits:      response.LoadLimits(),
		thresholds:  response.Thresholds{MaxBytes: cfg.MaxResponseSize, MaxTokens: cfg.MaxTokenEstimate},
		addressBook: ergo.NewAddressBookSource(cfg.AddressBookURL, cfg.AddressBookFallback),
		verbose:     cfg.Verbose(),
		model:       "claude",
	}
}

// finalize settles an envelope with the service-wide verbosity, model, and
// response budgets.
func (s *Service) finalize(r *response.Response) *response.Response {
	return r.WithThresholds(s.thresholds).Finalize(s.estimator, s.model, s.verbose)
}

// fail builds a finalised error envelope from an engine error.
func (s *Service) fail(r *response.Response, err error) *response.Response {
	return s.finalize(r.ErrorFrom(err))
}
