package tools

import (
	"github.com/ergoscope/analytics-engine/internal/response"
)

// ListEIPs returns every known Ergo Improvement Proposal summary, sorted by
// number ascending.
func (s *Service) ListEIPs() *response.Response {
	r := response.New()
	summaries, err := s.mirror.List()
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(summaries))
}

// GetEIP returns one EIP with its rendered content.
func (s *Service) GetEIP(number int) *response.Response {
	r := response.New()
	detail, err := s.mirror.Get(number)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(detail))
}
