// api/audit/service.go
package audit

import (
	"context"
	"time"
)

// Service is the Audit Sink contract. RecordDecision and RecordAccess are
// fire-and-forget from the caller's perspective: a returned error must be
// logged locally by the caller, never propagated into the operation's own
// outcome.
type Service interface {
	RecordDecision(ctx context.Context, decision Decision) error
	RecordAccess(ctx context.Context, principalID, view string, params map[string]string) error
	QueryAnonymizedDecisions(ctx context.Context, from, to time.Time, page, limit int) ([]AnonymizedDecision, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RecordDecision(ctx context.Context, decision Decision) error {
	return s.repo.IndexDecision(ctx, decision)
}

func (s *service) RecordAccess(ctx context.Context, principalID, view string, params map[string]string) error {
	return s.repo.IndexAccessLog(ctx, AccessLogEntry{
		PrincipalID: principalID,
		View:        view,
		Params:      params,
		Timestamp:   time.Now(),
	})
}

// QueryAnonymizedDecisions is the only read path the audit sink exposes.
// Raw decisions never leave this package unanonymized.
func (s *service) QueryAnonymizedDecisions(ctx context.Context, from, to time.Time, page, limit int) ([]AnonymizedDecision, error) {
	decisions, err := s.repo.QueryDecisions(ctx, from, to, page, limit)
	if err != nil {
		return nil, err
	}

	anonymized := make([]AnonymizedDecision, len(decisions))
	for i, d := range decisions {
		anonymized[i] = ToAnonymized(d)
	}
	return anonymized, nil
}
