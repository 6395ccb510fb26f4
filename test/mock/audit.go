// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/casewise/themis/api/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RecordDecision(ctx context.Context, decision audit.Decision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *MockAuditService) RecordAccess(ctx context.Context, principalID, view string, params map[string]string) error {
	args := m.Called(ctx, principalID, view, params)
	return args.Error(0)
}

func (m *MockAuditService) QueryAnonymizedDecisions(ctx context.Context, from, to time.Time, page, limit int) ([]audit.AnonymizedDecision, error) {
	args := m.Called(ctx, from, to, page, limit)
	return args.Get(0).([]audit.AnonymizedDecision), args.Error(1)
}
