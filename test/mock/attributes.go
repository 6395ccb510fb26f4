// test/mock/attributes.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/casewise/themis/api/model"
)

// MockAttributeReader is a mock implementation of engine.AttributeReader
type MockAttributeReader struct {
	mock.Mock
}

func (m *MockAttributeReader) ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error) {
	args := m.Called(ctx, subjectID)
	grants, _ := args.Get(0).([]model.ActiveGrant)
	return grants, args.Error(1)
}

func (m *MockAttributeReader) GetUserRole(ctx context.Context, subjectID string) (string, error) {
	args := m.Called(ctx, subjectID)
	return args.String(0), args.Error(1)
}
