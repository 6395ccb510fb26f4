// test/mock/services.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/casewise/themis/api/model"
)

// MockVaultService is a mock implementation of service.IVaultService
type MockVaultService struct {
	mock.Mock
}

func (m *MockVaultService) AssignToCase(ctx context.Context, subjectID, caseID, role string) (*model.Pseudonym, error) {
	args := m.Called(ctx, subjectID, caseID, role)
	pseudonym, _ := args.Get(0).(*model.Pseudonym)
	return pseudonym, args.Error(1)
}

func (m *MockVaultService) ResolveIdentity(ctx context.Context, anonID, callerID, callerRole string) (string, error) {
	args := m.Called(ctx, anonID, callerID, callerRole)
	return args.String(0), args.Error(1)
}

func (m *MockVaultService) VerifyAccess(ctx context.Context, subjectID, caseID string) (bool, error) {
	args := m.Called(ctx, subjectID, caseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVaultService) GetCaseAssignment(ctx context.Context, caseID string) (*model.CaseAssignment, error) {
	args := m.Called(ctx, caseID)
	assignment, _ := args.Get(0).(*model.CaseAssignment)
	return assignment, args.Error(1)
}

// MockAttributeService is a mock implementation of service.IAttributeService
type MockAttributeService struct {
	mock.Mock
}

func (m *MockAttributeService) CreateAttribute(ctx context.Context, attribute model.Attribute, creatorID string) (*model.Attribute, error) {
	args := m.Called(ctx, attribute, creatorID)
	created, _ := args.Get(0).(*model.Attribute)
	return created, args.Error(1)
}

func (m *MockAttributeService) GetAttribute(ctx context.Context, name string) (*model.Attribute, error) {
	args := m.Called(ctx, name)
	attribute, _ := args.Get(0).(*model.Attribute)
	return attribute, args.Error(1)
}

func (m *MockAttributeService) ListAttributes(ctx context.Context) ([]*model.Attribute, error) {
	args := m.Called(ctx)
	attributes, _ := args.Get(0).([]*model.Attribute)
	return attributes, args.Error(1)
}

func (m *MockAttributeService) GrantAttribute(ctx context.Context, request model.GrantRequest, granterID string) (*model.AttributeGrant, error) {
	args := m.Called(ctx, request, granterID)
	grant, _ := args.Get(0).(*model.AttributeGrant)
	return grant, args.Error(1)
}

func (m *MockAttributeService) BulkGrantAttributes(ctx context.Context, requests []model.GrantRequest, granterID string) ([]string, error) {
	args := m.Called(ctx, requests, granterID)
	grantIDs, _ := args.Get(0).([]string)
	return grantIDs, args.Error(1)
}

func (m *MockAttributeService) RevokeGrant(ctx context.Context, grantID string, revokerID string) error {
	args := m.Called(ctx, grantID, revokerID)
	return args.Error(0)
}

func (m *MockAttributeService) ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error) {
	args := m.Called(ctx, subjectID)
	grants, _ := args.Get(0).([]model.ActiveGrant)
	return grants, args.Error(1)
}

// MockCredentialService is a mock implementation of service.ICredentialService
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) IssueCredential(ctx context.Context, subjectID, caseID string) (*model.EphemeralCredential, error) {
	args := m.Called(ctx, subjectID, caseID)
	credential, _ := args.Get(0).(*model.EphemeralCredential)
	return credential, args.Error(1)
}

func (m *MockCredentialService) ValidateCredential(ctx context.Context, token string) (string, bool, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Bool(1), args.Error(2)
}
