// api/pdp/engine/evaluator_test.go
package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casewise/themis/api/audit"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/test/mock"
)

func newEvaluator(t *testing.T, attributes *mock.MockAttributeReader, auditSvc *mock.MockAuditService) *engine.Evaluator {
	t.Helper()
	evaluator, err := engine.NewEvaluator(attributes, auditSvc, time.Second)
	require.NoError(t, err)
	return evaluator
}

func grants(names ...string) []model.ActiveGrant {
	result := make([]model.ActiveGrant, 0, len(names))
	for _, name := range names {
		grant := model.ActiveGrant{AttributeName: name, Category: model.CategoryPermission}
		switch pdp_model.KindOf(name) {
		case pdp_model.KindRestriction:
			grant.Category = model.CategoryRestriction
		case pdp_model.KindClearance:
			grant.Category = model.CategoryAuthorization
		}
		result = append(result, grant)
	}
	return result
}

func TestEvaluator(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	request := func(action, resourceType string, ctx map[string]interface{}) pdp_model.AccessRequest {
		return pdp_model.AccessRequest{
			SubjectID:    "subject-1",
			Action:       action,
			ResourceType: resourceType,
			Context:      ctx,
		}
	}

	t.Run("MissingRequiredAttribute_DeniesAndNamesIt", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("case.view"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("doc.upload", "docs", nil))

		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "doc.upload")
		assert.Equal(t, "required-attribute", decision.PolicyName)
	})

	t.Run("HeldRequiredAttribute_Allows", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("doc.upload"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("doc.upload", "docs", nil))

		assert.True(t, decision.Allowed)
		assert.Equal(t, "attribute-grant", decision.PolicyName)
	})

	t.Run("RestrictionOverridesClearance", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").
			Return(grants("doc.download", "clearance.top_secret", "restrict.no_export"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("doc.download", "cases", map[string]interface{}{
			"classification": "public",
		}))

		assert.False(t, decision.Allowed)
		assert.Equal(t, "restriction", decision.PolicyName)
		assert.Contains(t, decision.Reason, "restrict.no_export")
	})

	t.Run("ClearanceMatrix", func(t *testing.T) {
		cases := []struct {
			name           string
			held           []string
			classification string
			allowed        bool
		}{
			{"ConfidentialClearance_SecretCase", []string{"case.view", "clearance.confidential"}, "secret", false},
			{"ConfidentialClearance_ConfidentialCase", []string{"case.view", "clearance.confidential"}, "confidential", true},
			{"TopSecretClearance_SecretCase", []string{"case.view", "clearance.top_secret"}, "secret", true},
			{"NoClearance_PublicCase", []string{"case.view"}, "public", true},
			{"NoClearance_ConfidentialCase", []string{"case.view"}, "confidential", false},
			{"UnknownClassification_Denies", []string{"case.view", "clearance.top_secret"}, "mystery", false},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				attributes := new(mock.MockAttributeReader)
				auditSvc := new(mock.MockAuditService)
				attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants(tc.held...), nil)
				attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
				auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
				evaluator := newEvaluator(t, attributes, auditSvc)

				decision := evaluator.CheckPermission(context.Background(), request("case.view", "cases", map[string]interface{}{
					"classification": tc.classification,
				}))

				assert.Equal(t, tc.allowed, decision.Allowed)
			})
		}
	})

	t.Run("ClassificationIgnoredForNonCaseResources", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("doc.upload"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("doc.upload", "docs", map[string]interface{}{
			"classification": "top_secret",
		}))

		assert.True(t, decision.Allowed)
	})

	t.Run("StoreFailure_FailsClosed", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").
			Return(nil, errors.New("connection refused"))
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("case.view", "cases", nil))

		assert.False(t, decision.Allowed)
		assert.Equal(t, "attribute store unavailable", decision.Reason)
		assert.Equal(t, "fail-closed", decision.PolicyName)
	})

	t.Run("RoleLookupFailure_FailsClosed", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("case.view"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").
			Return("", errors.New("connection refused"))
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("case.view", "cases", nil))

		assert.False(t, decision.Allowed)
		assert.Equal(t, "fail-closed", decision.PolicyName)
	})

	t.Run("AuditorForbiddenGrantsIgnored", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		// The grant-time guard should prevent this state; the evaluator must
		// still refuse to honor it. The requests carry no role at all: the
		// stored role alone drives the guard, so an enforcement point cannot
		// switch it off by omitting the field.
		attributes.On("ListActiveGrants", tmock.Anything, "auditor-1").Return(grants("case.view", "audit.view"), nil)
		attributes.On("GetUserRole", tmock.Anything, "auditor-1").Return(model.RoleAuditor, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		denied := evaluator.CheckPermission(context.Background(), pdp_model.AccessRequest{
			SubjectID:    "auditor-1",
			Action:       "case.view",
			ResourceType: "cases",
		})
		assert.False(t, denied.Allowed)
		assert.Equal(t, "required-attribute", denied.PolicyName)

		allowed := evaluator.CheckPermission(context.Background(), pdp_model.AccessRequest{
			SubjectID:    "auditor-1",
			Action:       "audit.view",
			ResourceType: "audit",
		})
		assert.True(t, allowed.Allowed)
	})

	t.Run("StoredRoleOverridesRequestRole", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "auditor-1").Return(grants("case.view"), nil)
		attributes.On("GetUserRole", tmock.Anything, "auditor-1").Return(model.RoleAuditor, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		// The caller claims the subject is a clerk; the store says auditor.
		decision := evaluator.CheckPermission(context.Background(), pdp_model.AccessRequest{
			SubjectID:    "auditor-1",
			SubjectRole:  model.RoleClerk,
			Action:       "case.view",
			ResourceType: "cases",
		})

		assert.False(t, decision.Allowed)
		assert.Equal(t, "required-attribute", decision.PolicyName)
	})

	t.Run("EveryBranchRecordsDecision", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("case.view"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.MatchedBy(func(d audit.Decision) bool {
			return d.SubjectID == "subject-1" && d.Result == audit.ResultDeny
		})).Return(nil).Once()
		evaluator := newEvaluator(t, attributes, auditSvc)

		evaluator.CheckPermission(context.Background(), request("doc.upload", "docs", nil))

		auditSvc.AssertExpectations(t)
	})

	t.Run("AuditFailureDoesNotChangeDecision", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		attributes.On("ListActiveGrants", tmock.Anything, "subject-1").Return(grants("doc.upload"), nil)
		attributes.On("GetUserRole", tmock.Anything, "subject-1").Return(model.RoleClerk, nil)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(errors.New("sink down"))
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), request("doc.upload", "docs", nil))

		assert.True(t, decision.Allowed)
	})

	t.Run("MalformedRequest_Denies", func(t *testing.T) {
		attributes := new(mock.MockAttributeReader)
		auditSvc := new(mock.MockAuditService)
		auditSvc.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)
		evaluator := newEvaluator(t, attributes, auditSvc)

		decision := evaluator.CheckPermission(context.Background(), pdp_model.AccessRequest{Action: "case.view"})

		assert.False(t, decision.Allowed)
		assert.Equal(t, "validation", decision.PolicyName)
	})
}

func TestValidateRegistry(t *testing.T) {
	assert.NoError(t, pdp_model.ValidateRegistry())
}
