// api/controller/vault_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casewise/themis/api/controller"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/pdp/engine"
	"github.com/casewise/themis/api/test/mock"
)

// stubAuth stands in for the JWT middleware in tests.
func stubAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
			c.Set("userRole", role)
		}
		c.Next()
	}
}

// newTestEvaluator builds a real evaluator over mock stores so controller
// gates run the actual decision logic.
func newTestEvaluator(t *testing.T, role string, callerGrants []model.ActiveGrant) *engine.Evaluator {
	t.Helper()
	attributes := new(mock.MockAttributeReader)
	auditService := new(mock.MockAuditService)
	attributes.On("ListActiveGrants", tmock.Anything, tmock.Anything).Return(callerGrants, nil)
	attributes.On("GetUserRole", tmock.Anything, tmock.Anything).Return(role, nil)
	auditService.On("RecordDecision", tmock.Anything, tmock.Anything).Return(nil)

	evaluator, err := engine.NewEvaluator(attributes, auditService, time.Second)
	require.NoError(t, err)
	return evaluator
}

func setupVaultRouter(t *testing.T, vaultService *mock.MockVaultService, userID, role string, callerGrants []model.ActiveGrant) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(stubAuth(userID, role))
	api := router.Group("/")
	controller.NewVaultController(vaultService, newTestEvaluator(t, role, callerGrants)).RegisterRoutes(api)
	return router
}

func caseAssignGrants() []model.ActiveGrant {
	return []model.ActiveGrant{
		{AttributeName: "case.assign", Category: model.CategoryPermission},
	}
}

func TestVaultController(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("ResolveIdentity_Success", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		vaultService.On("ResolveIdentity", tmock.Anything, "anon-1", "judge-1", model.RoleJudge).
			Return("subject-1", nil)
		router := setupVaultRouter(t, vaultService, "judge-1", model.RoleJudge, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/vault/resolve/anon-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		json.NewDecoder(w.Body).Decode(&body)
		assert.Equal(t, "subject-1", body["subject_id"])
	})

	t.Run("ResolveIdentity_NotFoundAndDeniedLookIdentical", func(t *testing.T) {
		for _, name := range []string{"unknown-anon-id", "denied-caller"} {
			t.Run(name, func(t *testing.T) {
				vaultService := new(mock.MockVaultService)
				vaultService.On("ResolveIdentity", tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything).
					Return("", themis_errors.ErrNotFound)
				router := setupVaultRouter(t, vaultService, "caller-1", model.RoleClerk, nil)

				w := httptest.NewRecorder()
				req, _ := http.NewRequest("GET", "/vault/resolve/anon-x", nil)
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusNotFound, w.Code)
				assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
			})
		}
	})

	t.Run("ResolveIdentity_Unauthenticated", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		router := setupVaultRouter(t, vaultService, "", "", nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/vault/resolve/anon-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AssignToCase_Success", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		vaultService.On("AssignToCase", tmock.Anything, "subject-1", "case-1", "judge").
			Return(&model.Pseudonym{
				AnonID:    "anon-1",
				SubjectID: "subject-1",
				CaseID:    "case-1",
				CreatedAt: time.Now(),
			}, nil)
		router := setupVaultRouter(t, vaultService, "admin-1", model.RoleAdmin, caseAssignGrants())

		body := strings.NewReader(`{"subject_id":"subject-1","case_id":"case-1","role":"judge"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/vault/assignments", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("AssignToCase_WithoutPermission_NotFound", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		router := setupVaultRouter(t, vaultService, "caller-1", model.RoleClerk, nil)

		body := strings.NewReader(`{"subject_id":"caller-1","case_id":"case-1"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/vault/assignments", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		vaultService.AssertNotCalled(t, "AssignToCase", tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("AssignToCase_AuditorCannotSelfAssign", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		// Even with a case.assign grant in the store, the evaluator drops it
		// for an auditor, so the assignment never reaches the service.
		router := setupVaultRouter(t, vaultService, "auditor-1", model.RoleAuditor, caseAssignGrants())

		body := strings.NewReader(`{"subject_id":"auditor-1","case_id":"case-9"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/vault/assignments", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		vaultService.AssertNotCalled(t, "AssignToCase", tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("AssignToCase_UnknownSubjectOrCase", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		vaultService.On("AssignToCase", tmock.Anything, tmock.Anything, tmock.Anything, tmock.Anything).
			Return(nil, themis_errors.ErrNotFound)
		router := setupVaultRouter(t, vaultService, "admin-1", model.RoleAdmin, caseAssignGrants())

		body := strings.NewReader(`{"subject_id":"ghost","case_id":"case-1"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/vault/assignments", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("VerifyAccess_MissingAssignmentIs404", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		vaultService.On("VerifyAccess", tmock.Anything, "subject-1", "case-9").Return(false, nil)
		router := setupVaultRouter(t, vaultService, "caller-1", model.RoleClerk, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/vault/access?subject_id=subject-1&case_id=case-9", nil)
		router.ServeHTTP(w, req)

		// Never 403: the caller cannot distinguish "no access" from "no case".
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetCaseAssignment_OnlyPseudonymExposed", func(t *testing.T) {
		vaultService := new(mock.MockVaultService)
		vaultService.On("GetCaseAssignment", tmock.Anything, "case-1").
			Return(&model.CaseAssignment{AnonActorID: "anon-1", Role: "judge"}, nil)
		router := setupVaultRouter(t, vaultService, "caller-1", model.RoleClerk, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/vault/cases/case-1/assignment", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "subject")
	})
}
