// api/controller/attribute_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/casewise/themis/api/controller"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/test/mock"
)

func setupAttributeRouter(t *testing.T, attributeService *mock.MockAttributeService, userID, role string, callerGrants []model.ActiveGrant) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(stubAuth(userID, role))
	api := router.Group("/")
	controller.NewAttributeController(attributeService, newTestEvaluator(t, role, callerGrants)).RegisterRoutes(api)
	return router
}

func attributeManageGrants() []model.ActiveGrant {
	return []model.ActiveGrant{
		{AttributeName: "attribute.manage", Category: model.CategoryPermission},
	}
}

func TestAttributeController(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("GrantAttribute_SelfGrantWithoutPermission_Forbidden", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		router := setupAttributeRouter(t, attributeService, "clerk-1", model.RoleClerk, nil)

		// An authenticated caller may not hand itself vault.reveal.
		body := strings.NewReader(`{"subject_id":"clerk-1","attribute_name":"vault.reveal"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		attributeService.AssertNotCalled(t, "GrantAttribute", tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("GrantAttribute_WithManagePermission_Created", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		attributeService.On("GrantAttribute", tmock.Anything, tmock.Anything, "admin-1").
			Return(&model.AttributeGrant{
				ID:            "grant-1",
				SubjectID:     "subject-1",
				AttributeName: "case.view",
				GrantedBy:     "admin-1",
				GrantedAt:     time.Now(),
			}, nil)
		router := setupAttributeRouter(t, attributeService, "admin-1", model.RoleAdmin, attributeManageGrants())

		body := strings.NewReader(`{"subject_id":"subject-1","attribute_name":"case.view"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "grant-1")
	})

	t.Run("CreateAttribute_WithoutPermission_Forbidden", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		router := setupAttributeRouter(t, attributeService, "clerk-1", model.RoleClerk, nil)

		body := strings.NewReader(`{"name":"case.view","category":"permission","level":1}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/attributes", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		attributeService.AssertNotCalled(t, "CreateAttribute", tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("BulkGrant_WithoutPermission_Forbidden", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		router := setupAttributeRouter(t, attributeService, "clerk-1", model.RoleClerk, nil)

		body := strings.NewReader(`[{"subject_id":"clerk-1","attribute_name":"case.view"}]`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/bulk", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		attributeService.AssertNotCalled(t, "BulkGrantAttributes", tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("RevokeGrant_WithoutPermission_Forbidden", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		router := setupAttributeRouter(t, attributeService, "clerk-1", model.RoleClerk, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/grants/grant-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		attributeService.AssertNotCalled(t, "RevokeGrant", tmock.Anything, tmock.Anything, tmock.Anything)
	})

	t.Run("ListAttributes_NoManagePermissionRequired", func(t *testing.T) {
		attributeService := new(mock.MockAttributeService)
		attributeService.On("ListAttributes", tmock.Anything).Return([]*model.Attribute{
			{ID: "attr-1", Name: "case.view", Category: model.CategoryPermission, Level: 1},
		}, nil)
		router := setupAttributeRouter(t, attributeService, "clerk-1", model.RoleClerk, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/attributes", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "case.view")
	})
}
