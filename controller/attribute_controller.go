// api/controller/attribute_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/casewise/themis/api/errors"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/service"
	"github.com/casewise/themis/api/util"
)

type AttributeController struct {
	attributeService service.IAttributeService
	evaluator        *engine.Evaluator
}

func NewAttributeController(attributeService service.IAttributeService, evaluator *engine.Evaluator) *AttributeController {
	return &AttributeController{
		attributeService: attributeService,
		evaluator:        evaluator,
	}
}

// requireAttributeAdmin authenticates the caller and runs the evaluator
// check every catalog or grant write must pass. It writes the error
// response itself; callers bail out when ok is false.
func (ac *AttributeController) requireAttributeAdmin(c *gin.Context) (string, bool) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return "", false
	}

	decision := ac.evaluator.CheckPermission(c, pdp_model.AccessRequest{
		SubjectID:    userID,
		SubjectRole:  util.GetUserRoleFromContext(c),
		Action:       "attribute.manage",
		ResourceType: "attributes",
	})
	if !decision.Allowed {
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", themis_errors.ErrForbidden)
		return "", false
	}

	return userID, true
}

// RegisterRoutes registers the API routes
func (ac *AttributeController) RegisterRoutes(r *gin.RouterGroup) {
	attributes := r.Group("/attributes")
	{
		attributes.POST("", ac.CreateAttribute)
		attributes.GET("", ac.ListAttributes)
		attributes.GET("/:name", ac.GetAttribute)
	}
	grants := r.Group("/grants")
	{
		grants.POST("", ac.GrantAttribute)
		grants.POST("/bulk", ac.BulkGrantAttributes)
		grants.DELETE("/:id", ac.RevokeGrant)
	}
	r.GET("/subjects/:id/grants", ac.ListActiveGrants)
}

// CreateAttribute endpoint
func (ac *AttributeController) CreateAttribute(c *gin.Context) {
	var attribute model.Attribute
	if err := c.ShouldBindJSON(&attribute); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid attribute data", themis_errors.ErrInvalidInput)
		return
	}
	userID, ok := ac.requireAttributeAdmin(c)
	if !ok {
		return
	}

	createdAttribute, err := ac.attributeService.CreateAttribute(c, attribute, userID)
	if err != nil {
		switch {
		case errors.Is(err, themis_errors.ErrAttributeConflict):
			util.RespondWithError(c, http.StatusConflict, "Attribute already exists", err)
		case errors.Is(err, themis_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusBadRequest, "Failed to create attribute", err)
		}
		return
	}

	c.JSON(http.StatusCreated, createdAttribute)
}

// GetAttribute endpoint
func (ac *AttributeController) GetAttribute(c *gin.Context) {
	name := c.Param("name")

	attribute, err := ac.attributeService.GetAttribute(c, name)
	if err != nil {
		if errors.Is(err, themis_errors.ErrAttributeNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Attribute not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve attribute", err)
		}
		return
	}

	c.JSON(http.StatusOK, attribute)
}

// ListAttributes endpoint
func (ac *AttributeController) ListAttributes(c *gin.Context) {
	attributes, err := ac.attributeService.ListAttributes(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list attributes", err)
		return
	}

	c.JSON(http.StatusOK, attributes)
}

// GrantAttribute endpoint
func (ac *AttributeController) GrantAttribute(c *gin.Context) {
	var request model.GrantRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant request", themis_errors.ErrInvalidInput)
		return
	}
	userID, ok := ac.requireAttributeAdmin(c)
	if !ok {
		return
	}

	grant, err := ac.attributeService.GrantAttribute(c, request, userID)
	if err != nil {
		switch {
		case errors.Is(err, themis_errors.ErrAuditorProhibited):
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case errors.Is(err, themis_errors.ErrNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Not found", err)
		case errors.Is(err, themis_errors.ErrInvalidGrantData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to grant attribute", err)
		}
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// BulkGrantAttributes endpoint
func (ac *AttributeController) BulkGrantAttributes(c *gin.Context) {
	var requests []model.GrantRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant requests", themis_errors.ErrInvalidInput)
		return
	}
	userID, ok := ac.requireAttributeAdmin(c)
	if !ok {
		return
	}

	grantIDs, err := ac.attributeService.BulkGrantAttributes(c, requests, userID)
	if err != nil {
		if errors.Is(err, themis_errors.ErrAuditorProhibited) {
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to grant attributes", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"grant_ids": grantIDs})
}

// RevokeGrant endpoint
func (ac *AttributeController) RevokeGrant(c *gin.Context) {
	grantID := c.Param("id")
	userID, ok := ac.requireAttributeAdmin(c)
	if !ok {
		return
	}

	if err := ac.attributeService.RevokeGrant(c, grantID, userID); err != nil {
		if errors.Is(err, themis_errors.ErrGrantNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Grant not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke grant", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ListActiveGrants endpoint
func (ac *AttributeController) ListActiveGrants(c *gin.Context) {
	subjectID := c.Param("id")

	grants, err := ac.attributeService.ListActiveGrants(c, subjectID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list grants", err)
		return
	}

	c.JSON(http.StatusOK, grants)
}
