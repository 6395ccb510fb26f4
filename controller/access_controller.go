// api/controller/access_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/casewise/themis/api/errors"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/util"
)

type AccessController struct {
	evaluator *engine.Evaluator
}

func NewAccessController(evaluator *engine.Evaluator) *AccessController {
	return &AccessController{
		evaluator: evaluator,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/check", ac.CheckAccess)
	}
}

type accessCheckRequest struct {
	SubjectID    string                 `json:"subject_id"`
	SubjectRole  string                 `json:"subject_role"`
	Action       string                 `json:"action" binding:"required"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Context      map[string]interface{} `json:"context"`
}

// CheckAccess endpoint. The subject defaults to the authenticated caller;
// naming a different subject is the enforcement-point pattern where a
// trusted service checks on behalf of its own users.
func (ac *AccessController) CheckAccess(c *gin.Context) {
	var request accessCheckRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access check request", themis_errors.ErrInvalidInput)
		return
	}

	callerID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}

	subjectID := request.SubjectID
	subjectRole := request.SubjectRole
	if subjectID == "" {
		subjectID = callerID
		subjectRole = util.GetUserRoleFromContext(c)
	}

	decision := ac.evaluator.CheckPermission(c, pdp_model.AccessRequest{
		SubjectID:    subjectID,
		SubjectRole:  subjectRole,
		Action:       request.Action,
		ResourceType: request.ResourceType,
		ResourceID:   request.ResourceID,
		Context:      request.Context,
	})

	c.JSON(http.StatusOK, decision)
}
