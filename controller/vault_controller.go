// api/controller/vault_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/casewise/themis/api/errors"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/service"
	"github.com/casewise/themis/api/util"
)

// VaultController exposes the identity vault. Every refusal, whether the
// target does not exist or the caller is not allowed to see it, is a plain
// 404 so the API cannot be probed for the existence of mappings.
type VaultController struct {
	vaultService service.IVaultService
	evaluator    *engine.Evaluator
}

func NewVaultController(vaultService service.IVaultService, evaluator *engine.Evaluator) *VaultController {
	return &VaultController{
		vaultService: vaultService,
		evaluator:    evaluator,
	}
}

// RegisterRoutes registers the API routes
func (vc *VaultController) RegisterRoutes(r *gin.RouterGroup) {
	vault := r.Group("/vault")
	{
		vault.POST("/assignments", vc.AssignToCase)
		vault.GET("/resolve/:anonID", vc.ResolveIdentity)
		vault.GET("/cases/:caseID/assignment", vc.GetCaseAssignment)
		vault.GET("/access", vc.VerifyAccess)
	}
}

type assignRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	CaseID    string `json:"case_id" binding:"required"`
	Role      string `json:"role"`
}

// AssignToCase endpoint. Creating an assignment is a privileged write, so
// the caller must pass an evaluator check for case.assign first; a denial
// answers like a missing case.
func (vc *VaultController) AssignToCase(c *gin.Context) {
	var request assignRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment request", themis_errors.ErrInvalidInput)
		return
	}
	callerID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}

	decision := vc.evaluator.CheckPermission(c, pdp_model.AccessRequest{
		SubjectID:    callerID,
		SubjectRole:  util.GetUserRoleFromContext(c),
		Action:       "case.assign",
		ResourceType: "cases",
		ResourceID:   request.CaseID,
	})
	if !decision.Allowed {
		util.RespondWithError(c, http.StatusNotFound, "Not found", themis_errors.ErrNotFound)
		return
	}

	pseudonym, err := vc.vaultService.AssignToCase(c, request.SubjectID, request.CaseID, request.Role)
	if err != nil {
		switch {
		case errors.Is(err, themis_errors.ErrNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Not found", err)
		case errors.Is(err, themis_errors.ErrInvalidInput):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment request", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to assign to case", err)
		}
		return
	}

	c.JSON(http.StatusCreated, pseudonym)
}

// ResolveIdentity endpoint
func (vc *VaultController) ResolveIdentity(c *gin.Context) {
	anonID := c.Param("anonID")
	callerID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}
	callerRole := util.GetUserRoleFromContext(c)

	subjectID, err := vc.vaultService.ResolveIdentity(c, anonID, callerID, callerRole)
	if err != nil {
		if errors.Is(err, themis_errors.ErrNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve identity", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject_id": subjectID})
}

// GetCaseAssignment endpoint
func (vc *VaultController) GetCaseAssignment(c *gin.Context) {
	caseID := c.Param("caseID")
	if _, err := util.GetUserIDFromContext(c); err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}

	assignment, err := vc.vaultService.GetCaseAssignment(c, caseID)
	if err != nil {
		if errors.Is(err, themis_errors.ErrNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve assignment", err)
		}
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// VerifyAccess endpoint
func (vc *VaultController) VerifyAccess(c *gin.Context) {
	subjectID := c.Query("subject_id")
	caseID := c.Query("case_id")
	if _, err := util.GetUserIDFromContext(c); err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}

	allowed, err := vc.vaultService.VerifyAccess(c, subjectID, caseID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to verify access", err)
		return
	}
	if !allowed {
		// Missing assignment and nonexistent case answer the same way.
		util.RespondWithError(c, http.StatusNotFound, "Not found", themis_errors.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowed": true})
}
