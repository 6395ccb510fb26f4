// api/controller/credential_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/casewise/themis/api/errors"
	"github.com/casewise/themis/api/service"
	"github.com/casewise/themis/api/util"
)

type CredentialController struct {
	credentialService service.ICredentialService
}

func NewCredentialController(credentialService service.ICredentialService) *CredentialController {
	return &CredentialController{
		credentialService: credentialService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CredentialController) RegisterRoutes(r *gin.RouterGroup) {
	credentials := r.Group("/credentials")
	{
		credentials.POST("", cc.IssueCredential)
		credentials.POST("/validate", cc.ValidateCredential)
	}
}

type issueCredentialRequest struct {
	CaseID string `json:"case_id" binding:"required"`
}

// IssueCredential endpoint. Credentials are always issued to the
// authenticated caller, never to a third party.
func (cc *CredentialController) IssueCredential(c *gin.Context) {
	var request issueCredentialRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid credential request", themis_errors.ErrInvalidCredentialRequest)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}

	credential, err := cc.credentialService.IssueCredential(c, userID, request.CaseID)
	if err != nil {
		switch {
		case errors.Is(err, themis_errors.ErrNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Not found", err)
		case errors.Is(err, themis_errors.ErrInvalidCredentialRequest):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid credential request", err)
		case errors.Is(err, themis_errors.ErrStoreUnavailable):
			util.RespondWithError(c, http.StatusServiceUnavailable, "Service unavailable", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to issue credential", err)
		}
		return
	}

	c.JSON(http.StatusCreated, credential)
}

type validateCredentialRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateCredential endpoint. A token validates at most once; unknown,
// expired and already-used tokens all answer 404.
func (cc *CredentialController) ValidateCredential(c *gin.Context) {
	var request validateCredentialRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid validation request", themis_errors.ErrInvalidCredentialRequest)
		return
	}

	caseID, ok, err := cc.credentialService.ValidateCredential(c, request.Token)
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "Service unavailable", err)
		return
	}
	if !ok {
		util.RespondWithError(c, http.StatusNotFound, "Not found", themis_errors.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case_id": caseID})
}
