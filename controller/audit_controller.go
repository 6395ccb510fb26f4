// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/casewise/themis/api/audit"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/util"
	helper_util "github.com/casewise/themis/api/util/helper"
)

// AuditController serves the anonymized decision report. Three layers guard
// it: a per-principal rate limit (wired in the router), an evaluator check on
// audit.view, and a meta-audit record of every access.
type AuditController struct {
	auditService audit.Service
	evaluator    *engine.Evaluator
}

func NewAuditController(auditService audit.Service, evaluator *engine.Evaluator) *AuditController {
	return &AuditController{
		auditService: auditService,
		evaluator:    evaluator,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	auditGroup := r.Group("/audit")
	{
		auditGroup.GET("/decisions", ac.ListDecisions)
	}
}

// ListDecisions endpoint. Only the anonymized projection ever leaves this
// handler; raw decisions stay inside the audit package.
func (ac *AuditController) ListDecisions(c *gin.Context) {
	callerID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", themis_errors.ErrUnauthenticated)
		return
	}
	callerRole := util.GetUserRoleFromContext(c)

	decision := ac.evaluator.CheckPermission(c, pdp_model.AccessRequest{
		SubjectID:    callerID,
		SubjectRole:  callerRole,
		Action:       "audit.view",
		ResourceType: "audit",
	})
	if !decision.Allowed {
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", themis_errors.ErrForbidden)
		return
	}

	page, limit := helper_util.GetPaginationParams(c)
	from, to := helper_util.GetDateRangeParams(c, time.Now())

	// Meta-audit: record who looked at the audit data, best-effort.
	params := map[string]string{
		"startDate": from.Format("2006-01-02"),
		"endDate":   to.Format("2006-01-02"),
	}
	if err := ac.auditService.RecordAccess(c, callerID, "audit.decisions", params); err != nil {
		logger.Error("Failed to record audit access", zap.Error(err), zap.String("principal", callerID))
	}

	decisions, err := ac.auditService.QueryAnonymizedDecisions(c, from, to, page, limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query decisions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decisions": decisions,
		"page":      page,
		"limit":     limit,
	})
}
