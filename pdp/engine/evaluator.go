// api/pdp/engine/evaluator.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/casewise/themis/api/audit"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	pdp_model "github.com/casewise/themis/api/pdp/model"
)

// AttributeReader is the Attribute Store contract the evaluator depends on.
// Grants are re-fetched on every check; there is deliberately no caching
// here so a revocation takes effect on the very next call. The role lookup
// backs the auditor guard: the stored role is authoritative, never the
// caller-supplied one.
type AttributeReader interface {
	ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error)
	GetUserRole(ctx context.Context, subjectID string) (string, error)
}

// Evaluator decides allow/deny for an (actor, action, resource, context)
// tuple. Checks run in a fixed order, short-circuiting on the first denial:
// required permission attribute, then restrictions, then clearance. Any
// internal failure resolves to deny. Every verdict, allow or deny, is
// recorded to the audit sink before the call returns.
type Evaluator struct {
	attributes   AttributeReader
	auditService audit.Service
	auditTimeout time.Duration
}

func NewEvaluator(attributes AttributeReader, auditService audit.Service, auditTimeout time.Duration) (*Evaluator, error) {
	if err := pdp_model.ValidateRegistry(); err != nil {
		return nil, fmt.Errorf("attribute registry invalid: %w", err)
	}
	if auditTimeout <= 0 {
		auditTimeout = 2 * time.Second
	}
	return &Evaluator{
		attributes:   attributes,
		auditService: auditService,
		auditTimeout: auditTimeout,
	}, nil
}

// CheckPermission evaluates one access request. It never returns an error:
// anything unexpected collapses into a deny with a structured reason.
func (e *Evaluator) CheckPermission(ctx context.Context, request pdp_model.AccessRequest) pdp_model.AccessDecision {
	start := time.Now()
	if request.Timestamp.IsZero() {
		request.Timestamp = start
	}

	decision := e.evaluate(ctx, request)

	e.recordDecision(ctx, request, decision)

	logger.Info("Access decision",
		zap.String("subjectID", request.SubjectID),
		zap.String("action", request.Action),
		zap.String("resourceType", request.ResourceType),
		zap.Bool("allowed", decision.Allowed),
		zap.String("policy", decision.PolicyName),
		zap.Duration("duration", time.Since(start)))

	return decision
}

func (e *Evaluator) evaluate(ctx context.Context, request pdp_model.AccessRequest) pdp_model.AccessDecision {
	if request.SubjectID == "" || request.Action == "" {
		return deny("malformed access request", "validation")
	}

	grants, err := e.attributes.ListActiveGrants(ctx, request.SubjectID)
	if err != nil {
		// Fail closed: an unreachable attribute store denies everything.
		logger.Error("Attribute store unavailable during evaluation",
			zap.Error(err),
			zap.String("subjectID", request.SubjectID))
		return deny("attribute store unavailable", "fail-closed")
	}

	role, err := e.attributes.GetUserRole(ctx, request.SubjectID)
	if err != nil {
		if !errors.Is(err, themis_errors.ErrNotFound) {
			logger.Error("Attribute store unavailable during role lookup",
				zap.Error(err),
				zap.String("subjectID", request.SubjectID))
			return deny("attribute store unavailable", "fail-closed")
		}
		// Subject absent from the user store (e.g. a service principal);
		// nothing authoritative to override the request role with.
		role = request.SubjectRole
	}
	if role == "" {
		role = request.SubjectRole
	}

	held := e.effectiveGrants(request.SubjectID, role, grants)

	// Step 2: single required permission attribute per action.
	if required, ok := pdp_model.RequiredAttribute(request.Action); ok {
		if _, has := held[required]; !has {
			return deny(fmt.Sprintf("missing required attribute %s", required), "required-attribute")
		}
	}

	// Step 3: restrictions run after the permission check and before
	// clearance, so a restriction always overrides a clearance pass.
	for name, grant := range held {
		if grant.Category != model.CategoryRestriction {
			continue
		}
		if pdp_model.KindOf(name) != pdp_model.KindRestriction {
			// A restriction we cannot interpret must not silently match
			// nothing; treat it as blocking.
			logger.Warn("Unregistered restriction attribute held by subject",
				zap.String("attribute", name),
				zap.String("subjectID", request.SubjectID))
			return deny("unrecognized restriction attribute in effect", "restriction")
		}
		for _, prefix := range pdp_model.BlockedPrefixes(name) {
			if strings.HasPrefix(request.Action, prefix) {
				return deny(fmt.Sprintf("action blocked by %s", name), "restriction")
			}
		}
	}

	// Step 4: clearance versus the resource classification, case resources only.
	if request.ResourceType == "cases" {
		if raw, ok := request.Context[pdp_model.ContextKeyClassification]; ok {
			classification, ok := raw.(string)
			if !ok {
				return deny("malformed classification metadata", "clearance")
			}
			requiredLevel, known := model.Classification(classification).RequiredLevel()
			if !known {
				return deny("unknown classification", "clearance")
			}
			clearance := maxClearance(held)
			if clearance == 0 {
				// A subject with no clearance attributes still reads
				// public material.
				clearance = 1
			}
			if clearance < requiredLevel {
				return deny(fmt.Sprintf("clearance level %d below required %d", clearance, requiredLevel), "clearance")
			}
		}
	}

	return pdp_model.AccessDecision{
		Allowed:    true,
		Reason:     "all attribute checks passed",
		PolicyName: "attribute-grant",
	}
}

// effectiveGrants indexes active grants by attribute name, dropping any
// grant an auditor may never hold. The role comes from the store, not the
// request, so an enforcement point cannot disable this check by omitting or
// misstating the subject's role. The grant-time guard should make such
// grants impossible; this second, independent check keeps the invariant
// even if an invalid grant reaches the store.
func (e *Evaluator) effectiveGrants(subjectID, role string, grants []model.ActiveGrant) map[string]model.ActiveGrant {
	held := make(map[string]model.ActiveGrant, len(grants))
	for _, grant := range grants {
		if role == model.RoleAuditor && pdp_model.ForbiddenForAuditor(grant.AttributeName) {
			logger.Warn("Ignoring auditor-prohibited grant at evaluation time",
				zap.String("subjectID", subjectID),
				zap.String("attribute", grant.AttributeName))
			continue
		}
		held[grant.AttributeName] = grant
	}
	return held
}

// maxClearance derives the subject's clearance: the highest tier among held
// clearance attributes, zero when none are held.
func maxClearance(held map[string]model.ActiveGrant) int {
	clearance := 0
	for name := range held {
		if tier, ok := pdp_model.ClearanceTier(name); ok && tier > clearance {
			clearance = tier
		}
	}
	return clearance
}

// recordDecision writes the decision to the audit sink. The write is
// attempted even when the request context is already cancelled (audit
// completeness wins over latency), but it is bounded by the configured
// timeout and a failure never blocks or fails the access check itself.
func (e *Evaluator) recordDecision(ctx context.Context, request pdp_model.AccessRequest, decision pdp_model.AccessDecision) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.auditTimeout)
	defer cancel()

	result := audit.ResultDeny
	if decision.Allowed {
		result = audit.ResultAllow
	}

	record := audit.Decision{
		SubjectID:       request.SubjectID,
		Action:          request.Action,
		ResourceType:    request.ResourceType,
		ResourceID:      request.ResourceID,
		Result:          result,
		Reason:          decision.Reason,
		PolicyName:      decision.PolicyName,
		ContextMetadata: request.Context,
		Timestamp:       request.Timestamp,
	}

	if err := e.auditService.RecordDecision(writeCtx, record); err != nil {
		logger.Error("Failed to record access decision",
			zap.Error(err),
			zap.String("subjectID", request.SubjectID),
			zap.String("action", request.Action))
	}
}

func deny(reason, policyName string) pdp_model.AccessDecision {
	return pdp_model.AccessDecision{
		Allowed:    false,
		Reason:     reason,
		PolicyName: policyName,
	}
}
