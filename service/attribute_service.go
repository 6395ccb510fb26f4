// api/service/attribute_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/casewise/themis/api/dao"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	pdp_model "github.com/casewise/themis/api/pdp/model"
	"github.com/casewise/themis/api/util"
)

// IAttributeService defines the interface for attribute catalog and grant operations
type IAttributeService interface {
	CreateAttribute(ctx context.Context, attribute model.Attribute, creatorID string) (*model.Attribute, error)
	GetAttribute(ctx context.Context, name string) (*model.Attribute, error)
	ListAttributes(ctx context.Context) ([]*model.Attribute, error)
	GrantAttribute(ctx context.Context, request model.GrantRequest, granterID string) (*model.AttributeGrant, error)
	BulkGrantAttributes(ctx context.Context, requests []model.GrantRequest, granterID string) ([]string, error)
	RevokeGrant(ctx context.Context, grantID string, revokerID string) error
	ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error)
}

// AttributeService handles business logic for the attribute catalog and grants
type AttributeService struct {
	attributeDAO    *dao.AttributeDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IAttributeService = &AttributeService{}

// NewAttributeService creates a new instance of AttributeService
func NewAttributeService(attributeDAO *dao.AttributeDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *AttributeService {
	service := &AttributeService{
		attributeDAO:    attributeDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventGrantCreated, service.handleGrantCreated)
	eventBus.Subscribe(util.EventGrantRevoked, service.handleGrantRevoked)

	return service
}

func (s *AttributeService) handleGrantCreated(ctx context.Context, event util.Event) error {
	grant, ok := event.Payload.(model.AttributeGrant)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Grant created event received", zap.String("grantID", grant.ID))

	if err := s.notificationSvc.NotifyGrantChange(ctx, "created", grant); err != nil {
		logger.Warn("Failed to send grant creation notification", zap.Error(err), zap.String("grantID", grant.ID))
	}
	return nil
}

func (s *AttributeService) handleGrantRevoked(ctx context.Context, event util.Event) error {
	grantID, ok := event.Payload.(string)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Grant revoked event received", zap.String("grantID", grantID))

	if err := s.notificationSvc.NotifyGrantChange(ctx, "revoked", model.AttributeGrant{ID: grantID}); err != nil {
		logger.Warn("Failed to send grant revocation notification", zap.Error(err), zap.String("grantID", grantID))
	}
	return nil
}

// CreateAttribute adds an entry to the immutable attribute catalog.
func (s *AttributeService) CreateAttribute(ctx context.Context, attribute model.Attribute, creatorID string) (*model.Attribute, error) {
	if err := s.validationUtil.ValidateAttribute(attribute); err != nil {
		return nil, fmt.Errorf("invalid attribute: %w", err)
	}

	attributeID, err := s.attributeDAO.CreateAttribute(ctx, attribute)
	if err != nil {
		logger.Error("Error creating attribute", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}
	attribute.ID = attributeID

	if err := s.cacheService.SetAttribute(ctx, attribute); err != nil {
		logger.Warn("Failed to cache attribute", zap.Error(err), zap.String("name", attribute.Name))
	}

	s.eventBus.Publish(ctx, util.EventAttributeCreated, attribute)

	logger.Info("Attribute created successfully",
		zap.String("attributeID", attributeID),
		zap.String("creatorID", creatorID))
	return &attribute, nil
}

// GetAttribute retrieves a catalog attribute by name. Catalog entries are
// immutable, so the cache never goes stale.
func (s *AttributeService) GetAttribute(ctx context.Context, name string) (*model.Attribute, error) {
	cached, err := s.cacheService.GetAttribute(ctx, name)
	if err == nil && cached != nil {
		return cached, nil
	}

	attribute, err := s.attributeDAO.GetAttributeByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetAttribute(ctx, *attribute); err != nil {
		logger.Warn("Failed to cache attribute", zap.Error(err), zap.String("name", name))
	}

	return attribute, nil
}

// ListAttributes retrieves the full catalog.
func (s *AttributeService) ListAttributes(ctx context.Context) ([]*model.Attribute, error) {
	attributes, err := s.attributeDAO.ListAttributes(ctx)
	if err != nil {
		logger.Error("Error listing attributes", zap.Error(err))
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return attributes, nil
}

// GrantAttribute issues a grant to a subject. Subjects with the auditor role
// may never receive vault reveal, user management, or case content
// attributes; that invariant is enforced here, before anything is persisted,
// and again defensively at evaluation time.
func (s *AttributeService) GrantAttribute(ctx context.Context, request model.GrantRequest, granterID string) (*model.AttributeGrant, error) {
	if err := s.validationUtil.ValidateGrantRequest(request); err != nil {
		return nil, fmt.Errorf("invalid grant request: %w", err)
	}

	role, err := s.attributeDAO.GetUserRole(ctx, request.SubjectID)
	if err != nil {
		logger.Error("Error resolving subject role for grant",
			zap.Error(err),
			zap.String("subjectID", request.SubjectID))
		return nil, err
	}

	if role == model.RoleAuditor && pdp_model.ForbiddenForAuditor(request.AttributeName) {
		logger.Warn("Rejected auditor-prohibited grant attempt",
			zap.String("subjectID", request.SubjectID),
			zap.String("attribute", request.AttributeName),
			zap.String("granterID", granterID))
		if err := s.notificationSvc.NotifyAdmins(ctx, fmt.Sprintf("rejected prohibited grant of %s to auditor subject", request.AttributeName)); err != nil {
			logger.Warn("Failed to notify admins of rejected grant", zap.Error(err))
		}
		return nil, themis_errors.ErrAuditorProhibited
	}

	grant := model.AttributeGrant{
		SubjectID:     request.SubjectID,
		AttributeName: request.AttributeName,
		GrantedBy:     granterID,
		GrantedAt:     time.Now(),
		ExpiresAt:     request.ExpiresAt,
		Reason:        request.Reason,
	}

	grantID, err := s.attributeDAO.CreateGrant(ctx, grant)
	if err != nil {
		return nil, err
	}
	grant.ID = grantID

	s.eventBus.Publish(ctx, util.EventGrantCreated, grant)

	logger.Info("Attribute granted successfully",
		zap.String("grantID", grantID),
		zap.String("granterID", granterID))
	return &grant, nil
}

// BulkGrantAttributes issues multiple grants in parallel. Each grant goes
// through the full single-grant path, auditor guard included.
func (s *AttributeService) BulkGrantAttributes(ctx context.Context, requests []model.GrantRequest, granterID string) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	grantIDs := make([]string, len(requests))

	// Limit concurrency to avoid overwhelming the store
	semaphore := make(chan struct{}, 10)

	for i, request := range requests {
		i, request := i, request
		g.Go(func() error {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			grant, err := s.GrantAttribute(ctx, request, granterID)
			if err != nil {
				return err
			}
			grantIDs[i] = grant.ID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Error in bulk grant attributes", zap.Error(err), zap.String("granterID", granterID))
		return nil, fmt.Errorf("failed to bulk grant attributes: %w", err)
	}

	logger.Info("Bulk grant attributes completed",
		zap.Int("count", len(grantIDs)),
		zap.String("granterID", granterID))
	return grantIDs, nil
}

// RevokeGrant expires a grant immediately. Because grants are never cached,
// the revocation is visible to the evaluator on its next check.
func (s *AttributeService) RevokeGrant(ctx context.Context, grantID string, revokerID string) error {
	if err := s.attributeDAO.RevokeGrant(ctx, grantID); err != nil {
		logger.Error("Error revoking grant",
			zap.Error(err),
			zap.String("grantID", grantID),
			zap.String("revokerID", revokerID))
		return err
	}

	s.eventBus.Publish(ctx, util.EventGrantRevoked, grantID)

	logger.Info("Grant revoked successfully",
		zap.String("grantID", grantID),
		zap.String("revokerID", revokerID))
	return nil
}

// ListActiveGrants exposes the Attribute Store read contract.
func (s *AttributeService) ListActiveGrants(ctx context.Context, subjectID string) ([]model.ActiveGrant, error) {
	return s.attributeDAO.ListActiveGrants(ctx, subjectID)
}
