// api/service/credential_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/casewise/themis/api/dao"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/util"
)

// ICredentialService defines the interface for ephemeral credential operations
type ICredentialService interface {
	IssueCredential(ctx context.Context, subjectID, caseID string) (*model.EphemeralCredential, error)
	ValidateCredential(ctx context.Context, token string) (string, bool, error)
}

// CredentialService issues and consumes single-use, time-boxed bearer
// credentials bound to a case. A credential moves issued -> consumed or
// issued -> expired; there is no revoke and no reuse.
type CredentialService struct {
	store          dao.CredentialStore
	vaultService   IVaultService
	validationUtil *util.ValidationUtil
	eventBus       *util.EventBus
	ttl            time.Duration
}

var _ ICredentialService = &CredentialService{}

func NewCredentialService(store dao.CredentialStore, vaultService IVaultService, validationUtil *util.ValidationUtil, eventBus *util.EventBus, ttl time.Duration) *CredentialService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CredentialService{
		store:          store,
		vaultService:   vaultService,
		validationUtil: validationUtil,
		eventBus:       eventBus,
		ttl:            ttl,
	}
}

// IssueCredential mints a fresh bearer token for a subject assigned to the
// case. Subjects without an assignment get NotFound, not Forbidden, so the
// response does not reveal whether the case exists.
func (s *CredentialService) IssueCredential(ctx context.Context, subjectID, caseID string) (*model.EphemeralCredential, error) {
	if err := s.validationUtil.ValidateCredentialRequest(subjectID, caseID); err != nil {
		return nil, fmt.Errorf("%w: %v", themis_errors.ErrInvalidCredentialRequest, err)
	}

	assigned, err := s.vaultService.VerifyAccess(ctx, subjectID, caseID)
	if err != nil {
		logger.Error("Error verifying case assignment for credential",
			zap.Error(err),
			zap.String("caseID", caseID))
		return nil, themis_errors.ErrInternalServer
	}
	if !assigned {
		return nil, themis_errors.ErrNotFound
	}

	token, err := generateToken()
	if err != nil {
		logger.Error("Error generating credential token", zap.Error(err))
		return nil, themis_errors.ErrInternalServer
	}

	now := time.Now()
	credential := model.EphemeralCredential{
		Token:     token,
		CaseID:    caseID,
		IssuedTo:  subjectID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Put(ctx, credential); err != nil {
		logger.Error("Error storing credential", zap.Error(err), zap.String("caseID", caseID))
		return nil, themis_errors.ErrStoreUnavailable
	}

	// The published payload deliberately omits the token itself.
	s.eventBus.Publish(ctx, util.EventCredentialIssued, map[string]interface{}{
		"caseID":    caseID,
		"issuedTo":  subjectID,
		"expiresAt": credential.ExpiresAt,
	})

	logger.Info("Credential issued",
		zap.String("caseID", caseID),
		zap.Time("expiresAt", credential.ExpiresAt))
	return &credential, nil
}

// ValidateCredential consumes a token. Exactly one validation of a given
// token can ever succeed; the check-and-stamp is a single atomic operation in
// the backing store. Unknown, expired, and already-consumed tokens are all
// reported identically as not ok.
func (s *CredentialService) ValidateCredential(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	caseID, ok, err := s.store.Consume(ctx, token, time.Now())
	if err != nil {
		logger.Error("Error consuming credential", zap.Error(err))
		return "", false, themis_errors.ErrStoreUnavailable
	}
	if !ok {
		return "", false, nil
	}

	logger.Info("Credential consumed", zap.String("caseID", caseID))
	return caseID, true, nil
}

// generateToken returns 32 bytes of crypto/rand entropy as an unpadded
// base64url string. The token is opaque; nothing downstream may assume
// structure in it.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
