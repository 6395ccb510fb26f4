// api/service/vault_service.go
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/casewise/themis/api/dao"
	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
	"github.com/casewise/themis/api/pdp/engine"
	pdp_model "github.com/casewise/themis/api/pdp/model"
)

// IVaultService defines the interface for identity vault operations
type IVaultService interface {
	AssignToCase(ctx context.Context, subjectID, caseID, role string) (*model.Pseudonym, error)
	ResolveIdentity(ctx context.Context, anonID, callerID, callerRole string) (string, error)
	VerifyAccess(ctx context.Context, subjectID, caseID string) (bool, error)
	GetCaseAssignment(ctx context.Context, caseID string) (*model.CaseAssignment, error)
}

// VaultService guards the pseudonym mapping. Everything the vault refuses to
// answer comes back as NotFound: an unknown anon id, an unauthorized caller
// and a nonexistent case all look identical from outside, so a caller can
// never probe the vault to learn whether a mapping exists.
type VaultService struct {
	vaultDAO  *dao.VaultDAO
	evaluator *engine.Evaluator
}

var _ IVaultService = &VaultService{}

func NewVaultService(vaultDAO *dao.VaultDAO, evaluator *engine.Evaluator) *VaultService {
	return &VaultService{
		vaultDAO:  vaultDAO,
		evaluator: evaluator,
	}
}

// AssignToCase returns the stable pseudonym for a (subject, case) pair,
// creating it on first assignment. Repeat calls return the same anon id.
func (s *VaultService) AssignToCase(ctx context.Context, subjectID, caseID, role string) (*model.Pseudonym, error) {
	if subjectID == "" || caseID == "" {
		return nil, themis_errors.ErrInvalidInput
	}
	return s.vaultDAO.GetOrCreatePseudonym(ctx, subjectID, caseID, role)
}

// ResolveIdentity maps a pseudonym back to the real subject. This is the only
// inversion path in the system. The auditor role is blocked outright before
// the evaluator runs; for everyone else the evaluator must allow vault.reveal.
// Both refusals surface as NotFound, indistinguishable from an unknown anon id.
func (s *VaultService) ResolveIdentity(ctx context.Context, anonID, callerID, callerRole string) (string, error) {
	if anonID == "" || callerID == "" {
		return "", themis_errors.ErrNotFound
	}

	if callerRole == model.RoleAuditor {
		logger.Warn("Auditor attempted identity resolution",
			zap.String("callerID", callerID))
		return "", themis_errors.ErrNotFound
	}

	decision := s.evaluator.CheckPermission(ctx, pdp_model.AccessRequest{
		SubjectID:    callerID,
		SubjectRole:  callerRole,
		Action:       "vault.reveal",
		ResourceType: "vault",
	})
	if !decision.Allowed {
		// Denials collapse into NotFound so an unauthorized caller learns
		// nothing about whether the anon id exists.
		return "", themis_errors.ErrNotFound
	}

	subjectID, err := s.vaultDAO.ResolvePseudonym(ctx, anonID)
	if err != nil {
		if errors.Is(err, themis_errors.ErrNotFound) {
			return "", themis_errors.ErrNotFound
		}
		logger.Error("Error resolving pseudonym", zap.Error(err))
		return "", themis_errors.ErrInternalServer
	}

	logger.Info("Identity resolved",
		zap.String("callerID", callerID),
		zap.String("anonID", anonID))
	return subjectID, nil
}

// VerifyAccess reports whether an active assignment pseudonym links the
// subject to the case.
func (s *VaultService) VerifyAccess(ctx context.Context, subjectID, caseID string) (bool, error) {
	if subjectID == "" || caseID == "" {
		return false, nil
	}
	return s.vaultDAO.HasAssignment(ctx, subjectID, caseID)
}

// GetCaseAssignment returns the pseudonymous view of who is attached to a
// case. The real subject id never appears in the result.
func (s *VaultService) GetCaseAssignment(ctx context.Context, caseID string) (*model.CaseAssignment, error) {
	if caseID == "" {
		return nil, themis_errors.ErrNotFound
	}
	return s.vaultDAO.GetAssignment(ctx, caseID)
}
