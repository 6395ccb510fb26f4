// api/controller/controllers.go
package controller

import (
	"github.com/casewise/themis/api/audit"
	"github.com/casewise/themis/api/service"
)

type Controllers struct {
	Access     *AccessController
	Attribute  *AttributeController
	Vault      *VaultController
	Credential *CredentialController
	Audit      *AuditController
}

func InitializeControllers(services *service.Services, auditService audit.Service) *Controllers {
	return &Controllers{
		Access:     NewAccessController(services.Evaluator),
		Attribute:  NewAttributeController(services.Attribute, services.Evaluator),
		Vault:      NewVaultController(services.Vault, services.Evaluator),
		Credential: NewCredentialController(services.Credential),
		Audit:      NewAuditController(auditService, services.Evaluator),
	}
}
