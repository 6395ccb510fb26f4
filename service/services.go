// api/service/services.go
package service

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"

	"github.com/casewise/themis/api/audit"
	"github.com/casewise/themis/api/dao"
	"github.com/casewise/themis/api/pdp/engine"
	"github.com/casewise/themis/api/util"
)

type Services struct {
	Attribute  IAttributeService
	Vault      IVaultService
	Credential ICredentialService
	Evaluator  *engine.Evaluator
}

func InitializeServices(
	driver neo4j.Driver,
	redisClient *redis.Client,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	auditTimeout time.Duration,
	credentialTTL time.Duration,
) (*Services, error) {
	attributeDAO := dao.NewAttributeDAO(driver)
	vaultDAO := dao.NewVaultDAO(driver)
	credentialStore := dao.NewRedisCredentialStore(redisClient)

	evaluator, err := engine.NewEvaluator(attributeDAO, auditService, auditTimeout)
	if err != nil {
		return nil, err
	}

	vaultService := NewVaultService(vaultDAO, evaluator)

	services := &Services{
		Attribute:  NewAttributeService(attributeDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Vault:      vaultService,
		Credential: NewCredentialService(credentialStore, vaultService, validationUtil, eventBus, credentialTTL),
		Evaluator:  evaluator,
	}

	return services, nil
}
