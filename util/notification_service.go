// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
)

type NotificationService struct {
	// Dependencies such as a message queue client would live here
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyGrantChange announces grant lifecycle changes to downstream
// consumers. Payloads carry the grant as stored; they never include
// pseudonym mappings or resolved identities.
func (n *NotificationService) NotifyGrantChange(ctx context.Context, changeType string, grant model.AttributeGrant) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: Attribute grant created",
			zap.String("grantID", grant.ID),
			zap.String("attribute", grant.AttributeName))
	case "revoked":
		logger.Info("NOTIFICATION: Attribute grant revoked",
			zap.String("grantID", grant.ID),
			zap.String("attribute", grant.AttributeName))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyAttributeChange(ctx context.Context, changeType string, attribute model.Attribute) error {
	logger.Info("Notifying attribute catalog change",
		zap.String("changeType", changeType),
		zap.String("attributeID", attribute.ID),
		zap.String("attributeName", attribute.Name))
	return nil
}

// NotifyAdmins flags conditions that need operator attention, such as a
// rejected auditor grant attempt.
func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
