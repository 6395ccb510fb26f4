// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/casewise/themis/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateAttribute(attribute model.Attribute) error {
	if attribute.Name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}
	switch attribute.Category {
	case model.CategoryPermission, model.CategoryAuthorization, model.CategoryRestriction:
	default:
		return fmt.Errorf("attribute category must be permission, authorization or restriction")
	}
	if attribute.Level < 1 || attribute.Level > 4 {
		return fmt.Errorf("attribute level must be between 1 and 4")
	}
	return nil
}

func (v *ValidationUtil) ValidateGrantRequest(request model.GrantRequest) error {
	if request.SubjectID == "" {
		return fmt.Errorf("grant subject ID cannot be empty")
	}
	if request.AttributeName == "" {
		return fmt.Errorf("grant attribute name cannot be empty")
	}
	if len(request.Reason) > 200 {
		return fmt.Errorf("grant reason cannot exceed 200 characters")
	}
	return nil
}

func (v *ValidationUtil) ValidateCredentialRequest(subjectID, caseID string) error {
	if subjectID == "" {
		return fmt.Errorf("credential subject ID cannot be empty")
	}
	if caseID == "" {
		return fmt.Errorf("credential case ID cannot be empty")
	}
	return nil
}
