// api/model/attribute.go
package model

import "time"

// AttributeCategory is the closed set of catalog categories.
type AttributeCategory string

const (
	CategoryPermission    AttributeCategory = "permission"
	CategoryAuthorization AttributeCategory = "authorization"
	CategoryRestriction   AttributeCategory = "restriction"
)

// Attribute is an immutable catalog entry. Catalog entries are created by
// administrative setup and never mutated by request flow.
type Attribute struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    AttributeCategory `json:"category"`
	Level       int               `json:"level"` // 1..4
	Description string            `json:"description"`
}

// AttributeGrant links a subject to a catalog attribute. A grant is active
// iff ExpiresAt is nil or in the future.
type AttributeGrant struct {
	ID            string     `json:"id"`
	SubjectID     string     `json:"subject_id"`
	AttributeName string     `json:"attribute_name"`
	GrantedBy     string     `json:"granted_by"`
	GrantedAt     time.Time  `json:"granted_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// Active reports whether the grant is currently in force.
func (g AttributeGrant) Active(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// ActiveGrant is the Attribute Store read contract: the resolved view of an
// active grant, already joined with its catalog entry.
type ActiveGrant struct {
	AttributeName string            `json:"attribute_name"`
	Category      AttributeCategory `json:"category"`
	Level         int               `json:"level"`
}

// GrantRequest is the administrative payload for issuing a grant.
type GrantRequest struct {
	SubjectID     string     `json:"subject_id"`
	AttributeName string     `json:"attribute_name"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}
