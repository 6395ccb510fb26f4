// api/audit/model.go
package audit

import "time"

// Decision is the append-only record of one evaluator verdict. It is written
// exactly once per evaluation and never updated or deleted by the core.
type Decision struct {
	SubjectID       string                 `json:"subject_id"`
	Action          string                 `json:"action"`
	ResourceType    string                 `json:"resource_type"`
	ResourceID      string                 `json:"resource_id,omitempty"`
	Result          string                 `json:"result"` // "allow" or "deny"
	Reason          string                 `json:"reason"`
	PolicyName      string                 `json:"policy_name,omitempty"`
	ContextMetadata map[string]interface{} `json:"context_metadata,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
}

const (
	ResultAllow = "allow"
	ResultDeny  = "deny"
)

// AccessLogEntry is the meta-audit record of who queried audit data.
type AccessLogEntry struct {
	PrincipalID string            `json:"principal_id"`
	View        string            `json:"view"`
	Params      map[string]string `json:"params,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// AnonymizedDecision is the PII-free projection of a Decision served to
// low-privilege audit viewers. The subject id is replaced by a stable
// truncated one-way hash, the resource id is dropped entirely, and the
// reason is redacted. It is derived on read, never persisted.
type AnonymizedDecision struct {
	UserHash     string    `json:"user_hash"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	Result       string    `json:"result"`
	Reason       string    `json:"reason"`
	PolicyName   string    `json:"policy_name,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
