package model

import "time"

// AccessRequest is the (actor, action, resource, context) tuple the
// evaluator decides on. SubjectRole is the verified platform role of the
// subject, taken from the authenticated session, not from stored attributes.
type AccessRequest struct {
	SubjectID    string                 `json:"subject_id"`
	SubjectRole  string                 `json:"subject_role,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	Context      map[string]interface{} `json:"context,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// AccessDecision is the evaluator's verdict. Reason is structured but never
// carries resource identifiers; PolicyName names the check that produced the
// verdict.
type AccessDecision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	PolicyName string `json:"policy_name,omitempty"`
}

// ContextKeyClassification is the context metadata key carrying a case
// resource's classification tier.
const ContextKeyClassification = "classification"
