// api/model/credential.go
package model

import "time"

// EphemeralCredential is a single-use, time-boxed bearer token that unlocks
// one case's content for one session. The raw token value is the only proof
// of possession. UsedAt transitions nil -> non-nil exactly once; after
// consumption or expiry the credential is permanently invalid.
type EphemeralCredential struct {
	Token     string     `json:"token"`
	CaseID    string     `json:"case_id"`
	IssuedTo  string     `json:"issued_to"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
