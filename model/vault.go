// api/model/vault.go
package model

import "time"

// Pseudonym is the stable per-(subject, case) stand-in identity. The anon id
// is random, so the mapping back to the subject lives only in the vault's
// store. The same subject gets a different anon id on every case.
type Pseudonym struct {
	AnonID    string    `json:"anon_id"`
	SubjectID string    `json:"subject_id"`
	CaseID    string    `json:"case_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseAssignment is the Case/Assignment Store read contract: which pseudonym
// is attached to a case, and in what role. Downstream views only ever see
// the anon actor id.
type CaseAssignment struct {
	AnonActorID string `json:"anon_actor_id"`
	Role        string `json:"role"`
}
