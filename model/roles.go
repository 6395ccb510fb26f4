// api/model/roles.go
package model

// Platform roles carried in the caller's verified identity. Only the auditor
// role has special meaning to the core: it marks a low-privilege principal
// that must never reach vault reveals, user management, or case content.
const (
	RoleAdmin   = "admin"
	RoleJudge   = "judge"
	RoleClerk   = "clerk"
	RoleAuditor = "auditor"
)
