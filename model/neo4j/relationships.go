// api/model/neo4j/relationships.go
package themis_neo4j

// Relationship Types
const (
	// RelHoldsGrant represents the relationship between a user and an issued grant
	RelHoldsGrant = "HOLDS_GRANT"

	// RelOfAttribute represents the relationship between a grant and its catalog attribute
	RelOfAttribute = "OF_ATTRIBUTE"

	// RelAssignedTo represents the pseudonymous assignment of a user to a case.
	// The anon id lives on this relationship; downstream case views only ever
	// read the relationship properties, never the user node.
	RelAssignedTo = "ASSIGNED_TO"
)
