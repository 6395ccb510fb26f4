// api/model/neo4j/nodes.go
package themis_neo4j

// Node Labels
const (
	// LabelUser represents a real subject identity in the system
	LabelUser = "User"

	// LabelAttribute represents a catalog attribute usable in access checks
	LabelAttribute = "Attribute"

	// LabelGrant represents an issued attribute grant
	LabelGrant = "Grant"

	// LabelCase represents a case file under management
	LabelCase = "Case"
)
