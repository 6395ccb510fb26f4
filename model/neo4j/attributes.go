// api/model/neo4j/attributes.go
package themis_neo4j

// Attribute Keys
const (
	// AttrID represents the unique identifier of a node
	AttrID = "id"

	// AttrName represents the name attribute of a node
	AttrName = "name"

	// AttrCategory represents the catalog category of an attribute node
	AttrCategory = "category"

	// AttrLevel represents the numeric level of an attribute node
	AttrLevel = "level"

	// AttrDescription represents the description attribute of a node
	AttrDescription = "description"

	// AttrGrantedBy identifies the administrator who issued a grant
	AttrGrantedBy = "grantedBy"

	// AttrGrantedAt represents the issuance timestamp of a grant
	AttrGrantedAt = "grantedAt"

	// AttrExpiresAt represents the expiration timestamp of a grant
	AttrExpiresAt = "expiresAt"

	// AttrReason records the stated reason for a grant
	AttrReason = "reason"

	// AttrAnonID represents the pseudonymous actor id on a case assignment
	AttrAnonID = "anonId"

	// AttrRole represents the role a pseudonym holds on a case
	AttrRole = "role"

	// AttrCreatedAt represents the creation timestamp of a node or relationship
	AttrCreatedAt = "createdAt"
)
