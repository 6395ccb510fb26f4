package model

import "fmt"

// AttributeKind is the closed enumeration of attribute roles the evaluator
// understands. Dynamic string matching against attribute names is deliberately
// avoided: every name the evaluator can act on must appear in the registry
// below, and ValidateRegistry turns a missing or misclassified name into a
// startup failure instead of a silent non-match.
type AttributeKind int

const (
	KindUnknown AttributeKind = iota
	KindPermission
	KindRestriction
	KindClearance
)

// attributeKinds registers every attribute name the evaluator acts on.
var attributeKinds = map[string]AttributeKind{
	"case.create":        KindPermission,
	"case.view":          KindPermission,
	"case.edit.metadata": KindPermission,
	"case.close":         KindPermission,
	"case.assign":        KindPermission,
	"doc.upload":         KindPermission,
	"doc.download":       KindPermission,
	"user.create":        KindPermission,
	"user.edit":          KindPermission,
	"user.delete":        KindPermission,
	"vault.reveal":       KindPermission,
	"audit.view":         KindPermission,
	"attribute.manage":   KindPermission,

	"restrict.no_export": KindRestriction,
	"restrict.read_only": KindRestriction,
	"restrict.no_reveal": KindRestriction,

	"clearance.public":       KindClearance,
	"clearance.confidential": KindClearance,
	"clearance.secret":       KindClearance,
	"clearance.top_secret":   KindClearance,
}

// actionRequirements maps an action to the single permission attribute it
// requires. Actions absent from this table carry no attribute requirement
// and fall through to the restriction and clearance checks.
var actionRequirements = map[string]string{
	"case.create":      "case.create",
	"case.view":        "case.view",
	"case.edit":        "case.edit.metadata",
	"case.close":       "case.close",
	"case.assign":      "case.assign",
	"doc.upload":       "doc.upload",
	"doc.download":     "doc.download",
	"user.create":      "user.create",
	"user.edit":        "user.edit",
	"user.delete":      "user.delete",
	"vault.reveal":     "vault.reveal",
	"audit.view":       "audit.view",
	"attribute.manage": "attribute.manage",
}

// restrictionBlocks maps a restriction attribute to the action prefixes it
// blocks. A held restriction overrides any clearance the subject also holds.
var restrictionBlocks = map[string][]string{
	"restrict.no_export": {"doc.download", "doc.export"},
	"restrict.read_only": {"case.edit", "case.close", "doc.upload", "user."},
	"restrict.no_reveal": {"vault.reveal"},
}

// clearanceTiers maps clearance attribute names to their numeric tier
// (1 public .. 4 top secret).
var clearanceTiers = map[string]int{
	"clearance.public":       1,
	"clearance.confidential": 2,
	"clearance.secret":       3,
	"clearance.top_secret":   4,
}

// auditorForbidden lists the attribute names a subject with the auditor role
// may never hold: vault reveals, user management, and case content. The set
// is enforced at grant time and again, defensively, at evaluation time.
var auditorForbidden = map[string]bool{
	"vault.reveal":       true,
	"user.create":        true,
	"user.edit":          true,
	"user.delete":        true,
	"case.view":          true,
	"case.edit.metadata": true,
	"case.close":         true,
	"case.assign":        true,
	"doc.upload":         true,
	"doc.download":       true,
}

// RequiredAttribute returns the permission attribute an action requires.
func RequiredAttribute(action string) (string, bool) {
	name, ok := actionRequirements[action]
	return name, ok
}

// KindOf returns the registered kind of an attribute name.
func KindOf(name string) AttributeKind {
	return attributeKinds[name]
}

// BlockedPrefixes returns the action prefixes a restriction attribute blocks.
func BlockedPrefixes(name string) []string {
	return restrictionBlocks[name]
}

// ClearanceTier returns the numeric tier of a clearance attribute name.
func ClearanceTier(name string) (int, bool) {
	tier, ok := clearanceTiers[name]
	return tier, ok
}

// ForbiddenForAuditor reports whether an attribute may never be held by a
// subject with the auditor role.
func ForbiddenForAuditor(name string) bool {
	return auditorForbidden[name]
}

// ValidateRegistry cross-checks the tables above. It is called once at
// evaluator construction so that a misspelled or unregistered attribute name
// fails process startup.
func ValidateRegistry() error {
	for action, name := range actionRequirements {
		if attributeKinds[name] != KindPermission {
			return fmt.Errorf("action %q requires attribute %q which is not a registered permission", action, name)
		}
	}
	for name := range restrictionBlocks {
		if attributeKinds[name] != KindRestriction {
			return fmt.Errorf("restriction table entry %q is not a registered restriction", name)
		}
	}
	for name := range clearanceTiers {
		if attributeKinds[name] != KindClearance {
			return fmt.Errorf("clearance table entry %q is not a registered clearance", name)
		}
	}
	for name, kind := range attributeKinds {
		switch kind {
		case KindRestriction:
			if len(restrictionBlocks[name]) == 0 {
				return fmt.Errorf("restriction %q blocks no action prefixes", name)
			}
		case KindClearance:
			if _, ok := clearanceTiers[name]; !ok {
				return fmt.Errorf("clearance %q has no tier", name)
			}
		}
	}
	for name := range auditorForbidden {
		if _, ok := attributeKinds[name]; !ok {
			return fmt.Errorf("auditor-forbidden entry %q is not a registered attribute", name)
		}
	}
	return nil
}
