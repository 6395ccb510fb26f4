// api/audit/anonymizer.go
package audit

import (
	"encoding/hex"
	"regexp"

	"github.com/zeebo/blake3"
)

// hashVersion is the fixed, versioned domain prefix of the anonymization
// hash. Bumping it invalidates every stored correlation, so it only changes
// together with the hash function itself.
const hashVersion = "thv1:"

// userHashLen is the length of the truncated hex digest exposed to viewers.
const userHashLen = 8

// maxReasonLen bounds redacted reasons.
const maxReasonLen = 200

const redactedPlaceholder = "[redacted]"

var (
	// uuidPattern matches canonical UUIDs embedded in free-form reasons.
	uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

	// hexIDPattern matches long bare hex strings that look like identifiers.
	hexIDPattern = regexp.MustCompile(`\b[0-9a-fA-F]{16,}\b`)
)

// UserHash maps a subject id to its stable anonymized hash: the first 8 hex
// characters of BLAKE3 over the versioned subject id. The truncation is not
// cryptographically strong against targeted reversal; it is adequate here
// because subject identifiers are unguessable UUIDs, not enumerable values.
// Inverting a hash in practice requires the identity vault's own store.
func UserHash(subjectID string) string {
	sum := blake3.Sum256([]byte(hashVersion + subjectID))
	return hex.EncodeToString(sum[:])[:userHashLen]
}

// RedactReason strips identifier-shaped substrings from a decision reason
// and bounds its length.
func RedactReason(reason string) string {
	redacted := uuidPattern.ReplaceAllString(reason, redactedPlaceholder)
	redacted = hexIDPattern.ReplaceAllString(redacted, redactedPlaceholder)
	if len(redacted) > maxReasonLen {
		redacted = redacted[:maxReasonLen]
	}
	return redacted
}

// ToAnonymized projects a Decision into its PII-free view. The function is
// pure: the same subject id always yields the same user hash, so repeated
// actions by one subject remain correlatable without being attributable.
func ToAnonymized(d Decision) AnonymizedDecision {
	return AnonymizedDecision{
		UserHash:     UserHash(d.SubjectID),
		Action:       d.Action,
		ResourceType: d.ResourceType,
		Result:       d.Result,
		Reason:       RedactReason(d.Reason),
		PolicyName:   d.PolicyName,
		Timestamp:    d.Timestamp,
	}
}
