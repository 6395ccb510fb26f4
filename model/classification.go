// api/model/classification.go
package model

// Classification is a resource's declared sensitivity tier. Each tier maps
// 1:1 to the clearance level a subject must hold to read the resource.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationConfidential Classification = "confidential"
	ClassificationSecret       Classification = "secret"
	ClassificationTopSecret    Classification = "top_secret"
)

var classificationLevels = map[Classification]int{
	ClassificationPublic:       1,
	ClassificationConfidential: 2,
	ClassificationSecret:       3,
	ClassificationTopSecret:    4,
}

// RequiredLevel returns the clearance level a classification demands and
// whether the classification is known. Unknown classifications must be
// treated as a denial by callers, never as public.
func (c Classification) RequiredLevel() (int, bool) {
	level, ok := classificationLevels[c]
	return level, ok
}
