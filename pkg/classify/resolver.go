package classify

import (
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

// Resolver picks the specialization track for a subject.
type Resolver struct {
	table map[string]rules.SpecializationRule
}

func NewResolver(rs *rules.RuleSet) *Resolver {
	return &Resolver{table: rs.Specializations}
}

// Resolve returns the track for subject. Subjects without keyword groups
// get their table default; the others take the first group whose keywords
// occur in the filename context, falling back to the default.
func (r *Resolver) Resolve(subject, context string) string {
	rule, ok := r.table[subject]
	if !ok {
		return models.SpecializationGeneral
	}
	def := rule.Default
	if def == "" {
		def = models.SpecializationGeneral
	}
	if len(rule.Groups) == 0 {
		return def
	}

	lower := strings.ToLower(context)
	for _, g := range rule.Groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Track
			}
		}
	}
	return def
}
