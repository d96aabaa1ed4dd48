package classify

import (
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

// Classifier derives the exam session from origin page and filename evidence.
type Classifier struct {
	rules rules.SessionRules
	roles map[string]bool
}

func NewClassifier(rs *rules.RuleSet) *Classifier {
	roles := make(map[string]bool)
	for _, kw := range rs.AnswerKeyKeywords {
		roles[kw] = true
	}
	for _, kw := range rs.VariantKeywords {
		roles[kw] = true
	}
	return &Classifier{rules: rs.Sessions, roles: roles}
}

// Classify applies the precedence cascade: origin page taxonomy, retake
// combinations, plain keywords, numeric session codes, then Unspecified.
func (c *Classifier) Classify(origin, filename string) models.SessionType {
	if s, ok := c.FromOrigin(origin); ok {
		return s
	}
	return c.FromName(filename)
}

// ClassifyFirst is Classify over several candidate names: the origin is
// checked once, then each name in turn until one yields a session.
func (c *Classifier) ClassifyFirst(origin string, names ...string) models.SessionType {
	if s, ok := c.FromOrigin(origin); ok {
		return s
	}
	for _, name := range names {
		if s := c.FromName(name); s != models.SessionUnspecified {
			return s
		}
	}
	return models.SessionUnspecified
}

// FromOrigin checks the origin page URL only.
func (c *Classifier) FromOrigin(origin string) (models.SessionType, bool) {
	if origin == "" {
		return models.SessionUnspecified, false
	}
	return firstKeyword(strings.ToLower(origin), c.rules.Origin)
}

// FromName checks the filename only (levels 2 to 5 of the cascade).
func (c *Classifier) FromName(filename string) models.SessionType {
	lower := strings.ToLower(filename)

	if containsAny(lower, c.rules.RetakeKeywords) {
		if s, ok := firstKeyword(lower, c.rules.Retake); ok {
			return s
		}
		if c.rules.RetakeDefault != models.SessionUnspecified {
			return c.rules.RetakeDefault
		}
	}

	if s, ok := firstKeyword(lower, c.rules.Keywords); ok {
		return s
	}

	if s, ok := c.fromCode(lower); ok {
		return s
	}
	return models.SessionUnspecified
}

// fromCode looks for a two-digit token that is not a variant or answer-key
// number (var_06 is variant six, not June).
func (c *Classifier) fromCode(lower string) (models.SessionType, bool) {
	tokens := tokenize(stripExt(lower))
	for i, tok := range tokens {
		if len(tok) != 2 {
			continue
		}
		if i > 0 && c.roles[tokens[i-1]] {
			continue
		}
		if s, ok := c.rules.Codes[tok]; ok {
			return s, true
		}
	}
	return models.SessionUnspecified, false
}

func firstKeyword(lower string, table []rules.SessionRule) (models.SessionType, bool) {
	for _, r := range table {
		if strings.Contains(lower, r.Keyword) {
			return r.Session, true
		}
	}
	return models.SessionUnspecified, false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
