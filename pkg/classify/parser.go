// Package classify turns raw document names into exam descriptors.
//
// The parser runs an ordered list of structural patterns over the
// lower-cased name and stops at the first one that matches. Subject,
// specialization, session and role are then filled in from the rule
// tables, with fixed defaults for anything the name does not carry.
package classify

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

const yearExpr = `(?P<year>(?:19|20)\d{2})`

// shape is what a structural pattern extracts from a name.
type shape struct {
	probe   string
	subject string
	year    string
}

// pattern is one predicate+extractor pair in the cascade. A stem matching
// skip is left for a later pattern.
type pattern struct {
	name string
	re   *regexp.Regexp
	skip *regexp.Regexp
}

func (p pattern) match(stem string) (shape, bool) {
	if p.skip != nil && p.skip.MatchString(stem) {
		return shape{}, false
	}
	m := p.re.FindStringSubmatch(stem)
	if m == nil {
		return shape{}, false
	}
	var s shape
	for i, group := range p.re.SubexpNames() {
		switch group {
		case "probe":
			s.probe = m[i]
		case "subject":
			s.subject = m[i]
		case "year":
			s.year = m[i]
		}
	}
	return s, true
}

func buildPatterns(probes []string) []pattern {
	letters := `[` + regexp.QuoteMeta(strings.Join(probes, "")) + `]`
	probe := `(?P<probe>` + letters + `)`
	subject := `(?P<subject>[a-z][a-z0-9_\-]*?)`
	// An e_<letter>_ name never carries its subject in the first token.
	letterPrefix := `^e_` + letters + `_`
	defs := []struct{ name, expr, skip string }{
		{"probe-subject-year-tail", `^e_` + probe + `_` + subject + `_` + yearExpr + `_.+$`, ""},
		{"probe-subject-year", `^e_` + probe + `_` + subject + `_` + yearExpr + `$`, ""},
		{"prefixed-year-probe-subject", `^bac_` + yearExpr + `_e_` + probe + `_(?P<subject>.+)$`, ""},
		{"probe-year-subject", `^e_` + probe + `_` + yearExpr + `_(?P<subject>.+)$`, ""},
		{"subject-year", `^` + subject + `_` + yearExpr + `(?:_.+)?$`, letterPrefix},
		{"probe-year", `^e_` + probe + `_(?:.*_)?` + yearExpr + `(?:_.*)?$`, ""},
	}
	patterns := make([]pattern, len(defs))
	for i, d := range defs {
		patterns[i] = pattern{name: d.name, re: regexp.MustCompile(d.expr)}
		if d.skip != "" {
			patterns[i].skip = regexp.MustCompile(d.skip)
		}
	}
	return patterns
}

// Parser classifies document names against one rule set.
type Parser struct {
	rules      *rules.RuleSet
	resolver   *Resolver
	classifier *Classifier
	patterns   []pattern
	answerKeys map[string]bool
}

// New builds a parser, resolver and classifier from the same rule set.
func New(rs *rules.RuleSet) *Parser {
	answerKeys := make(map[string]bool, len(rs.AnswerKeyKeywords))
	for _, kw := range rs.AnswerKeyKeywords {
		answerKeys[kw] = true
	}
	return &Parser{
		rules:      rs,
		resolver:   NewResolver(rs),
		classifier: NewClassifier(rs),
		patterns:   buildPatterns(rs.Probes),
		answerKeys: answerKeys,
	}
}

func (p *Parser) Classifier() *Classifier { return p.classifier }

// Parse classifies a name with no origin page or archive context.
func (p *Parser) Parse(raw string) (models.ExamDescriptor, error) {
	return p.ParseWithOrigin("", "", raw)
}

// ParseWithOrigin classifies a document name. origin is the page the
// archive was linked from and archive is the archive's own filename; both
// only feed session classification.
func (p *Parser) ParseWithOrigin(origin, archive, raw string) (models.ExamDescriptor, error) {
	filename := path.Base(strings.ReplaceAll(raw, `\`, "/"))
	lower := strings.ToLower(filename)
	stem := p.matchStem(lower)

	var (
		s       shape
		matched string
	)
	for _, pat := range p.patterns {
		if found, ok := pat.match(stem); ok {
			s, matched = found, pat.name
			break
		}
	}
	if matched == "" {
		return models.ExamDescriptor{}, &models.ParseFailure{Filename: filename, Reason: "no structural pattern matched"}
	}

	subject := p.NormalizeSubject(s.subject)
	if subject == models.SubjectUnknown {
		if def, ok := p.rules.ProbeDefaults[s.probe]; ok {
			subject = def
		}
	}
	if subject == models.SubjectUnknown {
		return models.ExamDescriptor{}, &models.ParseFailure{
			Filename: filename,
			Reason:   fmt.Sprintf("subject %q not recognized (pattern %s)", s.subject, matched),
		}
	}

	return models.ExamDescriptor{
		Probe:          s.probe,
		RawSubject:     s.subject,
		Subject:        subject,
		Specialization: p.resolver.Resolve(subject, lower),
		Year:           s.year,
		Session:        p.classifier.ClassifyFirst(origin, filename, path.Base(archive)),
		Role:           p.role(stem),
		Filename:       filename,
		Pattern:        matched,
	}, nil
}

// NormalizeSubject maps a raw subject token to the subject vocabulary:
// exact match, then containment in dictionary order, then stems.
func (p *Parser) NormalizeSubject(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return models.SubjectUnknown
	}
	for _, r := range p.rules.Subjects {
		if token == r.Keyword {
			return r.Subject
		}
	}
	for _, r := range p.rules.Subjects {
		if strings.Contains(token, r.Keyword) {
			return r.Subject
		}
	}
	for _, r := range p.rules.SubjectStems {
		if strings.Contains(token, r.Keyword) {
			return r.Subject
		}
	}
	return models.SubjectUnknown
}

// IsExcludedVariant reports whether a document is a minority-language
// variant or explicitly marked for minority students.
func (p *Parser) IsExcludedVariant(raw string) bool {
	lower := strings.ToLower(path.Base(raw))
	if containsAny(lower, p.rules.ExcludedMarkers) {
		return true
	}
	primary := strings.ToLower(p.rules.PrimaryLanguage)
	for _, suffix := range p.rules.LanguageSuffixes {
		s := strings.ToLower(suffix)
		if s == primary {
			continue
		}
		if hasMarker(lower, s) {
			return true
		}
	}
	return false
}

func (p *Parser) role(stem string) models.DocumentRole {
	for _, tok := range tokenize(stem) {
		if p.answerKeys[tok] {
			return models.RoleAnswerKey
		}
	}
	return models.RoleVariant
}

// matchStem drops the extension and a trailing language marker so that
// structural patterns see only the exam metadata.
func (p *Parser) matchStem(lower string) string {
	stem := stripExt(lower)
	for _, suffix := range p.rules.LanguageSuffixes {
		if s := strings.ToLower(suffix); strings.HasSuffix(stem, s) {
			return strings.TrimSuffix(stem, s)
		}
	}
	return stem
}

// hasMarker finds marker in s where it is not followed by another letter,
// so "_lma" matches "x_lma.pdf" but not "x_lmate".
func hasMarker(s, marker string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], marker)
		if i < 0 {
			return false
		}
		end := from + i + len(marker)
		if end == len(s) || !isLetter(s[end]) {
			return true
		}
		from = from + i + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}
