// Package rules holds the classification tables used by the filename
// parser, the specialization resolver, the session classifier and the
// placement planner. Tables are plain data loaded from YAML so that they
// can be versioned, reviewed and swapped in tests.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// KeywordRule maps a keyword (or stem) to a normalized subject.
type KeywordRule struct {
	Keyword string `yaml:"keyword"`
	Subject string `yaml:"subject"`
}

// TrackGroup is the positive evidence for one specialization track.
type TrackGroup struct {
	Track    string   `yaml:"track"`
	Keywords []string `yaml:"keywords"`
}

// SpecializationRule is the table default plus ordered contextual overrides.
type SpecializationRule struct {
	Default string       `yaml:"default"`
	Groups  []TrackGroup `yaml:"groups"`
}

// SessionRule maps a keyword to a session type.
type SessionRule struct {
	Keyword string             `yaml:"keyword"`
	Session models.SessionType `yaml:"session"`
}

// SessionRules is the precedence-ordered evidence for the session classifier.
type SessionRules struct {
	Origin         []SessionRule                 `yaml:"origin"`
	RetakeKeywords []string                      `yaml:"retake_keywords"`
	Retake         []SessionRule                 `yaml:"retake"`
	RetakeDefault  models.SessionType            `yaml:"retake_default"`
	Keywords       []SessionRule                 `yaml:"keywords"`
	Codes          map[string]models.SessionType `yaml:"codes"`
}

// RuleSet is one complete, versioned set of classification tables.
type RuleSet struct {
	Version            string                        `yaml:"version"`
	Probes             []string                      `yaml:"probes"`
	ProbeDefaults      map[string]string             `yaml:"probe_defaults"`
	Subjects           []KeywordRule                 `yaml:"subjects"`
	SubjectStems       []KeywordRule                 `yaml:"subject_stems"`
	Specializations    map[string]SpecializationRule `yaml:"specializations"`
	Sessions           SessionRules                  `yaml:"sessions"`
	AnswerKeyKeywords  []string                      `yaml:"answer_key_keywords"`
	VariantKeywords    []string                      `yaml:"variant_keywords"`
	LanguageSuffixes   []string                      `yaml:"language_suffixes"`
	PrimaryLanguage    string                        `yaml:"primary_language"`
	ExcludedMarkers    []string                      `yaml:"excluded_markers"`
	FanOut             map[string][]string           `yaml:"fan_out"`
	Bucket             string                        `yaml:"bucket"`
	GeneralSubcategory string                        `yaml:"general_subcategory"`
	Extensions         []string                      `yaml:"extensions"`
}

// Default returns the embedded rule set.
func Default() *RuleSet {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rs
}

// Load reads and validates a rule set from a YAML file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rs, nil
}

// LoadOrDefault loads path, or returns the embedded rules when path is empty.
func LoadOrDefault(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates a YAML rule set. Unknown fields are rejected.
func Parse(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	rs := &RuleSet{}
	if err := dec.Decode(rs); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	rs.normalize()
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Marshal renders the rule set back to YAML.
func (rs *RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(rs)
}

// normalize lower-cases every keyword table so matchers can compare
// against lower-cased names. Language suffixes keep their case.
func (rs *RuleSet) normalize() {
	lower := func(in []string) {
		for i := range in {
			in[i] = strings.ToLower(in[i])
		}
	}
	lower(rs.Probes)
	lower(rs.AnswerKeyKeywords)
	lower(rs.VariantKeywords)
	lower(rs.ExcludedMarkers)
	lower(rs.Extensions)
	lower(rs.Sessions.RetakeKeywords)
	for i := range rs.Subjects {
		rs.Subjects[i].Keyword = strings.ToLower(rs.Subjects[i].Keyword)
	}
	for i := range rs.SubjectStems {
		rs.SubjectStems[i].Keyword = strings.ToLower(rs.SubjectStems[i].Keyword)
	}
	for _, spec := range rs.Specializations {
		for i := range spec.Groups {
			lower(spec.Groups[i].Keywords)
		}
	}
	for _, list := range [][]SessionRule{rs.Sessions.Origin, rs.Sessions.Retake, rs.Sessions.Keywords} {
		for i := range list {
			list[i].Keyword = strings.ToLower(list[i].Keyword)
		}
	}
	if rs.Bucket == "" {
		rs.Bucket = "pages"
	}
	if rs.GeneralSubcategory == "" {
		rs.GeneralSubcategory = models.SpecializationGeneral
	}
}

// Validate checks the structural invariants the classifier relies on.
func (rs *RuleSet) Validate() error {
	if len(rs.Subjects) == 0 {
		return fmt.Errorf("rules: subject dictionary is empty")
	}
	for _, p := range rs.Probes {
		if len(p) != 1 {
			return fmt.Errorf("rules: probe %q must be a single letter", p)
		}
	}
	for probe, subject := range rs.ProbeDefaults {
		if !rs.IsProbe(probe) {
			return fmt.Errorf("rules: probe default %q is not a declared probe", probe)
		}
		if !rs.IsSubject(subject) {
			return fmt.Errorf("rules: probe default %q maps to unknown subject %q", probe, subject)
		}
	}
	for _, r := range append(append([]KeywordRule{}, rs.Subjects...), rs.SubjectStems...) {
		if r.Keyword == "" || r.Subject == "" {
			return fmt.Errorf("rules: subject entry %+v is incomplete", r)
		}
	}
	for subject, spec := range rs.Specializations {
		for _, g := range spec.Groups {
			if g.Track == "" || len(g.Keywords) == 0 {
				return fmt.Errorf("rules: specialization group for %q is incomplete", subject)
			}
		}
	}
	for code := range rs.Sessions.Codes {
		if len(code) != 2 || strings.Trim(code, "0123456789") != "" {
			return fmt.Errorf("rules: session code %q must be two digits", code)
		}
	}
	if len(rs.Sessions.Retake) > 0 && len(rs.Sessions.RetakeKeywords) == 0 {
		return fmt.Errorf("rules: retake sessions declared without retake keywords")
	}
	for sub, tracks := range rs.FanOut {
		if len(tracks) != 2 {
			return fmt.Errorf("rules: fan-out %q must list exactly two tracks, got %d", sub, len(tracks))
		}
		if tracks[0] == tracks[1] {
			return fmt.Errorf("rules: fan-out %q lists the same track twice", sub)
		}
	}
	for _, s := range rs.LanguageSuffixes {
		if !strings.HasPrefix(s, "_") {
			return fmt.Errorf("rules: language suffix %q must start with an underscore", s)
		}
	}
	if len(rs.Extensions) == 0 {
		return fmt.Errorf("rules: no document extensions configured")
	}
	return nil
}

// IsProbe reports whether p is a declared probe letter.
func (rs *RuleSet) IsProbe(p string) bool {
	for _, probe := range rs.Probes {
		if probe == p {
			return true
		}
	}
	return false
}

// IsSubject reports whether s is a normalized subject in the dictionary.
func (rs *RuleSet) IsSubject(s string) bool {
	for _, r := range rs.Subjects {
		if r.Subject == s {
			return true
		}
	}
	return false
}

// HasExtension reports whether name ends in one of the document extensions.
func (rs *RuleSet) HasExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range rs.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
