// Package placement maps exam descriptors to canonical storage locations.
package placement

import (
	"fmt"
	"path"
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

// Planner builds placement decisions from a fixed rule set. It holds no
// mutable state, so the same descriptor always yields the same decision.
type Planner struct {
	bucket   string
	general  string
	suffixes []string
	fanOut   map[string][]string
}

func New(rs *rules.RuleSet) *Planner {
	return &Planner{
		bucket:   rs.Bucket,
		general:  rs.GeneralSubcategory,
		suffixes: rs.LanguageSuffixes,
		fanOut:   rs.FanOut,
	}
}

// Plan returns the destination directories and cleaned filename for d.
// Destinations follow {subject}/{bucket}/{subcategory}/{year}/{session}.
func (p *Planner) Plan(d models.ExamDescriptor) (models.PlacementDecision, error) {
	if d.Subject == "" || d.Subject == models.SubjectUnknown {
		return models.PlacementDecision{}, &models.ParseFailure{Filename: d.Filename, Reason: "subject is unknown"}
	}
	if d.Year == "" {
		return models.PlacementDecision{}, &models.ParseFailure{Filename: d.Filename, Reason: "year is missing"}
	}

	subcategory := p.Subcategory(d.Specialization)
	tracks, fanOut := p.fanOut[subcategory]
	if !fanOut {
		tracks = []string{subcategory}
	}

	dests := make([]string, 0, len(tracks))
	for _, track := range tracks {
		dests = append(dests, path.Join(d.Subject, p.bucket, track, d.Year, d.Session.Dir()))
	}

	return models.PlacementDecision{
		Destinations: dests,
		Filename:     p.CleanFilename(d.Filename),
	}, nil
}

// Subcategory maps a specialization to its directory segment.
func (p *Planner) Subcategory(specialization string) string {
	if specialization == "" || specialization == models.SpecializationGeneral {
		return p.general
	}
	return specialization
}

// CleanFilename strips the first known language suffix that sits directly
// before the extension. At most one suffix is removed.
func (p *Planner) CleanFilename(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for _, suffix := range p.suffixes {
		if len(stem) > len(suffix) && strings.EqualFold(stem[len(stem)-len(suffix):], suffix) {
			return stem[:len(stem)-len(suffix)] + ext
		}
	}
	return name
}

// Describe renders a decision for logs.
func Describe(d models.PlacementDecision) string {
	return fmt.Sprintf("%s -> %s", d.Filename, strings.Join(d.Destinations, ", "))
}
