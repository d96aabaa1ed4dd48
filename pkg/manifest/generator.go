package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/bac-archiver/models"
)

// Source status values
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// Document outcome values beyond the sink outcomes
const (
	OutcomeExcluded = "excluded"
	OutcomeFailed   = "failed"
)

// SourceResult is what the pipeline reports for one archive URL.
// This lives here so the pipeline and the summary share one shape.
type SourceResult struct {
	Link      models.SourceLink
	Status    string
	Err       error
	Documents []DocumentResult
}

// DocumentResult is what the pipeline reports for one extracted document.
type DocumentResult struct {
	Name       string
	Descriptor *models.ExamDescriptor
	Decision   *models.PlacementDecision
	Outcome    string
	Err        error
}

// Placed reports whether the document reached every destination.
func (d DocumentResult) Placed() bool {
	return d.Err == nil && d.Outcome != OutcomeExcluded && d.Outcome != OutcomeFailed && d.Decision != nil
}

// RunInfo carries the run-level values that are not derived from results.
type RunInfo struct {
	RunID        int64
	Year         string
	DryRun       bool
	RulesVersion string
	Interrupted  bool
	Pages        int
	PagesFailed  int
	LedgerSize   int
	NewSources   int
}

// Build aggregates pipeline results into a summary.
func Build(info RunInfo, results []SourceResult) RunSummary {
	summary := RunSummary{
		RunID:        info.RunID,
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Year:         info.Year,
		DryRun:       info.DryRun,
		RulesVersion: info.RulesVersion,
		Interrupted:  info.Interrupted,
		Pages:        info.Pages,
		PagesFailed:  info.PagesFailed,
		LedgerSize:   info.LedgerSize,
		NewSources:   info.NewSources,
		SourcesSeen:  len(results),
	}

	var subjects, sessions []map[string]int
	for _, result := range results {
		src := SourceSummary{
			URL:    result.Link.URL,
			Origin: result.Link.Origin,
			Status: result.Status,
		}
		if result.Err != nil {
			src.ErrorType = models.ErrorType(result.Err)
			src.ErrorMessage = result.Err.Error()
		}

		switch result.Status {
		case StatusSkipped:
			summary.SourcesSkipped++
		case StatusFailed:
			summary.SourcesFailed++
		case StatusEmpty:
			summary.SourcesEmpty++
		}

		subjectCounts := make(map[string]int)
		sessionCounts := make(map[string]int)
		for _, doc := range result.Documents {
			ds := DocumentSummary{Name: doc.Name, Outcome: doc.Outcome}
			if doc.Descriptor != nil {
				ds.Subject = doc.Descriptor.Subject
				ds.Session = doc.Descriptor.Session.String()
			}
			if doc.Decision != nil {
				ds.Destinations = doc.Decision.Keys()
			}
			if doc.Err != nil {
				ds.ErrorType = models.ErrorType(doc.Err)
				ds.ErrorMessage = doc.Err.Error()
			}

			switch {
			case doc.Outcome == OutcomeExcluded:
				summary.DocumentsExcluded++
				ds.ErrorType = models.ErrorTypeExcluded
			case !doc.Placed():
				summary.DocumentsFailed++
			case doc.Outcome == "unchanged":
				summary.DocumentsUnchanged++
			case doc.Outcome == "conflict":
				summary.DocumentsConflict++
				summary.DocumentsPlaced++
			default:
				summary.DocumentsPlaced++
			}
			if doc.Placed() {
				subjectCounts[ds.Subject]++
				sessionCounts[ds.Session]++
			}

			src.Documents = append(src.Documents, ds)
		}
		subjects = append(subjects, subjectCounts)
		sessions = append(sessions, sessionCounts)

		summary.Sources = append(summary.Sources, src)
	}

	summary.TopSubjects = Top(Reduce(subjects), 10)
	summary.TopSessions = Top(Reduce(sessions), 10)
	return summary
}

// Write renders the summary as json or yaml.
func Write(w io.Writer, summary RunSummary, format string) error {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshalling summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("error marshalling summary: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
