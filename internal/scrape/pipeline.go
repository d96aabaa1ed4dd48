package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/dtnitsch/bac-archiver/internal/common"
	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/archive"
	"github.com/dtnitsch/bac-archiver/pkg/classify"
	"github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/dtnitsch/bac-archiver/pkg/fetcher"
	"github.com/dtnitsch/bac-archiver/pkg/ledger"
	"github.com/dtnitsch/bac-archiver/pkg/manifest"
	"github.com/dtnitsch/bac-archiver/pkg/placement"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
	"github.com/dtnitsch/bac-archiver/pkg/sink"
)

// Pipeline discovers archives on publisher pages, classifies the documents
// inside them and writes each one to its canonical destinations.
type Pipeline struct {
	Source   Source
	Parser   *classify.Parser
	Planner  *placement.Planner
	Ledger   *ledger.Ledger
	Sink     sink.Sink
	Recorder Recorder
	RunID    int64
	Logger   *slog.Logger

	Year       string
	Extensions []string
	Workers    int
}

// New wires a pipeline from a rule set. Callers set Source, Ledger, Sink and
// the optional Recorder.
func New(rs *rules.RuleSet, year string) *Pipeline {
	return &Pipeline{
		Parser:     classify.New(rs),
		Planner:    placement.New(rs),
		Year:       year,
		Extensions: rs.Extensions,
		Workers:    1,
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// Run processes every page in order. Page and source failures are logged
// and recorded; they never stop the run. Cancelling ctx stops after the
// document in flight.
func (p *Pipeline) Run(ctx context.Context, pages []string) Report {
	var report Report
	for _, pageURL := range pages {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		report.Pages++

		links, err := p.discover(ctx, pageURL)
		if err != nil {
			report.PagesFailed++
			p.Logger.Error("Failed to scan page", "page", pageURL, "error", err, "error_type", models.ErrorType(err))
			continue
		}
		p.Logger.Info("Discovered archives", "page", pageURL, "count", len(links))

		report.Sources = append(report.Sources, p.processLinks(ctx, links)...)
	}
	if ctx.Err() != nil {
		report.Interrupted = true
	}
	return report
}

func (p *Pipeline) discover(ctx context.Context, pageURL string) ([]models.SourceLink, error) {
	doc, err := p.Source.GetHtml(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	links, err := fetcher.DiscoverLinks(doc, pageURL, p.Year)
	if err != nil {
		return nil, err
	}
	if s, ok := p.Parser.Classifier().FromOrigin(pageURL); ok {
		for i := range links {
			links[i].SessionHint = s
		}
	}
	return links, nil
}

// ProcessSource handles one archive URL end to end. The URL is marked in
// the ledger only when at least one document was placed.
func (p *Pipeline) ProcessSource(ctx context.Context, link models.SourceLink) manifest.SourceResult {
	result := manifest.SourceResult{Link: link}

	if !p.Ledger.Reserve(link.URL) {
		result.Status = manifest.StatusSkipped
		p.Logger.Debug("Skipping processed source", "url", link.URL)
		p.recordSource(result)
		return result
	}

	placed, complete := 0, false
	defer func() {
		if placed > 0 && complete {
			p.Ledger.MarkProcessed(link.URL)
		} else {
			p.Ledger.Release(link.URL)
		}
	}()

	data, err := p.Source.GetArchive(ctx, link.URL)
	if err != nil {
		result.Status, result.Err = manifest.StatusFailed, err
		p.Logger.Error("Error fetching archive", "url", link.URL, "error", err, "error_type", models.ErrorTypeFetch)
		p.recordSource(result)
		return result
	}

	entries, skipped, err := archive.Unpack(data, p.Extensions)
	if err != nil {
		result.Status = manifest.StatusFailed
		result.Err = &models.UnpackFailure{Archive: link.URL, Err: err}
		p.Logger.Error("Error unpacking archive", "url", link.URL, "error", err, "error_type", models.ErrorTypeUnpack)
		p.recordSource(result)
		return result
	}

	failed := 0
	for _, bad := range skipped {
		bad.Archive = link.URL
		doc := p.failDocument(link, manifest.DocumentResult{Name: path.Base(bad.Entry)}, bad)
		result.Documents = append(result.Documents, doc)
		failed++
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Err = ctx.Err()
			break
		}
		doc := p.ProcessDocument(ctx, link, entry)
		switch {
		case doc.Placed():
			placed++
		case doc.Outcome == manifest.OutcomeFailed:
			failed++
		}
		result.Documents = append(result.Documents, doc)
	}
	// An interrupted archive is retried as a whole on the next run.
	complete = ctx.Err() == nil

	switch {
	case placed > 0:
		result.Status = manifest.StatusProcessed
	case failed > 0:
		result.Status = manifest.StatusFailed
		result.Err = fmt.Errorf("no document placed, %d failed", failed)
	default:
		result.Status = manifest.StatusEmpty
	}
	p.Logger.Info("Finished source", "url", link.URL, "status", result.Status, "documents", len(entries)+len(skipped), "placed", placed, "failed", failed)
	p.recordSource(result)
	return result
}

// ProcessDocument classifies, plans and writes one extracted document.
// A fan-out document counts as placed only if every destination succeeded.
func (p *Pipeline) ProcessDocument(ctx context.Context, link models.SourceLink, entry models.ArchiveEntry) manifest.DocumentResult {
	name := path.Base(entry.Name)
	result := manifest.DocumentResult{Name: name}

	if p.Parser.IsExcludedVariant(name) {
		result.Outcome = manifest.OutcomeExcluded
		p.Logger.Debug("Skipping excluded variant", "document", name, "source", link.URL)
		return result
	}

	d, err := p.Parser.ParseWithOrigin(link.Origin, path.Base(link.URL), name)
	if err != nil {
		return p.failDocument(link, result, err)
	}
	result.Descriptor = &d

	decision, err := p.Planner.Plan(d)
	if err != nil {
		return p.failDocument(link, result, err)
	}
	result.Decision = &decision
	p.Logger.Debug("Planned document", "source", link.URL, "placement", placement.Describe(decision))

	hash := common.ContentHash(entry.Data)
	combined := sink.Written
	for i, dir := range decision.Destinations {
		outcome, err := p.Sink.Put(ctx, dir, decision.Filename, entry.Data)
		key := decision.Keys()[i]
		if err != nil {
			p.recordPlacement(link, d, key, manifest.OutcomeFailed, err, entry.Data, hash)
			return p.failDocument(link, result, err)
		}
		if outcome == sink.Conflict {
			conflict := &models.PlacementConflict{Key: key}
			p.Logger.Warn("Overwrote differing content", "document", name, "key", key, "warning", conflict.Error())
		}
		combined = combine(combined, outcome, i == 0)
		p.recordPlacement(link, d, key, outcome.String(), nil, entry.Data, hash)
	}

	result.Outcome = combined.String()
	p.Logger.Info("Placed document", "document", name, "subject", d.Subject, "session", d.Session.String(), "destinations", len(decision.Destinations), "outcome", result.Outcome)
	return result
}

func (p *Pipeline) failDocument(link models.SourceLink, result manifest.DocumentResult, err error) manifest.DocumentResult {
	result.Outcome = manifest.OutcomeFailed
	result.Err = err
	p.Logger.Error("Failed to place document", "document", result.Name, "source", link.URL, "error", err, "error_type", models.ErrorType(err))
	if result.Decision == nil {
		d := models.ExamDescriptor{Filename: result.Name}
		if result.Descriptor != nil {
			d = *result.Descriptor
		}
		p.recordPlacement(link, d, "", manifest.OutcomeFailed, err, nil, "")
	}
	return result
}

// combine folds per-destination outcomes. Unchanged survives only when
// every destination was unchanged.
func combine(acc, next sink.Outcome, first bool) sink.Outcome {
	if first {
		return next
	}
	switch {
	case acc == sink.Conflict || next == sink.Conflict:
		return sink.Conflict
	case acc == sink.Skipped || next == sink.Skipped:
		return sink.Skipped
	case acc == sink.Unchanged && next == sink.Unchanged:
		return sink.Unchanged
	default:
		return sink.Written
	}
}

func (p *Pipeline) recordSource(result manifest.SourceResult) {
	if p.Recorder == nil || p.RunID == 0 {
		return
	}
	src := db.RunSource{
		URL:       result.Link.URL,
		Origin:    result.Link.Origin,
		Status:    result.Status,
		Documents: len(result.Documents),
	}
	if result.Err != nil {
		src.ErrorType = models.ErrorType(result.Err)
		src.ErrorMessage = result.Err.Error()
	}
	if err := p.Recorder.InsertRunSource(p.RunID, src); err != nil {
		p.Logger.Warn("Failed to record source", "url", result.Link.URL, "error", err)
	}
}

func (p *Pipeline) recordPlacement(link models.SourceLink, d models.ExamDescriptor, key, outcome string, placeErr error, data []byte, hash string) {
	if p.Recorder == nil || p.RunID == 0 {
		return
	}
	rec := db.Placement{
		SourceURL:   link.URL,
		Document:    d.Filename,
		Destination: key,
		Subject:     d.Subject,
		Outcome:     outcome,
		SizeBytes:   int64(len(data)),
		ContentHash: hash,
	}
	if d.Subject != "" {
		rec.Session = d.Session.String()
	}
	if placeErr != nil {
		rec.ErrorType = models.ErrorType(placeErr)
		rec.ErrorMessage = placeErr.Error()
	}
	if err := p.Recorder.InsertPlacement(p.RunID, rec); err != nil {
		p.Logger.Warn("Failed to record placement", "key", key, "error", err)
	}
}
