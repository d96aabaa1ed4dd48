package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/db"
	"github.com/dtnitsch/bac-archiver/pkg/manifest"
)

// Source fetches publisher pages and archives. *fetcher.Fetcher implements it.
type Source interface {
	GetHtml(ctx context.Context, pageURL string) (*goquery.Document, error)
	GetArchive(ctx context.Context, archiveURL string) ([]byte, error)
}

// Recorder stores run history. *db.DB implements it.
type Recorder interface {
	InsertRunSource(runID int64, src db.RunSource) error
	InsertPlacement(runID int64, p db.Placement) error
}

// Job is one archive handed to a worker. Index keeps results in link order.
type Job struct {
	Index int
	Link  models.SourceLink
}

// Result pairs a job index with its outcome.
type Result struct {
	Index  int
	Source manifest.SourceResult
}

// Report is what a pipeline run produced.
type Report struct {
	Pages       int
	PagesFailed int
	Interrupted bool
	Sources     []manifest.SourceResult
}
