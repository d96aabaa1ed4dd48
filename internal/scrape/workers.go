package scrape

import (
	"context"
	"sync"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/manifest"
)

// processLinks runs the archives of one page. With one worker they are
// handled in order on the calling goroutine; otherwise a pool drains a jobs
// channel and results are put back in link order.
func (p *Pipeline) processLinks(ctx context.Context, links []models.SourceLink) []manifest.SourceResult {
	if p.Workers <= 1 || len(links) <= 1 {
		out := make([]manifest.SourceResult, 0, len(links))
		for _, link := range links {
			if ctx.Err() != nil {
				break
			}
			out = append(out, p.ProcessSource(ctx, link))
		}
		return out
	}

	workers := p.Workers
	if workers > len(links) {
		workers = len(links)
	}
	p.Logger.Info("Starting archive workers", "archives", len(links), "workers", workers)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(links))
	results := make(chan Result, len(links))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, &wg, jobs, results)
	}

	for i, link := range links {
		jobs <- Job{Index: i, Link: link}
	}
	close(jobs)

	wg.Wait()
	close(results)

	ordered := make([]*manifest.SourceResult, len(links))
	for r := range results {
		ordered[r.Index] = &r.Source
	}
	out := make([]manifest.SourceResult, 0, len(links))
	for _, r := range ordered {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (p *Pipeline) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		if ctx.Err() != nil {
			continue // drain
		}
		p.Logger.Debug("Worker started job", "worker_id", id, "url", job.Link.URL)
		results <- Result{Index: job.Index, Source: p.ProcessSource(ctx, job.Link)}
	}
}
