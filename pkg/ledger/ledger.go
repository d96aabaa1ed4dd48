// Package ledger tracks which source archives have already been processed.
//
// Membership is checked before a source is fetched. A URL is marked only
// after at least one document from it was fully placed, so a failed or empty
// source is retried on the next run.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store persists the ledger's URL set between runs.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, urls []string) error
}

// Ledger is the in-memory set of processed source URLs. It is safe for
// concurrent use.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	done     map[string]struct{}
	reserved map[string]struct{}
	added    int
}

func New(store Store) *Ledger {
	return &Ledger{
		store:    store,
		done:     make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the store's contents.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	urls, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u != "" {
			l.done[u] = struct{}{}
		}
	}
	l.added = 0
	return nil
}

// Persist writes the full set back to the store.
func (l *Ledger) Persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.URLs()); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

func (l *Ledger) Contains(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[url]
	return ok
}

// Reserve claims url for the caller. It returns false when the URL is
// already processed or another worker holds it.
func (l *Ledger) Reserve(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.done[url]; ok {
		return false
	}
	if _, ok := l.reserved[url]; ok {
		return false
	}
	l.reserved[url] = struct{}{}
	return true
}

// Release drops a reservation without marking the URL.
func (l *Ledger) Release(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reserved, url)
}

// MarkProcessed records url and clears any reservation on it.
func (l *Ledger) MarkProcessed(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reserved, url)
	if _, ok := l.done[url]; ok {
		return
	}
	l.done[url] = struct{}{}
	l.added++
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// Added is the number of URLs marked since the last Load.
func (l *Ledger) Added() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added
}

// URLs returns the processed set in sorted order.
func (l *Ledger) URLs() []string {
	l.mu.Lock()
	urls := make([]string, 0, len(l.done))
	for u := range l.done {
		urls = append(urls, u)
	}
	l.mu.Unlock()

	sort.Strings(urls)
	return urls
}
