package sink

import (
	"context"
	"sort"
	"sync"
)

// DryRun records destination keys without writing anything.
type DryRun struct {
	mu   sync.Mutex
	keys []string
}

func NewDryRun() *DryRun {
	return &DryRun{}
}

func (d *DryRun) Put(ctx context.Context, dir, filename string, data []byte) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, Key(dir, filename))
	return Skipped, nil
}

// Keys returns the recorded keys in sorted order.
func (d *DryRun) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]string(nil), d.keys...)
	sort.Strings(out)
	return out
}
