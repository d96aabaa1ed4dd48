// Package sink writes placed documents to their final storage.
package sink

import (
	"context"
	"path"
	"strings"
)

// Outcome describes what a Put did at the destination.
type Outcome int

const (
	Written Outcome = iota
	Unchanged
	Conflict
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case Unchanged:
		return "unchanged"
	case Conflict:
		return "conflict"
	case Skipped:
		return "dry_run"
	default:
		return "unknown"
	}
}

// Sink stores one document under dir/filename. A Conflict outcome means the
// destination held different content and was overwritten.
type Sink interface {
	Put(ctx context.Context, dir, filename string, data []byte) (Outcome, error)
}

// Key joins a destination directory and filename into a slash-separated
// storage key without a leading slash.
func Key(dir, filename string) string {
	return strings.TrimPrefix(path.Join(dir, filename), "/")
}
