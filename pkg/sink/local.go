package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dtnitsch/bac-archiver/models"
)

// Local writes documents into a directory tree under root.
type Local struct {
	root string
	mu   sync.Mutex
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (s *Local) Put(ctx context.Context, dir, filename string, data []byte) (Outcome, error) {
	key := Key(dir, filename)
	if err := ctx.Err(); err != nil {
		return Written, &models.SinkFailure{Key: key, Err: err}
	}
	target := filepath.Join(s.root, filepath.FromSlash(key))

	// Fan-out targets of one document may race on shared parents.
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := Written
	existing, err := os.ReadFile(target)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return Unchanged, nil
	case err == nil:
		outcome = Conflict
	case !errors.Is(err, os.ErrNotExist):
		return Written, &models.SinkFailure{Key: key, Err: fmt.Errorf("error reading file: %w", err)}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return Written, &models.SinkFailure{Key: key, Err: fmt.Errorf("error creating directory: %w", err)}
	}
	if err := writeFile(target, data); err != nil {
		return Written, &models.SinkFailure{Key: key, Err: err}
	}
	return outcome, nil
}

func writeFile(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}
