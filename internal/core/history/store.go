// Package history keeps a bounded log of finished bulk delete operations in
// a YAML file shared by every chatsweep process.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aki/chatsweep/internal/core/sweep"
	"github.com/aki/chatsweep/internal/filemanager"
)

// DefaultMaxRecords is how many operations the history keeps
const DefaultMaxRecords = 200

var _ sweep.Recorder = (*Store)(nil)

type document struct {
	Records []sweep.Result `yaml:"records"`
}

// Store appends operation results to a history file
type Store struct {
	path       string
	maxRecords int
	files      *filemanager.Manager[document]
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{
		path:       path,
		maxRecords: DefaultMaxRecords,
		files:      filemanager.NewManager[document](),
	}
}

// WithMaxRecords overrides the retention bound
func (s *Store) WithMaxRecords(n int) *Store {
	if n > 0 {
		s.maxRecords = n
	}
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Record appends result, dropping the oldest entries past the bound
func (s *Store) Record(ctx context.Context, result sweep.Result) error {
	err := s.files.Update(ctx, s.path, func(doc *document) error {
		doc.Records = append(doc.Records, result)
		if extra := len(doc.Records) - s.maxRecords; extra > 0 {
			doc.Records = append([]sweep.Result(nil), doc.Records[extra:]...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record operation %s: %w", result.OperationID, err)
	}
	return nil
}

// List returns up to limit results, newest first. A limit of 0 or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]sweep.Result, error) {
	doc, err := s.files.Read(ctx, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []sweep.Result{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	n := len(doc.Records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]sweep.Result, 0, n)
	for i := len(doc.Records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, doc.Records[i])
	}
	return out, nil
}

// Find returns the record with the given operation ID
func (s *Store) Find(ctx context.Context, operationID string) (sweep.Result, bool, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return sweep.Result{}, false, err
	}
	for _, r := range all {
		if r.OperationID == operationID {
			return r, true, nil
		}
	}
	return sweep.Result{}, false, nil
}

// Clear removes the history file
func (s *Store) Clear(ctx context.Context) error {
	return s.files.Delete(ctx, s.path)
}

// Totals sums the outcome counts over every stored record
func Totals(results []sweep.Result) (deleted, failed int) {
	for _, r := range results {
		deleted += r.Outcome.Succeeded
		failed += r.Outcome.Failed
	}
	return deleted, failed
}
