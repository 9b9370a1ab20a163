package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gitlab.com/dirk.krummacker/static-website/pkg/model"
)

// SubmissionsKey is the key under which the fallback list is stored.
const SubmissionsKey = "contactSubmissions"

// Submissions is the list of undelivered contact submissions, stored as one JSON
// array under SubmissionsKey. Every change is a single write of the whole list; on backends
// implementing Updater that write is atomic with respect to other writers.
type Submissions struct {
	mu    sync.Mutex
	store Storage
}

// NewSubmissions returns the submission list kept in store.
func NewSubmissions(store Storage) *Submissions {
	return &Submissions{store: store}
}

// List returns all stored records. A missing or unparseable value reads as an empty list.
func (s *Submissions) List(ctx context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, err := s.store.GetItem(ctx, SubmissionsKey)
	if errors.Is(err, ErrNotFound) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read submissions: %w", err)
	}
	return parseRecords(value), nil
}

// Append adds one record to the end of the list.
func (s *Submissions) Append(ctx context.Context, record model.Record) error {
	return s.modify(ctx, func(records []model.Record) []model.Record {
		return append(records, record)
	})
}

// Retain keeps only the records for which keep returns true, in their order. Records added
// by other writers since the caller last listed are passed to keep as well. When the write
// fails the list is left as it was.
func (s *Submissions) Retain(ctx context.Context, keep func(model.Record) bool) error {
	return s.modify(ctx, func(records []model.Record) []model.Record {
		kept := make([]model.Record, 0, len(records))
		for _, r := range records {
			if keep(r) {
				kept = append(kept, r)
			}
		}
		return kept
	})
}

// modify replaces the list with change(list) in one write.
func (s *Submissions) modify(ctx context.Context, change func([]model.Record) []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := func(current string, found bool) (string, error) {
		records := []model.Record{}
		if found {
			records = parseRecords(current)
		}
		data, err := json.Marshal(change(records))
		if err != nil {
			return "", fmt.Errorf("could not marshal submissions: %w", err)
		}
		return string(data), nil
	}

	if updater, ok := s.store.(Updater); ok {
		if err := updater.Update(ctx, SubmissionsKey, fn); err != nil {
			return fmt.Errorf("could not store submissions: %w", err)
		}
		return nil
	}

	current, err := s.store.GetItem(ctx, SubmissionsKey)
	found := true
	if errors.Is(err, ErrNotFound) {
		found = false
	} else if err != nil {
		return fmt.Errorf("could not read submissions: %w", err)
	}
	value, err := fn(current, found)
	if err != nil {
		return err
	}
	if err := s.store.SetItem(ctx, SubmissionsKey, value); err != nil {
		return fmt.Errorf("could not store submissions: %w", err)
	}
	return nil
}

func parseRecords(value string) []model.Record {
	var records []model.Record
	if err := json.Unmarshal([]byte(value), &records); err != nil || records == nil {
		return []model.Record{}
	}
	return records
}
