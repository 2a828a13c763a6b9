package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"mercator-hq/strcalc/pkg/journal"
)

// MemoryStorage implements journal.Storage in memory. It is used by tests
// and when the journal runs without a database file.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*journal.Record // by RecordedAt, then insertion order
	ids     map[string]struct{}
	closed  bool
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		ids: make(map[string]struct{}),
	}
}

// Store persists a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return journal.NewStorageError("memory", "store", journal.ErrRecorderClosed)
	}
	if _, dup := s.ids[record.ID]; dup {
		return journal.NewStorageError("memory", "store", fmt.Errorf("duplicate record id %s", record.ID))
	}

	// Insert after every record with the same or an earlier timestamp.
	i, _ := slices.BinarySearchFunc(s.records, record.RecordedAt, func(r *journal.Record, t time.Time) int {
		if r.RecordedAt.After(t) {
			return 1
		}
		return -1
	})
	s.ids[record.ID] = struct{}{}
	s.records = slices.Insert(s.records, i, copyRecord(record))
	return nil
}

// Query returns copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	if query == nil {
		query = &journal.Query{}
	}

	s.mu.RLock()
	matched := s.filter(query)
	s.mu.RUnlock()

	if !query.Ascending {
		slices.Reverse(matched)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = journal.DefaultQueryLimit
	}
	start := min(query.Offset, len(matched))
	end := min(start+limit, len(matched))

	results := make([]*journal.Record, 0, end-start)
	for _, record := range matched[start:end] {
		results = append(results, copyRecord(record))
	}
	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	if query == nil {
		query = &journal.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filter(query))), nil
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(r *journal.Record) bool {
		if r.RecordedAt.Before(cutoff) {
			delete(s.ids, r.ID)
			return true
		}
		return false
	})
	return int64(before - len(s.records)), nil
}

// TrimTo removes the oldest records until at most max remain.
func (s *MemoryStorage) TrimTo(ctx context.Context, max int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if max < 0 {
		max = 0
	}
	excess := int64(len(s.records)) - max
	if excess <= 0 {
		return 0, nil
	}

	for _, r := range s.records[:excess] {
		delete(s.ids, r.ID)
	}
	s.records = slices.Clone(s.records[excess:])
	return excess, nil
}

// Ping reports an error once the storage is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return journal.NewStorageError("memory", "ping", journal.ErrRecorderClosed)
	}
	return nil
}

// Close marks the storage closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// filter returns matching records oldest first. Callers hold the lock.
func (s *MemoryStorage) filter(query *journal.Query) []*journal.Record {
	var matched []*journal.Record
	for _, r := range s.records {
		if matches(r, query) {
			matched = append(matched, r)
		}
	}
	return matched
}

func matches(r *journal.Record, query *journal.Query) bool {
	if query.StartTime != nil && r.RecordedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && r.RecordedAt.After(*query.EndTime) {
		return false
	}
	if (query.Outcome == journal.OutcomeSuccess || query.Outcome == journal.OutcomeRejected) &&
		r.Outcome() != query.Outcome {
		return false
	}
	if query.IssueType != "" && !slices.Contains(r.IssueTypes, query.IssueType) {
		return false
	}
	if query.Source != "" && r.Source != query.Source {
		return false
	}
	return true
}

func copyRecord(r *journal.Record) *journal.Record {
	c := *r
	c.IssueTypes = slices.Clone(r.IssueTypes)
	return &c
}
