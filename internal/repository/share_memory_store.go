package repository

import (
	"context"
	"sync"
	"time"

	"stocksage/internal/model"
)

// MemoryShareStore keeps records for the lifetime of the process.
type MemoryShareStore struct {
	mu      sync.RWMutex
	records map[string]*model.SharedRecord
	now     func() time.Time
}

func NewMemoryShareStore() *MemoryShareStore {
	return &MemoryShareStore{
		records: make(map[string]*model.SharedRecord),
		now:     time.Now,
	}
}

// Put overwrites any record already stored under the same id.
func (s *MemoryShareStore) Put(ctx context.Context, record *model.SharedRecord) error {
	stored := cloneRecord(record)
	s.mu.Lock()
	s.records[record.ID] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryShareStore) Get(ctx context.Context, id string) (*model.SharedRecord, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if record.Expired(s.now()) {
		s.mu.Lock()
		if current, ok := s.records[id]; ok && current.Expired(s.now()) {
			delete(s.records, id)
		}
		s.mu.Unlock()
		return nil, nil
	}
	return cloneRecord(record), nil
}

// DeleteExpired drops every record whose expiry has passed.
func (s *MemoryShareStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, record := range s.records {
		if record.Expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryShareStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(record *model.SharedRecord) *model.SharedRecord {
	out := *record
	out.Messages = make([]model.SharedMessage, len(record.Messages))
	copy(out.Messages, record.Messages)
	return &out
}
