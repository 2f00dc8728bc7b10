package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/backend/internal/model"
)

// foodLogKey is the single fixed key the whole collection is serialized
// under. Every mutation rewrites the full blob.
const foodLogKey = "foodlog:entries"

// LogStore is the append-only collection of confirmed analyses, loaded once
// at construction and held in memory. All reads and mutations are serialized
// by a single lock so concurrent savers cannot interleave persistence writes.
type LogStore struct {
	kv KV

	mu   sync.Mutex
	logs []model.FoodLog
}

// NewLogStore loads the persisted collection. An absent key starts the store
// empty; an undecodable blob is logged loudly and discarded rather than
// surfaced, so stale data loss stays diagnosable in the logs.
func NewLogStore(ctx context.Context, kv KV) *LogStore {
	store := &LogStore{kv: kv}

	data, err := kv.Get(ctx, foodLogKey)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		// First run, nothing persisted yet.
	case err != nil:
		log.Printf("[LogStore] WARNING: failed to read persisted logs, starting empty: %v", err)
	default:
		var logs []model.FoodLog
		if err := json.Unmarshal(data, &logs); err != nil {
			log.Printf("[LogStore] WARNING: persisted logs undecodable, discarding %d bytes: %v", len(data), err)
		} else {
			store.logs = logs
		}
	}

	return store
}

// SaveLog appends one entry and synchronously persists the full collection.
// A fresh id is assigned when the entry has none. Duplicate dish names and
// dates are permitted. A persistence failure keeps the in-memory append and
// is returned to the caller after being logged; it never panics.
func (s *LogStore) SaveLog(ctx context.Context, entry model.FoodLog) (model.FoodLog, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, entry)

	data, err := json.Marshal(s.logs)
	if err != nil {
		log.Printf("[LogStore] WARNING: failed to marshal logs: %v", err)
		return entry, fmt.Errorf("failed to marshal logs: %w", err)
	}
	if err := s.kv.Set(ctx, foodLogKey, data); err != nil {
		log.Printf("[LogStore] WARNING: failed to persist logs: %v", err)
		return entry, fmt.Errorf("failed to persist logs: %w", err)
	}

	return entry, nil
}

// GetLogs returns the entries whose date falls on the same local calendar day
// as forDate, preserving insertion order. Pure read.
func (s *LogStore) GetLogs(forDate time.Time) []model.FoodLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.FoodLog
	for _, entry := range s.logs {
		if sameCalendarDay(entry.Date, forDate) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// Len reports the total number of stored entries.
func (s *LogStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

// sameCalendarDay compares day granularity in the local calendar, not a 24h
// window.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
