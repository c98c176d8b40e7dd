package stub

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"
	"time"
)

type minuteBucket struct {
	accepted   int
	rejected   int
	duplicates int
	// seen holds task/token pairs delivered in this minute.
	seen map[string]struct{}
}

// PushStorage records pushes per run so a load run can check throughput and
// detect a task notifying the same device twice within one minute.
type PushStorage struct {
	mu           sync.RWMutex
	buckets      map[string]map[time.Time]*minuteBucket // runID -> minute -> bucket
	unregistered map[string]map[string]bool             // runID -> token -> unregistered
}

func NewPushStorage() *PushStorage {
	return &PushStorage{
		buckets:      make(map[string]map[time.Time]*minuteBucket),
		unregistered: make(map[string]map[string]bool),
	}
}

func (s *PushStorage) Reset(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, runID)
	delete(s.unregistered, runID)
}

func (s *PushStorage) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]map[time.Time]*minuteBucket)
	s.unregistered = make(map[string]map[string]bool)
}

func (s *PushStorage) Unregister(runID string, tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unregistered[runID] == nil {
		s.unregistered[runID] = make(map[string]bool)
	}
	for _, t := range tokens {
		s.unregistered[runID][t] = true
	}
}

// Record stores one push received at. It reports false when the token was
// marked unregistered for the run.
func (s *PushStorage) Record(runID string, at time.Time, taskID, token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minute := at.UTC().Truncate(time.Minute)
	if s.buckets[runID] == nil {
		s.buckets[runID] = make(map[time.Time]*minuteBucket)
	}
	b := s.buckets[runID][minute]
	if b == nil {
		b = &minuteBucket{seen: make(map[string]struct{})}
		s.buckets[runID][minute] = b
	}

	if s.unregistered[runID][token] {
		b.rejected++
		return "", false
	}

	key := taskID + "|" + token
	if _, dup := b.seen[key]; dup {
		b.duplicates++
	}
	b.seen[key] = struct{}{}
	b.accepted++

	return generateTicketID(runID, minute, key, b.accepted), true
}

func (s *PushStorage) Stats(runID string) RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := RunStats{RunID: runID, Minutes: []MinuteStats{}}
	for minute, b := range s.buckets[runID] {
		stats.Accepted += b.accepted
		stats.Rejected += b.rejected
		stats.Duplicates += b.duplicates
		stats.Minutes = append(stats.Minutes, MinuteStats{
			Minute:     minute,
			Accepted:   b.accepted,
			Rejected:   b.rejected,
			Duplicates: b.duplicates,
		})
	}

	slices.SortFunc(stats.Minutes, func(a, b MinuteStats) int {
		return a.Minute.Compare(b.Minute)
	})

	return stats
}

func generateTicketID(runID string, minute time.Time, key string, seq int) string {
	input := fmt.Sprintf("%s-%s-%s-%d", runID, minute.Format("200601021504"), key, seq)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
