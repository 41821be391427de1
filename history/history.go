// Package history keeps the narrator's in-memory log of completed tests.
// Nothing is persisted beyond process lifetime.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one completed test result as received from a player.
type Record struct {
	ID            string    `json:"id"`
	ConnID        string    `json:"connId"`
	PlayerName    string    `json:"playerName"`
	Successes     int       `json:"successes"`
	Complications int       `json:"complications"`
	Difficulty    int       `json:"difficulty"`
	Danger        int       `json:"danger"`
	LeftScene     bool      `json:"leftScene"`
	At            time.Time `json:"at"`
}

// Recorder abstracts the log so the server package can be tested against
// a stub and a future backend could replace the in-memory form.
type Recorder interface {
	RecordResult(rec Record) Record
	List() []Record
}

// Ensure *MemoryLog implements Recorder at compile time.
var _ Recorder = (*MemoryLog)(nil)

// MemoryLog is the in-memory Recorder. Safe for concurrent use.
type MemoryLog struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// RecordResult stamps the record with an ID and timestamp (when unset)
// and appends it. The stored record is returned.
func (l *MemoryLog) RecordResult(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec
}

// List returns the records oldest-first.
func (l *MemoryLog) List() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
