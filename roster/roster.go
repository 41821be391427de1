// Package roster holds the narrator's live table of connected players and
// their latest character sheets.
package roster

import (
	"sort"
	"sync"

	"github.com/beanz-y/not-the-end/hero"
)

// Entry pairs a connection ID with the last sheet received from it.
type Entry struct {
	ConnID string     `json:"connId"`
	Sheet  hero.Sheet `json:"sheet"`
}

// Roster is safe for concurrent use: connection goroutines upsert and
// remove entries while the HTTP layer and the narrator console read
// snapshots. One lock guards the map; there is no field-level merge, every
// update replaces the entry wholesale.
type Roster struct {
	mu      sync.RWMutex
	entries map[string]hero.Sheet

	// OnChange, if set, is called after every mutation with the current
	// player count. Called without the lock held.
	OnChange func(count int)
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{entries: make(map[string]hero.Sheet)}
}

// Put inserts or replaces the sheet for a connection. Both the connect
// handshake and update_sheet land here; the distinction carries no
// server-side meaning.
func (r *Roster) Put(connID string, sheet hero.Sheet) {
	sheet = sheet.Clone()
	sheet.Normalize()

	r.mu.Lock()
	r.entries[connID] = sheet
	count := len(r.entries)
	r.mu.Unlock()

	r.notify(count)
}

// Remove drops a connection's entry. Removing an unknown ID is a no-op.
func (r *Roster) Remove(connID string) {
	r.mu.Lock()
	_, existed := r.entries[connID]
	delete(r.entries, connID)
	count := len(r.entries)
	r.mu.Unlock()

	if existed {
		r.notify(count)
	}
}

// Get returns the sheet for a connection, if present.
func (r *Roster) Get(connID string) (hero.Sheet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sheet, ok := r.entries[connID]
	if !ok {
		return hero.Sheet{}, false
	}
	return sheet.Clone(), true
}

// Len returns the number of connected players.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns all entries ordered by connection ID, decoupled from
// later mutations.
func (r *Roster) Snapshot() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries))
	for id, sheet := range r.entries {
		entries = append(entries, Entry{ConnID: id, Sheet: sheet.Clone()})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ConnID < entries[j].ConnID })
	return entries
}

func (r *Roster) notify(count int) {
	if r.OnChange != nil {
		r.OnChange(count)
	}
}
