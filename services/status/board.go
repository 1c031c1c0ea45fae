// Package status holds the kiosk status board: one lifecycle value per subsystem.
package status

import (
	"sync"

	"visionvend/models"
)

// Board maps every subsystem to its current value. Writes touch exactly one entry.
type Board struct {
	mu      sync.RWMutex
	entries map[models.Subsystem]models.StatusValue
}

// NewBoard returns a board with every subsystem idle.
func NewBoard() *Board {
	b := &Board{entries: make(map[models.Subsystem]models.StatusValue, len(models.Subsystems))}
	for _, s := range models.Subsystems {
		b.entries[s] = models.StatusIdle
	}
	return b
}

// Set writes the value for one subsystem, leaving the others untouched.
func (b *Board) Set(subsystem models.Subsystem, value models.StatusValue) {
	b.mu.Lock()
	b.entries[subsystem] = value
	b.mu.Unlock()
}

// Get returns the current value, idle if never set.
func (b *Board) Get(subsystem models.Subsystem) models.StatusValue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.entries[subsystem]; ok {
		return v
	}
	return models.StatusIdle
}

// Snapshot returns a copy of all entries.
func (b *Board) Snapshot() map[models.Subsystem]models.StatusValue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[models.Subsystem]models.StatusValue, len(b.entries))
	for k, v := range b.entries {
		out[k] = v
	}
	return out
}

// Entries returns the board as an ordered list, following models.Subsystems.
func (b *Board) Entries() []models.StatusEntry {
	snap := b.Snapshot()
	out := make([]models.StatusEntry, 0, len(models.Subsystems))
	for _, s := range models.Subsystems {
		out = append(out, models.StatusEntry{Subsystem: s, Value: snap[s]})
	}
	return out
}

// Reset sets every subsystem back to idle.
func (b *Board) Reset() {
	b.ResetExcept()
}

// ResetExcept sets every subsystem except keep back to idle.
func (b *Board) ResetExcept(keep ...models.Subsystem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range models.Subsystems {
		if contains(keep, s) {
			continue
		}
		b.entries[s] = models.StatusIdle
	}
}

func contains(list []models.Subsystem, s models.Subsystem) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
