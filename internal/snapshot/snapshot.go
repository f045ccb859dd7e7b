// Package snapshot persists the game wholesale after every mutation.
package snapshot

import "github.com/finnvold/lineup-bingo/internal/game"

// Store is the durable snapshot contract. Save overwrites the whole
// snapshot and must return only after the write is durable, so a crash
// between mutation and broadcast cannot lose an acknowledged change.
// RecordLineup keeps the revealed lineup in its own record, independent
// of the main snapshot, as a second chance during crash recovery.
type Store interface {
	// Load returns the saved snapshot, or (nil, nil) when none exists yet.
	Load() (*game.Snapshot, error)
	Save(snap *game.Snapshot) error
	RecordLineup(lineup []string) error
}
