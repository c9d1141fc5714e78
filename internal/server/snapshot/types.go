package snapshot

import (
	"time"
)

// SnapshotData is one exported archive: every registered list with its live
// items, as written to disk.
type SnapshotData struct {
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Lists     []*SnapshotList `json:"lists"`
}

type SnapshotList struct {
	Key   string          `json:"key"`
	Items []*SnapshotItem `json:"items"`
}

type SnapshotItem struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

const SnapshotVersion = "1.0"

// Manifest sits beside each archive file and pins its content hash. Restore
// refuses archives whose bytes no longer match.
type Manifest struct {
	File      string    `json:"file"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type ConflictStrategy string

const (
	ConflictStrategySkip      ConflictStrategy = "skip"
	ConflictStrategyOverwrite ConflictStrategy = "overwrite"
	ConflictStrategyError     ConflictStrategy = "error"
)

type RestoreOptions struct {
	ConflictStrategy ConflictStrategy
	// Lists narrows the restore to the named lists. Empty means all.
	Lists []string
}
