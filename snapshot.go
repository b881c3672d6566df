package llmcatalog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Snapshot is the persisted output of one sync.
type Snapshot struct {
	SyncedAt time.Time `json:"syncedAt"`
	Models   []Model   `json:"models"`
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
