package storage

import (
	"context"
	"fmt"
	"os"

	"ListingRadar/internal/ports"
)

// FlagSignal raises the change-pending marker as a zero-byte file. External
// automation watches for the file, publishes the updated histories, and
// removes it; this side only ever creates it.
type FlagSignal struct {
	path string
}

var _ ports.ChangeSignal = (*FlagSignal)(nil)

// NewFlagSignal points the signal at the marker path.
func NewFlagSignal(path string) *FlagSignal {
	return &FlagSignal{path: path}
}

// Raise creates (or re-creates) the marker file.
func (f *FlagSignal) Raise(_ context.Context) error {
	if err := os.WriteFile(f.path, nil, 0o644); err != nil {
		return fmt.Errorf("raise change flag %s: %w", f.path, err)
	}
	return nil
}
