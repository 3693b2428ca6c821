// Package uuid issues run identifiers.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a UUIDv7 string. Run ids sort by start time, so log lines
// and artifacts from consecutive runs stay in order.
func NewRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// StartedAt extracts the creation time embedded in a run id produced by NewRunID.
func StartedAt(runID string) (time.Time, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run id: %w", err)
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("run id %s is version %d, want 7", runID, id.Version())
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
