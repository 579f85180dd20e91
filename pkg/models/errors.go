package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchedule indicates an alarm that can never fire, such as an
	// enabled alarm with an empty day set.
	ErrInvalidSchedule = errors.New("alarm has no valid next occurrence")

	// ErrInvalidTime indicates a time string outside the HH:MM pattern.
	ErrInvalidTime = errors.New("invalid alarm time")

	// ErrAlarmNotFound indicates an unknown alarm id.
	ErrAlarmNotFound = errors.New("alarm not found")

	// ErrDuplicateName indicates an audio asset name collision on upload.
	ErrDuplicateName = errors.New("audio asset name already exists")

	// ErrQuotaExceeded indicates the audio store lacks headroom for an upload.
	ErrQuotaExceeded = errors.New("audio storage quota exceeded")

	// ErrAssetNotFound indicates an unknown audio asset name.
	ErrAssetNotFound = errors.New("audio asset not found")

	// ErrSyncUnavailable indicates the notifier could not reach its durable
	// mirror; the caller retries on the next tick.
	ErrSyncUnavailable = errors.New("durable mirror unavailable")
)

// PersistenceError wraps a durable read/write failure. Callers fall back to
// last-known-good in-memory state and surface a warning.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
