// Package bus carries messages across the foreground/background boundary.
// Communication is one-way snapshot passing: the foreground publishes its
// full alarm list and settings after every repository change, the notifier
// consumes them and overwrites its durable mirror. No shared mutable state
// crosses the boundary.
package bus

import (
	"time"

	"dreamclock/pkg/models"
)

// Snapshot is a full copy of the foreground repository state.
type Snapshot struct {
	Alarms   []models.Alarm
	Settings models.Settings
	SentAt   time.Time
}

// Bus is a buffered snapshot channel with last-writer-wins semantics: when
// the consumer lags, older snapshots are dropped so the newest one always
// gets through.
type Bus struct {
	snapshots chan Snapshot
}

func New() *Bus {
	return &Bus{snapshots: make(chan Snapshot, 1)}
}

// PublishSnapshot enqueues a snapshot without blocking. A pending unread
// snapshot is discarded in favor of the new one.
func (b *Bus) PublishSnapshot(s Snapshot) {
	for {
		select {
		case b.snapshots <- s:
			return
		default:
			select {
			case <-b.snapshots:
			default:
			}
		}
	}
}

// Snapshots returns the consumer side of the channel.
func (b *Bus) Snapshots() <-chan Snapshot {
	return b.snapshots
}
