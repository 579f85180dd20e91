package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamclock/pkg/models"
)

func TestPublishThenReceive(t *testing.T) {
	b := New()
	sent := Snapshot{
		Alarms:   []models.Alarm{{ID: "a", Time: "07:00"}},
		Settings: models.DefaultSettings(),
		SentAt:   time.Now(),
	}
	b.PublishSnapshot(sent)

	select {
	case got := <-b.Snapshots():
		assert.Equal(t, sent, got)
	default:
		t.Fatal("published snapshot not available")
	}
}

func TestLastWriterWins(t *testing.T) {
	b := New()
	for i := 0; i < 10; i++ {
		b.PublishSnapshot(Snapshot{Alarms: []models.Alarm{{ID: string(rune('a' + i))}}})
	}

	select {
	case got := <-b.Snapshots():
		require.Len(t, got.Alarms, 1)
		assert.Equal(t, "j", got.Alarms[0].ID, "only the newest snapshot survives")
	default:
		t.Fatal("no snapshot available")
	}

	select {
	case <-b.Snapshots():
		t.Fatal("stale snapshot leaked through")
	default:
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := New()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.PublishSnapshot(Snapshot{SentAt: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked with no consumer")
	}
}
