package session

import (
	"time"

	"go.uber.org/zap"
)

// PlaybackHandle controls one ringing sound.
type PlaybackHandle interface {
	SetVolume(v float64)
	Stop()
}

// AudioPlayer is the playback collaborator. volume is 0-1; fadeIn of zero
// plays at full volume immediately.
type AudioPlayer interface {
	PlayBuiltIn(name string, volume float64, fadeIn time.Duration) (PlaybackHandle, error)
	PlayCustom(wavData []byte, volume float64, fadeIn time.Duration) (PlaybackHandle, error)
	StopAll()
}

// Vibrator is the device vibration collaborator.
type Vibrator interface {
	Vibrate(pattern []time.Duration)
	Cancel()
}

// AttentionNotifier requests user attention for a ringing alarm in the
// foreground.
type AttentionNotifier interface {
	Show(title, body, tag string)
}

// WakeLock keeps the display awake while an alarm rings. Best effort;
// acquisition failures are ignored.
type WakeLock interface {
	Acquire() (release func(), err error)
}

// NopVibrator is used where the platform offers no vibration bridge.
type NopVibrator struct{}

func (NopVibrator) Vibrate(pattern []time.Duration) {}
func (NopVibrator) Cancel()                         {}

// NopWakeLock is used where the platform offers no wake-lock mechanism.
type NopWakeLock struct{}

func (NopWakeLock) Acquire() (func(), error) { return func() {}, nil }

// LogNotifier records attention requests in the log. It stands in for a real
// platform notifier in headless runs and tests.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Show(title, body, tag string) {
	n.Log.Info("attention requested",
		zap.String("title", title),
		zap.String("body", body),
		zap.String("tag", tag),
	)
}
