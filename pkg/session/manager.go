// Package session owns the ringing-alarm state machine: idle → ringing →
// snoozed or dismissed → idle. One session rings at a time; resolution runs
// through the repository so both polling loops observe it on their next tick.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"dreamclock/pkg/challenge"
	"dreamclock/pkg/models"
	"dreamclock/pkg/store"
)

var (
	// ErrNoActiveSession indicates a snooze/dismiss call with nothing ringing.
	ErrNoActiveSession = errors.New("no alarm is ringing")

	// ErrSessionActive indicates a trigger while another alarm is ringing.
	ErrSessionActive = errors.New("an alarm session is already active")

	// ErrNoChallenge indicates an answer submission with no pending challenge.
	ErrNoChallenge = errors.New("no challenge pending")
)

// vibrationPattern alternates vibration and pause durations while ringing.
var vibrationPattern = []time.Duration{
	time.Second, 500 * time.Millisecond,
	time.Second, 500 * time.Millisecond,
	time.Second, 500 * time.Millisecond,
	time.Second,
}

type ringing struct {
	alarm   models.Alarm
	handle  PlaybackHandle
	release func()
	gate    *challenge.Gate
	muted   bool
	volume  float64
}

// Manager runs the state machine against injected collaborators.
type Manager struct {
	repo     *store.Repository
	audio    AudioPlayer
	vibrator Vibrator
	notifier AttentionNotifier
	wakeLock WakeLock
	log      *zap.Logger

	now func() time.Time
	rng *rand.Rand

	mu     sync.Mutex
	active *ringing
}

func NewManager(repo *store.Repository, audio AudioPlayer, vibrator Vibrator, notifier AttentionNotifier, wakeLock WakeLock, log *zap.Logger) *Manager {
	return &Manager{
		repo:     repo,
		audio:    audio,
		vibrator: vibrator,
		notifier: notifier,
		wakeLock: wakeLock,
		log:      log,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetNow overrides the clock. Tests only.
func (m *Manager) SetNow(now func() time.Time) { m.now = now }

// Active returns the currently ringing alarm, if any.
func (m *Manager) Active() (models.Alarm, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.Alarm{}, false
	}
	return m.active.alarm, true
}

// Trigger moves the session from idle to ringing: starts sound, vibration,
// the attention notification and a wake-lock hint. Fails with
// ErrSessionActive while another alarm rings.
func (m *Manager) Trigger(alarm models.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return ErrSessionActive
	}

	settings := m.repo.Settings()
	volume := float64(settings.Volume) / 100

	var fadeIn time.Duration
	if settings.GradualVolumeIncrease {
		fadeIn = time.Duration(settings.FadeInDuration) * time.Second
	}

	handle := m.startSound(alarm, volume, fadeIn)

	if alarm.Vibrate && settings.VibrationEnabled {
		m.vibrator.Vibrate(vibrationPattern)
	}

	body := fmt.Sprintf("Time: %s", alarm.Time)
	if settings.MathChallenge {
		body += " - Solve math to dismiss!"
	}
	m.notifier.Show(alarm.DisplayLabel(), body, alarm.ID)

	release, err := m.wakeLock.Acquire()
	if err != nil {
		m.log.Debug("wake lock unavailable", zap.Error(err))
		release = func() {}
	}

	m.active = &ringing{
		alarm:   alarm,
		handle:  handle,
		release: release,
		volume:  volume,
	}
	m.log.Info("alarm ringing",
		zap.String("alarm_id", alarm.ID),
		zap.String("time", alarm.Time),
		zap.String("label", alarm.Label),
	)
	return nil
}

// startSound resolves the alarm's sound reference: a stored custom asset if
// the name resolves, otherwise the built-in catalog. Playback failures leave
// the session ringing silently rather than blocking the trigger.
func (m *Manager) startSound(alarm models.Alarm, volume float64, fadeIn time.Duration) PlaybackHandle {
	if alarm.Sound != "" && m.repo.HasAudioAsset(alarm.Sound) {
		data, err := m.repo.AudioAsset(alarm.Sound)
		if err == nil {
			handle, err := m.audio.PlayCustom(data, volume, fadeIn)
			if err == nil {
				return handle
			}
			m.log.Warn("custom sound playback failed, falling back to built-in",
				zap.String("sound", alarm.Sound), zap.Error(err))
		}
	}
	handle, err := m.audio.PlayBuiltIn(alarm.Sound, volume, fadeIn)
	if err != nil {
		m.log.Warn("sound playback failed", zap.Error(err))
		return nil
	}
	return handle
}

// Snooze rewrites the ringing alarm's time to now plus the default snooze
// interval and marks it snoozed. The original schedule is not restored
// automatically; if the alarm repeats, its still-enabled record fires on the
// rewritten time instead until the user edits it back.
func (m *Manager) Snooze() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ErrNoActiveSession
	}

	settings := m.repo.Settings()
	target := m.now().Add(time.Duration(settings.SnoozeMinutes()) * time.Minute)
	newTime := models.FormatClock(target)
	snoozed := true

	_, err := m.repo.UpdateAlarm(m.active.alarm.ID, store.AlarmPatch{
		Time:    &newTime,
		Snoozed: &snoozed,
	})
	if err != nil {
		return err
	}
	m.log.Info("alarm snoozed",
		zap.String("alarm_id", m.active.alarm.ID),
		zap.String("until", newTime),
	)
	m.resolveLocked()
	return nil
}

// RequestDismiss starts dismissal. Without the math challenge setting it
// resolves immediately and returns (nil, nil). With the challenge on, it
// arms a problem gate and returns the problem; ringing continues until a
// correct answer is submitted.
func (m *Manager) RequestDismiss() (*challenge.Problem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, ErrNoActiveSession
	}

	settings := m.repo.Settings()
	if !settings.MathChallenge {
		return nil, m.dismissLocked()
	}

	if m.active.gate == nil {
		m.active.gate = challenge.NewGate(settings.ChallengeDifficulty, m.rng)
	}
	p := m.active.gate.Problem()
	return &p, nil
}

// SubmitAnswer verifies a challenge answer. A correct answer dismisses the
// alarm; a wrong one returns the next problem to try (a fresh one after
// three failures).
func (m *Manager) SubmitAnswer(answer int) (solved bool, next *challenge.Problem, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return false, nil, ErrNoActiveSession
	}
	if m.active.gate == nil {
		return false, nil, ErrNoChallenge
	}

	if m.active.gate.Submit(answer) {
		return true, nil, m.dismissLocked()
	}
	p := m.active.gate.Problem()
	return false, &p, nil
}

// ToggleMute silences or restores the ringing sound and returns the new
// muted state.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return false
	}
	m.active.muted = !m.active.muted
	if m.active.handle != nil {
		if m.active.muted {
			m.active.handle.SetVolume(0)
		} else {
			m.active.handle.SetVolume(m.active.volume)
		}
	}
	return m.active.muted
}

// dismissLocked disables the underlying alarm record entirely, repeating or
// not, and resolves the session.
func (m *Manager) dismissLocked() error {
	enabled := false
	snoozed := false
	_, err := m.repo.UpdateAlarm(m.active.alarm.ID, store.AlarmPatch{
		Enabled: &enabled,
		Snoozed: &snoozed,
	})
	if err != nil && !errors.Is(err, models.ErrAlarmNotFound) {
		return err
	}
	m.log.Info("alarm dismissed", zap.String("alarm_id", m.active.alarm.ID))
	m.resolveLocked()
	return nil
}

// resolveLocked returns to idle and clears every side effect.
func (m *Manager) resolveLocked() {
	if m.active.handle != nil {
		m.active.handle.Stop()
	}
	m.vibrator.Cancel()
	m.active.release()
	m.active = nil
}

// Shutdown stops any ringing session without resolving it, for daemon exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.resolveLocked()
	}
	m.audio.StopAll()
}
