// Package notifier is the background delivery path. It re-detects due alarms
// against its own durable mirror so alarms still surface when no foreground
// client is alive, raises action-bearing system notifications, escalates
// bounded reminders while a trigger stays unacknowledged, and applies snooze
// and dismiss actions directly to the mirror.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dreamclock/pkg/bus"
	"dreamclock/pkg/models"
	"dreamclock/pkg/schedule"
	"dreamclock/pkg/store"
)

// Notification action ids, matched by HandleAction.
const (
	ActionSnooze  = "snooze"
	ActionDismiss = "dismiss"
	ActionOpen    = "open"
)

// Action is a button on a system notification.
type Action struct {
	ID    string
	Label string
}

// Notification is the full contract with the platform notification
// mechanism; which mechanism implements it is out of scope here.
type Notification struct {
	Title   string
	Body    string
	Tag     string
	Actions []Action
	Silent  bool
}

// SystemNotifier shows system-level notifications. Action selections come
// back through HandleAction.
type SystemNotifier interface {
	Show(n Notification) error
}

// Presence reports whether any foreground client is connected and can
// open or re-activate one as a fallback delivery path.
type Presence interface {
	HasActiveClient() bool
	OpenApp() error
}

// Config bounds the notifier's loops. Reminder escalation is bounded by
// count, not wall-clock time, to stay robust to clock changes.
type Config struct {
	CheckInterval    time.Duration
	ReminderInterval time.Duration
	MaxReminders     int
}

func DefaultConfig() Config {
	return Config{
		CheckInterval:    15 * time.Second,
		ReminderInterval: 2 * time.Minute,
		MaxReminders:     10,
	}
}

// pendingAlert tracks one unacknowledged trigger for reminder escalation.
type pendingAlert struct {
	alarm        models.Alarm
	lastNotified time.Time
	reminders    int
}

// Notifier runs the background check loop.
type Notifier struct {
	mirror   *store.Mirror
	bus      *bus.Bus
	system   SystemNotifier
	presence Presence
	log      *zap.Logger
	cfg      Config
	now      func() time.Time

	mu      sync.Mutex
	fired   map[string]int64 // alarm id -> minute of last trigger
	pending map[string]*pendingAlert
}

func New(mirror *store.Mirror, b *bus.Bus, system SystemNotifier, presence Presence, cfg Config, log *zap.Logger) *Notifier {
	if cfg.CheckInterval <= 0 {
		cfg = DefaultConfig()
	}
	return &Notifier{
		mirror:   mirror,
		bus:      b,
		system:   system,
		presence: presence,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
		fired:    make(map[string]int64),
		pending:  make(map[string]*pendingAlert),
	}
}

// SetNow overrides the clock. Tests only.
func (n *Notifier) SetNow(now func() time.Time) { n.now = now }

// Run consumes sync snapshots and polls the mirror until the context is
// cancelled. One alarm's failure never blocks the tick loop for the rest.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.cfg.CheckInterval)
	defer ticker.Stop()

	n.log.Info("background notifier started",
		zap.Duration("check_interval", n.cfg.CheckInterval),
		zap.Duration("reminder_interval", n.cfg.ReminderInterval),
		zap.Int("max_reminders", n.cfg.MaxReminders),
	)
	for {
		select {
		case <-ctx.Done():
			n.log.Info("background notifier stopped")
			return
		case snap := <-n.bus.Snapshots():
			n.ApplySnapshot(snap)
		case <-ticker.C:
			n.Tick(n.now())
		}
	}
}

// ApplySnapshot replaces the mirror's contents with a foreground snapshot.
func (n *Notifier) ApplySnapshot(snap bus.Snapshot) {
	if err := n.mirror.Replace(snap.Alarms, snap.Settings); err != nil {
		n.log.Warn("failed to apply sync snapshot", zap.Error(err))
		return
	}
	n.log.Debug("mirror synced",
		zap.Int("alarms", len(snap.Alarms)),
		zap.Time("sent_at", snap.SentAt),
	)
}

// Tick performs one due-alarm check plus reminder escalation at the given
// instant. Exported so tests can drive the loop with a simulated clock.
func (n *Notifier) Tick(now time.Time) {
	alarms, err := n.mirror.Alarms()
	if err != nil {
		// Mirror unreachable; keep the loop alive and retry next tick.
		n.log.Warn("mirror read failed, retrying next tick", zap.Error(err))
		return
	}

	minute := now.Truncate(time.Minute).Unix()
	for _, alarm := range alarms {
		if !schedule.IsDue(alarm, now) {
			continue
		}
		n.mu.Lock()
		already := n.fired[alarm.ID] == minute
		if !already {
			n.fired[alarm.ID] = minute
		}
		n.mu.Unlock()
		if already {
			continue
		}
		n.trigger(alarm, now)
	}

	n.escalate(now)
	n.pruneFired(minute)
}

// trigger raises the system notification for a due alarm and starts tracking
// it for reminders. When no foreground client is connected, it also asks the
// platform to open one.
func (n *Notifier) trigger(alarm models.Alarm, now time.Time) {
	n.log.Info("background alarm triggered",
		zap.String("alarm_id", alarm.ID),
		zap.String("label", alarm.Label),
		zap.String("time", alarm.Time),
	)

	settings := n.mirror.Settings()
	body := fmt.Sprintf("%s\nTime: %s", alarm.DisplayLabel(), formatClock12(alarm.Time))
	if settings.MathChallenge {
		body += "\nSolve math to dismiss!"
	}

	err := n.system.Show(Notification{
		Title: "ALARM: " + alarm.DisplayLabel(),
		Body:  body,
		Tag:   "alarm-" + alarm.ID,
		Actions: []Action{
			{ID: ActionSnooze, Label: fmt.Sprintf("Snooze %dm", settings.SnoozeMinutes())},
			{ID: ActionDismiss, Label: "Dismiss"},
			{ID: ActionOpen, Label: "Open App"},
		},
	})
	if err != nil {
		n.log.Warn("failed to show alarm notification",
			zap.String("alarm_id", alarm.ID), zap.Error(err))
	}

	n.mu.Lock()
	n.pending[alarm.ID] = &pendingAlert{alarm: alarm, lastNotified: now}
	n.mu.Unlock()

	if !n.presence.HasActiveClient() {
		if err := n.presence.OpenApp(); err != nil {
			n.log.Debug("could not open foreground client", zap.Error(err))
		}
	}
}

// escalate re-notifies unacknowledged triggers at the reminder interval, up
// to the configured count, then stops.
func (n *Notifier) escalate(now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, p := range n.pending {
		if p.reminders >= n.cfg.MaxReminders {
			continue
		}
		if now.Sub(p.lastNotified) < n.cfg.ReminderInterval {
			continue
		}
		p.reminders++
		p.lastNotified = now

		err := n.system.Show(Notification{
			Title: fmt.Sprintf("Reminder %d: %s", p.reminders, p.alarm.DisplayLabel()),
			Body:  "Your alarm is still active. Please dismiss or snooze.",
			Tag:   fmt.Sprintf("reminder-%s-%d", id, p.reminders),
			Actions: []Action{
				{ID: ActionSnooze, Label: "Snooze"},
				{ID: ActionDismiss, Label: "Dismiss"},
				{ID: ActionOpen, Label: "Open App"},
			},
		})
		if err != nil {
			n.log.Warn("failed to show reminder", zap.String("alarm_id", id), zap.Error(err))
		}
	}
}

// pruneFired drops per-minute dedup entries older than the current minute.
func (n *Notifier) pruneFired(minute int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, m := range n.fired {
		if m < minute {
			delete(n.fired, id)
		}
	}
}

// HandleAction applies a user's notification action. It works entirely
// against the mirror, so no foreground client needs to be alive.
func (n *Notifier) HandleAction(actionID, alarmID string) {
	n.mu.Lock()
	delete(n.pending, alarmID)
	n.mu.Unlock()

	switch actionID {
	case ActionSnooze:
		n.snooze(alarmID)
	case ActionDismiss:
		n.dismiss(alarmID)
	case ActionOpen:
		if err := n.presence.OpenApp(); err != nil {
			n.log.Warn("could not open foreground client", zap.Error(err))
		}
	default:
		n.log.Debug("unhandled notification action", zap.String("action", actionID))
	}
}

// snooze creates a derived single-day snooze alarm in the mirror, scheduled
// for now plus the default snooze interval, and confirms.
func (n *Notifier) snooze(alarmID string) {
	now := n.now()
	settings := n.mirror.Settings()
	target := now.Add(time.Duration(settings.SnoozeMinutes()) * time.Minute)

	label := "Alarm"
	sound := ""
	if parent, err := n.mirror.Alarm(alarmID); err == nil {
		label = parent.DisplayLabel()
		sound = parent.Sound
	}

	derived := models.Alarm{
		ID:      uuid.New().String(),
		Time:    models.FormatClock(target),
		Label:   label + " (Snoozed)",
		Days:    []string{now.Weekday().String()},
		Sound:   sound,
		Vibrate: true,
		Enabled: true,
		Snoozed: true,
	}
	if err := n.mirror.Add(derived); err != nil {
		n.log.Warn("failed to store snooze alarm", zap.Error(err))
		return
	}

	n.log.Info("alarm snoozed from notification",
		zap.String("parent_id", alarmID),
		zap.String("snooze_id", derived.ID),
		zap.String("until", derived.Time),
	)
	n.confirm("Alarm Snoozed", fmt.Sprintf("Will ring again in %d minutes at %s",
		settings.SnoozeMinutes(), formatClock12(derived.Time)), "snooze-confirmation")
}

// dismiss removes a derived snooze instance from the mirror. A repeating
// alarm is left untouched; it stays scheduled for its next natural
// occurrence.
func (n *Notifier) dismiss(alarmID string) {
	alarm, err := n.mirror.Alarm(alarmID)
	if err == nil && alarm.Snoozed {
		if err := n.mirror.Remove(alarmID); err != nil {
			n.log.Warn("failed to remove snooze alarm", zap.Error(err))
		}
	}

	n.log.Info("alarm dismissed from notification", zap.String("alarm_id", alarmID))
	n.confirm("Alarm Dismissed", "Have a great day!", "dismiss-confirmation")
}

func (n *Notifier) confirm(title, body, tag string) {
	err := n.system.Show(Notification{Title: title, Body: body, Tag: tag, Silent: true})
	if err != nil {
		n.log.Debug("failed to show confirmation", zap.Error(err))
	}
}

// formatClock12 renders a stored HH:MM time in 12-hour display form.
func formatClock12(clock string) string {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return clock
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return clock
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], ampm)
}
