package notifier

import "go.uber.org/zap"

// LogSystemNotifier records notifications in the log, standing in for a real
// platform notification mechanism in headless runs and tests.
type LogSystemNotifier struct {
	Log *zap.Logger
}

func (s LogSystemNotifier) Show(n Notification) error {
	actions := make([]string, 0, len(n.Actions))
	for _, a := range n.Actions {
		actions = append(actions, a.ID)
	}
	s.Log.Info("system notification",
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("tag", n.Tag),
		zap.Strings("actions", actions),
		zap.Bool("silent", n.Silent),
	)
	return nil
}

// NopPresence reports a permanently connected client and never opens
// anything. Used when the daemon is the only process.
type NopPresence struct{}

func (NopPresence) HasActiveClient() bool { return true }
func (NopPresence) OpenApp() error        { return nil }
