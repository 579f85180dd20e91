package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dreamclock/pkg/audio"
	"dreamclock/pkg/bus"
	"dreamclock/pkg/config"
	"dreamclock/pkg/export"
	"dreamclock/pkg/models"
	"dreamclock/pkg/notifier"
	"dreamclock/pkg/scheduler"
	"dreamclock/pkg/session"
	"dreamclock/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := setupAutostart(cfg.App.Name, cfg.App.Autostart, logger); err != nil {
		logger.Warn("failed to set up autostart", zap.Error(err))
	}

	repo, err := store.Open(filepath.Join(cfg.App.DataDir, "alarms.db"), cfg.Audio.QuotaBytes, logger)
	if err != nil {
		logger.Fatal("failed to open repository", zap.Error(err))
	}

	mirror, err := store.OpenMirror(filepath.Join(cfg.App.DataDir, "notifier-mirror.db"), logger)
	if err != nil {
		logger.Fatal("failed to open notifier mirror", zap.Error(err))
	}

	icsPath := filepath.Join(cfg.App.DataDir, "schedule.ics")

	syncBus := bus.New()
	repo.SetOnChange(func() {
		alarms := repo.Alarms()
		syncBus.PublishSnapshot(bus.Snapshot{
			Alarms:   alarms,
			Settings: repo.Settings(),
			SentAt:   time.Now(),
		})
		if err := exportSchedule(icsPath, alarms); err != nil {
			logger.Warn("failed to export schedule", zap.Error(err))
		}
	})

	sessions := session.NewManager(
		repo,
		audioAdapter{audio.NewManager(logger)},
		session.NopVibrator{},
		session.LogNotifier{Log: logger},
		session.NopWakeLock{},
		logger,
	)
	defer sessions.Shutdown()

	sched := scheduler.New(repo, sessions, cfg.Scheduler.TickInterval, logger)

	bg := notifier.New(
		mirror,
		syncBus,
		notifier.LogSystemNotifier{Log: logger},
		notifier.NopPresence{},
		notifier.Config{
			CheckInterval:    cfg.Notifier.CheckInterval,
			ReminderInterval: cfg.Notifier.ReminderInterval,
			MaxReminders:     cfg.Notifier.MaxReminders,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Run(ctx)
	go bg.Run(ctx)

	// Seed the mirror and the exported schedule with the current repository
	// state on startup.
	alarms := repo.Alarms()
	syncBus.PublishSnapshot(bus.Snapshot{
		Alarms:   alarms,
		Settings: repo.Settings(),
		SentAt:   time.Now(),
	})
	if err := exportSchedule(icsPath, alarms); err != nil {
		logger.Warn("failed to export schedule", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	cancel()

	logger.Info("dreamclockd stopped")
}

// exportSchedule writes the upcoming occurrences as an iCalendar file next to
// the databases, so external calendar apps can subscribe to the alarm plan.
func exportSchedule(path string, alarms []models.Alarm) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteICS(f, alarms, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var zcfg zap.Config
	if cfg.Log.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
