package main

import (
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	"go.uber.org/zap"
)

// setupAutostart syncs the login-item registration with the configured
// state so alarms keep firing after a reboot without a manual start.
func setupAutostart(name string, enable bool, log *zap.Logger) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	app := &autostart.App{
		Name:        name,
		DisplayName: "Dream Clock",
		Exec:        []string{execPath},
	}

	if enable {
		if !app.IsEnabled() {
			if err := app.Enable(); err != nil {
				return err
			}
			log.Info("autostart enabled")
		}
	} else {
		if app.IsEnabled() {
			if err := app.Disable(); err != nil {
				return err
			}
			log.Info("autostart disabled")
		}
	}
	return nil
}
