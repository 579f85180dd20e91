// Package config loads daemon configuration from an optional YAML file and
// the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App       App       `yaml:"app"`
		Scheduler Scheduler `yaml:"scheduler"`
		Notifier  Notifier  `yaml:"notifier"`
		Audio     Audio     `yaml:"audio"`
		Log       Log       `yaml:"logger"`
	}

	App struct {
		Name      string `yaml:"name"       env-default:"dreamclockd"`
		DataDir   string `yaml:"data_dir"   env:"DATA_DIR"`
		Autostart bool   `yaml:"autostart"  env:"AUTOSTART"  env-default:"false"`
	}

	Scheduler struct {
		TickInterval time.Duration `yaml:"tick_interval" env-default:"1s"`
	}

	Notifier struct {
		CheckInterval    time.Duration `yaml:"check_interval"    env-default:"15s"`
		ReminderInterval time.Duration `yaml:"reminder_interval" env-default:"2m"`
		MaxReminders     int           `yaml:"max_reminders"     env-default:"10"`
	}

	Audio struct {
		QuotaBytes int64 `yaml:"quota_bytes" env:"AUDIO_QUOTA_BYTES" env-default:"52428800"`
	}

	Log struct {
		Level  string `yaml:"log_level"  env:"LOG_LEVEL"  env-default:"info"`
		Format string `yaml:"log_format" env:"LOG_FORMAT" env-default:"console"`
	}
)

// Load reads the config file named by -config (when given) and overlays the
// environment. DataDir falls back to a per-user state directory.
func Load() (*Config, error) {
	var path string
	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}

	if cfg.App.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.App.DataDir = dir + string(os.PathSeparator) + cfg.App.Name
	}
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}
