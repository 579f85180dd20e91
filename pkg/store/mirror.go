package store

import (
	"errors"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dreamclock/pkg/models"
)

// Mirror is the background notifier's own durable copy of alarms and
// settings. It lives in a separate database file from the Repository and is
// replaced wholesale by each sync snapshot: last writer wins at the
// granularity of a full alarm list. Between snapshots the notifier may add
// derived snooze alarms and remove them again; those local edits survive only
// until the next snapshot arrives.
type Mirror struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenMirror opens (creating if needed) the mirror database at path.
func OpenMirror(path string, log *zap.Logger) (*Mirror, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, &models.PersistenceError{Op: "open mirror " + path, Err: err}
	}
	if err := db.AutoMigrate(&models.Alarm{}, &settingsRow{}); err != nil {
		return nil, &models.PersistenceError{Op: "migrate mirror " + path, Err: err}
	}
	return &Mirror{db: db, log: log}, nil
}

// Replace overwrites the mirror's entire contents with the snapshot.
func (m *Mirror) Replace(alarms []models.Alarm, settings models.Settings) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Alarm{}).Error; err != nil {
			return err
		}
		if len(alarms) > 0 {
			if err := tx.Create(&alarms).Error; err != nil {
				return err
			}
		}
		return tx.Save(&settingsRow{Key: settingsKey, Settings: settings}).Error
	})
	if err != nil {
		return &models.PersistenceError{Op: "replace mirror", Err: err}
	}
	return nil
}

// Alarms returns the mirrored alarm list. An unreadable mirror surfaces
// ErrSyncUnavailable so the notifier retries on its next tick.
func (m *Mirror) Alarms() ([]models.Alarm, error) {
	var alarms []models.Alarm
	if err := m.db.Order("id").Find(&alarms).Error; err != nil {
		return nil, errors.Join(models.ErrSyncUnavailable, err)
	}
	return alarms, nil
}

// Alarm returns a mirrored alarm by id.
func (m *Mirror) Alarm(id string) (models.Alarm, error) {
	var a models.Alarm
	err := m.db.First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Alarm{}, models.ErrAlarmNotFound
	}
	if err != nil {
		return models.Alarm{}, errors.Join(models.ErrSyncUnavailable, err)
	}
	return a, nil
}

// Settings returns the mirrored settings, or defaults when nothing has been
// synced yet.
func (m *Mirror) Settings() models.Settings {
	var row settingsRow
	err := m.db.First(&row, "key = ?", settingsKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings()
	}
	if err != nil {
		m.log.Warn("failed to load mirrored settings, using defaults", zap.Error(err))
		return models.DefaultSettings()
	}
	return row.Settings
}

// Add inserts a locally derived alarm, such as a snooze instance created
// from a notification action while no foreground client is alive.
func (m *Mirror) Add(a models.Alarm) error {
	if err := m.db.Create(&a).Error; err != nil {
		return &models.PersistenceError{Op: "add mirrored alarm", Err: err}
	}
	return nil
}

// Remove deletes a mirrored alarm by id.
func (m *Mirror) Remove(id string) error {
	if err := m.db.Delete(&models.Alarm{}, "id = ?", id).Error; err != nil {
		return &models.PersistenceError{Op: "remove mirrored alarm", Err: err}
	}
	return nil
}
