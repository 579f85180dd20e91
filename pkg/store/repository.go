// Package store owns every durable write in the process. The foreground
// Repository and the notifier's Mirror keep separate SQLite files on purpose:
// the two polling loops cannot share an in-memory cache, so each owns its own
// copy and the mirror is overwritten wholesale by sync snapshots.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dreamclock/pkg/models"
)

const settingsKey = "main"

// settingsRow stores the Settings singleton under a fixed key.
type settingsRow struct {
	Key             string `gorm:"primaryKey"`
	models.Settings `gorm:"embedded"`
}

func (settingsRow) TableName() string { return "settings" }

// Repository is the authoritative store of alarms, settings and custom audio
// assets. Reads never fail the caller: a broken backend logs a warning and
// yields defaults. Mutations persist before returning and report failures as
// PersistenceError values.
type Repository struct {
	db       *gorm.DB
	log      *zap.Logger
	quota    int64
	onChange func()
}

// Open opens (creating if needed) the repository database at path. quotaBytes
// bounds the audio asset store; zero means unlimited.
func Open(path string, quotaBytes int64, log *zap.Logger) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, &models.PersistenceError{Op: "open " + path, Err: err}
	}
	if err := db.AutoMigrate(&models.Alarm{}, &settingsRow{}, &audioAsset{}); err != nil {
		return nil, &models.PersistenceError{Op: "migrate " + path, Err: err}
	}
	return &Repository{db: db, log: log, quota: quotaBytes}, nil
}

// SetOnChange registers a hook invoked after every successful alarm or
// settings mutation. The daemon uses it to push sync snapshots to the
// background notifier.
func (r *Repository) SetOnChange(fn func()) { r.onChange = fn }

func (r *Repository) notifyChange() {
	if r.onChange != nil {
		r.onChange()
	}
}

// Alarms returns all persisted alarms. A read failure logs and returns an
// empty list so the scheduling loop keeps running.
func (r *Repository) Alarms() []models.Alarm {
	var alarms []models.Alarm
	if err := r.db.Order("id").Find(&alarms).Error; err != nil {
		r.log.Warn("failed to load alarms, continuing with empty list", zap.Error(err))
		return nil
	}
	return alarms
}

// Alarm returns a single alarm by id.
func (r *Repository) Alarm(id string) (models.Alarm, error) {
	var a models.Alarm
	err := r.db.First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Alarm{}, models.ErrAlarmNotFound
	}
	if err != nil {
		return models.Alarm{}, &models.PersistenceError{Op: "load alarm", Err: err}
	}
	return a, nil
}

// AddAlarm validates the draft, assigns a fresh id and persists it. New
// alarms start enabled and not snoozed.
func (r *Repository) AddAlarm(draft models.Alarm) (models.Alarm, error) {
	draft.ID = uuid.New().String()
	draft.Enabled = true
	draft.Snoozed = false
	if err := draft.Validate(); err != nil {
		return models.Alarm{}, err
	}
	if err := r.db.Create(&draft).Error; err != nil {
		return models.Alarm{}, &models.PersistenceError{Op: "add alarm", Err: err}
	}
	r.notifyChange()
	return draft, nil
}

// AlarmPatch carries a partial alarm update; nil fields are left untouched.
type AlarmPatch struct {
	Time    *string
	Label   *string
	Days    []string
	Sound   *string
	Vibrate *bool
	Enabled *bool
	Snoozed *bool
}

func (p AlarmPatch) apply(a *models.Alarm) {
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Label != nil {
		a.Label = *p.Label
	}
	if p.Days != nil {
		a.Days = p.Days
	}
	if p.Sound != nil {
		a.Sound = *p.Sound
	}
	if p.Vibrate != nil {
		a.Vibrate = *p.Vibrate
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if p.Snoozed != nil {
		a.Snoozed = *p.Snoozed
	}
}

// UpdateAlarm merges the patch into the stored alarm and persists the result.
func (r *Repository) UpdateAlarm(id string, patch AlarmPatch) (models.Alarm, error) {
	a, err := r.Alarm(id)
	if err != nil {
		return models.Alarm{}, err
	}
	patch.apply(&a)
	if err := a.Validate(); err != nil {
		return models.Alarm{}, err
	}
	if err := r.db.Save(&a).Error; err != nil {
		return models.Alarm{}, &models.PersistenceError{Op: "update alarm", Err: err}
	}
	r.notifyChange()
	return a, nil
}

// DeleteAlarm removes an alarm. Deleting an unknown id is a no-op.
func (r *Repository) DeleteAlarm(id string) error {
	if err := r.db.Delete(&models.Alarm{}, "id = ?", id).Error; err != nil {
		return &models.PersistenceError{Op: "delete alarm", Err: err}
	}
	r.notifyChange()
	return nil
}

// Settings returns the persisted settings singleton, or defaults when the
// row is absent or unreadable.
func (r *Repository) Settings() models.Settings {
	var row settingsRow
	err := r.db.First(&row, "key = ?", settingsKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings()
	}
	if err != nil {
		r.log.Warn("failed to load settings, using defaults", zap.Error(err))
		return models.DefaultSettings()
	}
	return row.Settings
}

// SaveSettings persists the settings singleton.
func (r *Repository) SaveSettings(s models.Settings) error {
	row := settingsRow{Key: settingsKey, Settings: s}
	if err := r.db.Save(&row).Error; err != nil {
		return &models.PersistenceError{Op: "save settings", Err: err}
	}
	r.notifyChange()
	return nil
}

// audioAsset is a named binary blob in the custom ringtone store.
type audioAsset struct {
	Name       string `gorm:"primaryKey"`
	Data       []byte
	Size       int64
	UploadedAt time.Time
}

// AssetInfo describes a stored audio asset without its payload.
type AssetInfo struct {
	Name       string
	Size       int64
	UploadedAt time.Time
}

// StoreAudioAsset saves a new named audio blob. Overwriting is not permitted;
// a duplicate name fails with ErrDuplicateName, and an upload that would not
// fit in the remaining quota fails with ErrQuotaExceeded before any write.
func (r *Repository) StoreAudioAsset(name string, data []byte) error {
	if name == "" || len(data) == 0 {
		return fmt.Errorf("empty audio asset name or payload")
	}
	var count int64
	if err := r.db.Model(&audioAsset{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return &models.PersistenceError{Op: "check asset name", Err: err}
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", models.ErrDuplicateName, name)
	}
	used, available := r.StorageUsage()
	if r.quota > 0 && int64(len(data)) > available {
		return fmt.Errorf("%w: need %d bytes, %d available (%d used)",
			models.ErrQuotaExceeded, len(data), available, used)
	}
	asset := audioAsset{Name: name, Data: data, Size: int64(len(data)), UploadedAt: time.Now()}
	if err := r.db.Create(&asset).Error; err != nil {
		return &models.PersistenceError{Op: "store audio asset", Err: err}
	}
	return nil
}

// AudioAsset returns the blob stored under name, or ErrAssetNotFound. An
// alarm may reference a name that no longer resolves; callers fall back to a
// built-in sound.
func (r *Repository) AudioAsset(name string) ([]byte, error) {
	var asset audioAsset
	err := r.db.First(&asset, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssetNotFound
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "load audio asset", Err: err}
	}
	return asset.Data, nil
}

// HasAudioAsset reports whether name resolves to a stored asset.
func (r *Repository) HasAudioAsset(name string) bool {
	var count int64
	if err := r.db.Model(&audioAsset{}).Where("name = ?", name).Count(&count).Error; err != nil {
		r.log.Warn("failed to check audio asset", zap.String("name", name), zap.Error(err))
		return false
	}
	return count > 0
}

// ListAudioAssets returns metadata for every stored asset.
func (r *Repository) ListAudioAssets() ([]AssetInfo, error) {
	var assets []audioAsset
	if err := r.db.Select("name", "size", "uploaded_at").Order("name").Find(&assets).Error; err != nil {
		return nil, &models.PersistenceError{Op: "list audio assets", Err: err}
	}
	infos := make([]AssetInfo, 0, len(assets))
	for _, a := range assets {
		infos = append(infos, AssetInfo{Name: a.Name, Size: a.Size, UploadedAt: a.UploadedAt})
	}
	return infos, nil
}

// DeleteAudioAsset removes a named asset. Alarms referencing it keep the
// dangling name and fall back to a built-in sound at trigger time.
func (r *Repository) DeleteAudioAsset(name string) error {
	if err := r.db.Delete(&audioAsset{}, "name = ?", name).Error; err != nil {
		return &models.PersistenceError{Op: "delete audio asset", Err: err}
	}
	return nil
}

// ClearAudioAssets removes every stored asset.
func (r *Repository) ClearAudioAssets() error {
	if err := r.db.Where("1 = 1").Delete(&audioAsset{}).Error; err != nil {
		return &models.PersistenceError{Op: "clear audio assets", Err: err}
	}
	return nil
}

// StorageUsage returns used and available byte counts for the audio asset
// store. Best effort: a read failure reports zero/zero.
func (r *Repository) StorageUsage() (used, available int64) {
	var total struct{ Total int64 }
	err := r.db.Model(&audioAsset{}).Select("COALESCE(SUM(size), 0) AS total").Scan(&total).Error
	if err != nil {
		r.log.Warn("failed to compute storage usage", zap.Error(err))
		return 0, 0
	}
	used = total.Total
	if r.quota <= 0 {
		return used, 0
	}
	available = r.quota - used
	if available < 0 {
		available = 0
	}
	return used, available
}
