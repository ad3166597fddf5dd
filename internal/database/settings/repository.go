// Package settings provides database operations for application settings.
//
// Settings stored here override the environment configuration; deleting a
// key reverts to the configured value.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	schedule, ok := repo.Lookup(entities.SettingKeyNotebookSyncSchedule)
package settings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Lookup returns a non-empty stored value. Lookup errors count as "not set".
func (r *Repository) Lookup(key string) (string, bool) {
	setting, err := r.GetSetting(key)
	if err != nil || setting.Value == "" {
		return "", false
	}
	return setting.Value, true
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	setting := entities.Setting{Key: key}
	return r.db.Where(entities.Setting{Key: key}).
		Assign(entities.Setting{Value: value}).
		FirstOrCreate(&setting).Error
}

// SetSettings writes several settings in one transaction.
func (r *Repository) SetSettings(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := NewRepository(tx)
		for key, value := range values {
			if err := txRepo.SetSetting(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

// DeleteSettings removes every given key; missing keys are not an error.
func (r *Repository) DeleteSettings(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.db.Where("key IN ?", keys).Delete(&entities.Setting{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
