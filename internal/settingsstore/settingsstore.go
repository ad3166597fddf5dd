// Package settingsstore resolves runtime settings. Values saved in the
// database win over the environment configuration.
package settingsstore

import (
	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/database/settings"
)

const (
	SourceDatabase = "database"
	SourceConfig   = "config"
)

type SettingsStore struct {
	repo *settings.Repository
	cfg  *config.Config
}

func New(repo *settings.Repository, cfg *config.Config) *SettingsStore {
	return &SettingsStore{repo: repo, cfg: cfg}
}

// lookup returns the stored value for key, or fallback from the config.
func (s *SettingsStore) lookup(key, fallback string) (string, string) {
	if value, ok := s.repo.Lookup(key); ok {
		return value, SourceDatabase
	}
	return fallback, SourceConfig
}
