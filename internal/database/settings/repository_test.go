package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Setting{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.SetSetting(entities.SettingKeyNotebookSyncRegion, "co.jp")
	require.NoError(t, err)

	setting, err := repo.GetSetting(entities.SettingKeyNotebookSyncRegion)
	require.NoError(t, err)
	assert.Equal(t, entities.SettingKeyNotebookSyncRegion, setting.Key)
	assert.Equal(t, "co.jp", setting.Value)
}

func TestRepository_SetSetting_Update(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SetSetting("schedule", "0 * * * *"))
	require.NoError(t, repo.SetSetting("schedule", "0 0 * * *"))

	setting, err := repo.GetSetting("schedule")
	require.NoError(t, err)
	assert.Equal(t, "0 0 * * *", setting.Value)

	var count int64
	repo.db.Model(&entities.Setting{}).Where("key = ?", "schedule").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GetSetting_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetSetting("nonexistent")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Lookup(t *testing.T) {
	repo := setupTestDB(t)

	_, ok := repo.Lookup("missing")
	assert.False(t, ok)

	require.NoError(t, repo.SetSetting("empty", ""))
	_, ok = repo.Lookup("empty")
	assert.False(t, ok)

	require.NoError(t, repo.SetSetting("set", "value"))
	value, ok := repo.Lookup("set")
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestRepository_SetSettings(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.SetSettings(map[string]string{
		entities.SettingKeyNotebookSyncLastStatus:  "completed",
		entities.SettingKeyNotebookSyncLastMessage: "2 books",
	})
	require.NoError(t, err)

	status, _ := repo.Lookup(entities.SettingKeyNotebookSyncLastStatus)
	message, _ := repo.Lookup(entities.SettingKeyNotebookSyncLastMessage)
	assert.Equal(t, "completed", status)
	assert.Equal(t, "2 books", message)
}

func TestRepository_DeleteSettings(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.SetSetting("a", "1"))
	require.NoError(t, repo.SetSetting("b", "2"))
	require.NoError(t, repo.SetSetting("c", "3"))

	require.NoError(t, repo.DeleteSettings("a", "b", "nonexistent"))

	_, ok := repo.Lookup("a")
	assert.False(t, ok)
	_, ok = repo.Lookup("c")
	assert.True(t, ok)

	assert.NoError(t, repo.DeleteSetting("nonexistent"))
	assert.NoError(t, repo.DeleteSettings())
}
