package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "paygate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	storage := newTestStorage(t)

	conf := map[string]string{"app_id": "2021", "private_key": "pk"}
	require.NoError(t, storage.SaveConfig("alipay", conf))

	loaded, err := storage.LoadConfig("alipay")
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
}

func TestSQLiteStorage_Upsert(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveConfig("wechat", map[string]string{"key": "old"}))
	require.NoError(t, storage.SaveConfig("wechat", map[string]string{"key": "new"}))

	loaded, err := storage.LoadConfig("wechat")
	require.NoError(t, err)
	assert.Equal(t, "new", loaded["key"])
}

func TestSQLiteStorage_LoadMissing(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.LoadConfig("nowhere")
	assert.Error(t, err)
}

func TestSQLiteStorage_LoadAll(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveConfig("alipay", map[string]string{"app_id": "a"}))
	require.NoError(t, storage.SaveConfig("stripe", map[string]string{"secret_key": "sk"}))

	configs, err := storage.LoadAllConfigs()
	require.NoError(t, err)
	assert.Len(t, configs, 2)
	assert.Equal(t, "a", configs["alipay"]["app_id"])
	assert.Equal(t, "sk", configs["stripe"]["secret_key"])
}

func TestSQLiteStorage_Delete(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveConfig("stripe", map[string]string{"secret_key": "sk"}))
	require.NoError(t, storage.DeleteConfig("stripe"))

	_, err := storage.LoadConfig("stripe")
	assert.Error(t, err)

	// deleting an absent config is not an error
	assert.NoError(t, storage.DeleteConfig("stripe"))
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paygate.db")

	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.SaveConfig("alipay", map[string]string{"app_id": "a"}))
	require.NoError(t, storage.Close())

	reopened, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadConfig("alipay")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded["app_id"])
}
