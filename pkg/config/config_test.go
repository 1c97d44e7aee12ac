package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	})
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)
	assert.False(t, IsInitialized())
	assert.Nil(t, GetLLM())
	assert.Nil(t, GetVault())
	assert.Nil(t, GetUI())

	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))
	assert.True(t, IsInitialized())

	ids := []string{}
	for _, s := range Global().GetSections() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{SectionIDLLM, SectionIDVault, SectionIDUI}, ids)

	require.NotNil(t, GetLLM())
	assert.Equal(t, DefaultSettings(), GetLLM().Settings())
	require.NotNil(t, GetVault())
	assert.Equal(t, DefaultIgnorePatterns, GetVault().GetIgnore())
}

func TestGlobalPanicsWhenUninitialized(t *testing.T) {
	resetGlobal(t)
	assert.Panics(t, func() { Global() })
}

func TestStoredValuesMergeOverDefaults(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfigFile(t, path, map[string]map[string]interface{}{
		"llm":   {"api_key": "sk-file", "max_tool_rounds": float64(3)},
		"vault": {"dir": "/notes"},
	})

	require.NoError(t, Initialize(path))

	settings := GetLLM().Settings()
	assert.Equal(t, "sk-file", settings.APIKey)
	assert.Equal(t, 3, settings.MaxToolRounds)
	assert.Equal(t, DefaultAPIURL, settings.APIURL)
	assert.Equal(t, DefaultModel, settings.Model)
	assert.Equal(t, 120*time.Second, settings.RequestTimeout)

	assert.Equal(t, "/notes", GetVault().GetDir())
	assert.Equal(t, DefaultIgnorePatterns, GetVault().GetIgnore())
}

func TestSaveAllRoundTrip(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))

	GetLLM().SetAPIKey("sk-saved")
	GetLLM().SetModel("deepseek-reasoner")
	GetVault().SetDir("/vault")
	require.NoError(t, Global().SaveAll())

	store, err := NewFileStore(path)
	require.NoError(t, err)
	manager, err := NewDefaultManager(store)
	require.NoError(t, err)

	section, ok := manager.GetSection(SectionIDLLM)
	require.True(t, ok)
	settings := section.(*LLMSection).Settings()
	assert.Equal(t, "sk-saved", settings.APIKey)
	assert.Equal(t, "deepseek-reasoner", settings.Model)
	assert.Equal(t, DefaultHistoryWindow, settings.HistoryWindow)

	vault, ok := manager.GetSection(SectionIDVault)
	require.True(t, ok)
	assert.Equal(t, "/vault", vault.(*VaultSection).GetDir())
	assert.Equal(t, DefaultIgnorePatterns, vault.(*VaultSection).GetIgnore())
}
