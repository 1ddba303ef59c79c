package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationService_Defaults(t *testing.T) {
	config := NewConfigurationService()
	config.SetConfigDir(t.TempDir())
	require.NoError(t, config.Initialize())

	assert.Equal(t, "http://localhost:8080/api/v1", config.APIBaseURL())
	assert.Empty(t, config.APIToken())
	assert.Equal(t, 30*time.Second, config.RequestTimeout())
}

func TestConfigurationService_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "DBA_API_URL: https://assistant.example.com/api\nDBA_TIMEOUT_SECONDS: \"5\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	config := NewConfigurationService()
	config.SetConfigDir(dir)
	require.NoError(t, config.Initialize())

	assert.Equal(t, "https://assistant.example.com/api", config.APIBaseURL())
	assert.Equal(t, 5*time.Second, config.RequestTimeout())
}

func TestConfigurationService_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "DBA_API_TOKEN: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))
	t.Setenv("DBA_API_TOKEN", "from-env")

	config := NewConfigurationService()
	config.SetConfigDir(dir)
	require.NoError(t, config.Initialize())

	assert.Equal(t, "from-env", config.APIToken())
}

func TestConfigurationService_InvalidTimeoutFallsBack(t *testing.T) {
	config := NewConfigurationService()
	config.SetConfigDir(t.TempDir())
	require.NoError(t, config.Initialize())
	require.NoError(t, config.SetConfigValue(ConfigKeyTimeout, "not-a-number"))

	assert.Equal(t, 30*time.Second, config.RequestTimeout())
}

func TestConfigurationService_Uninitialized(t *testing.T) {
	config := NewConfigurationService()

	_, err := config.GetConfigValue(ConfigKeyAPIURL)
	assert.Error(t, err)
	assert.Error(t, config.SetConfigValue("k", "v"))
}
