package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dbassist/internal/logger"
)

// Configuration keys.
const (
	ConfigKeyAPIURL   = "DBA_API_URL"
	ConfigKeyAPIToken = "DBA_API_TOKEN"
	ConfigKeyTimeout  = "DBA_TIMEOUT_SECONDS"
	ConfigKeyLocalDB  = "DBA_LOCAL_DB"
)

// ConfigurationService loads and serves dbassist configuration. Sources are
// merged in priority order (highest last): defaults, ~/.dbassist/config.yaml,
// a local .env file, then DBA_-prefixed environment variables.
type ConfigurationService struct {
	initialized bool
	mu          sync.RWMutex
	values      map[string]string
	configDir   string
}

// NewConfigurationService creates a new ConfigurationService instance.
func NewConfigurationService() *ConfigurationService {
	return &ConfigurationService{
		values: make(map[string]string),
	}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// SetConfigDir overrides the configuration directory. Primarily for tests.
func (c *ConfigurationService) SetConfigDir(dir string) {
	c.configDir = dir
}

// Initialize loads all configuration sources in priority order.
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = map[string]string{
		ConfigKeyAPIURL:  "http://localhost:8080/api/v1",
		ConfigKeyTimeout: "30",
	}

	if err := c.loadConfigFile(); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	c.loadDotEnv()
	c.loadEnvironment()

	c.initialized = true
	logger.ServiceOperation("configuration", "loaded", "keys", len(c.values))
	return nil
}

// loadConfigFile merges ~/.dbassist/config.yaml when it exists.
func (c *ConfigurationService) loadConfigFile() error {
	dir := c.configDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil // no home, no config file
		}
		dir = filepath.Join(home, ".dbassist")
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fileValues map[string]string
	if err := yaml.Unmarshal(data, &fileValues); err != nil {
		return fmt.Errorf("invalid yaml in %s: %w", path, err)
	}
	for key, value := range fileValues {
		c.values[key] = value
	}
	return nil
}

// loadDotEnv merges a .env file from the working directory when present.
func (c *ConfigurationService) loadDotEnv() {
	envValues, err := godotenv.Read(".env")
	if err != nil {
		return
	}
	for key, value := range envValues {
		if strings.HasPrefix(key, "DBA_") {
			c.values[key] = value
		}
	}
}

// loadEnvironment merges DBA_-prefixed process environment variables.
func (c *ConfigurationService) loadEnvironment() {
	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, "=")
		if found && strings.HasPrefix(key, "DBA_") {
			c.values[key] = value
		}
	}
}

// GetConfigValue retrieves a configuration value by key. Missing keys return
// an empty string, not an error.
func (c *ConfigurationService) GetConfigValue(key string) (string, error) {
	if !c.initialized {
		return "", fmt.Errorf("configuration service not initialized")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key], nil
}

// SetConfigValue sets a configuration value. Primarily for testing.
func (c *ConfigurationService) SetConfigValue(key, value string) error {
	if !c.initialized {
		return fmt.Errorf("configuration service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

// APIBaseURL returns the configured API base URL.
func (c *ConfigurationService) APIBaseURL() string {
	value, _ := c.GetConfigValue(ConfigKeyAPIURL)
	return value
}

// APIToken returns the configured bearer token, possibly empty.
func (c *ConfigurationService) APIToken() string {
	value, _ := c.GetConfigValue(ConfigKeyAPIToken)
	return value
}

// LocalDBPath returns the SQLite path for the local executor, possibly empty.
func (c *ConfigurationService) LocalDBPath() string {
	value, _ := c.GetConfigValue(ConfigKeyLocalDB)
	return value
}

// RequestTimeout returns the configured request timeout.
func (c *ConfigurationService) RequestTimeout() time.Duration {
	value, _ := c.GetConfigValue(ConfigKeyTimeout)
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
