// Package config handles input from etc/main.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "BIBLIA_CONFIG_JSON"

const (
	defaultShutDownTime      = 5
	defaultScriptureURL      = "https://api.scripture.api.bible/v1"
	defaultSimpleVerseURL    = "https://bible-api.com"
	defaultTranslation       = "almeida"
	defaultRemoteTimeout     = 15 * time.Second
	defaultImportConcurrency = 4
	defaultSessionExpiry     = 24 * time.Hour
	defaultCacheExpiration   = 10 * time.Minute
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")
	v.SetEnvPrefix("BIBLIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the config and fill in defaults for optional values.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnsupportedGormEngine, invalidErrMessage)
	}

	if c.Legacy.Enabled && c.Legacy.Host == "" {
		return errors.Wrap(ErrLegacyHostEmpty, invalidErrMessage)
	}

	setDefaults(c)

	return nil
}

func setDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Webserver.CacheExpiration == 0 {
		c.Webserver.CacheExpiration = defaultCacheExpiration
	}

	if c.Scripture.BaseURL == "" {
		c.Scripture.BaseURL = defaultScriptureURL
	}

	if c.Scripture.Timeout == 0 {
		c.Scripture.Timeout = defaultRemoteTimeout
	}

	if c.SimpleVerse.BaseURL == "" {
		c.SimpleVerse.BaseURL = defaultSimpleVerseURL
	}

	if c.SimpleVerse.DefaultTranslation == "" {
		c.SimpleVerse.DefaultTranslation = defaultTranslation
	}

	if c.SimpleVerse.Timeout == 0 {
		c.SimpleVerse.Timeout = defaultRemoteTimeout
	}

	if c.Chat.Timeout == 0 {
		c.Chat.Timeout = defaultRemoteTimeout
	}

	if c.Bible.ImportConcurrency <= 0 {
		c.Bible.ImportConcurrency = defaultImportConcurrency
	}
}
