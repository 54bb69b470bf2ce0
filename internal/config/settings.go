package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ulpi-io/agent-library/internal/registry"
)

const (
	settingsName = "config"
	settingsType = "yaml"
)

// Setting keys. Each is also a flag name and an AGENT_LIBRARY_* variable.
const (
	KeyManifestURL = "manifest-url"
	KeyRawBaseURL  = "raw-base-url"
	KeyAPIBaseURL  = "api-base-url"
	KeyToken       = "token"
	KeyTimeout     = "timeout"
	KeyRetries     = "retries"
	KeyConcurrency = "concurrency"
	KeyDebug       = "debug"
	KeyNoColor     = "no-color"
)

// Settings are the resolved runtime settings. Precedence is flag, then
// environment, then settings file, then default.
type Settings struct {
	ManifestURL string
	RawBaseURL  string
	APIBaseURL  string
	Token       string
	Timeout     time.Duration
	Retries     int
	Concurrency int
	Debug       bool
	NoColor     bool
}

// SettingsDir returns the directory holding the optional settings file.
func SettingsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(dir, AppName)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyManifestURL, registry.DefaultManifestURL)
	v.SetDefault(KeyRawBaseURL, registry.DefaultRawBaseURL)
	v.SetDefault(KeyAPIBaseURL, registry.DefaultAPIBaseURL)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyRetries, 1)
	v.SetDefault(KeyConcurrency, 1)

	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(AppName, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads the settings file into v and resolves Settings. An
// explicit file must exist; the default one is optional.
func LoadSettings(v *viper.Viper, file string) (Settings, error) {
	v.SetConfigType(settingsType)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(settingsName)
		v.AddConfigPath(SettingsDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading settings: %w", err)
		}
	}

	s := Settings{
		ManifestURL: v.GetString(KeyManifestURL),
		RawBaseURL:  v.GetString(KeyRawBaseURL),
		APIBaseURL:  v.GetString(KeyAPIBaseURL),
		Token:       v.GetString(KeyToken),
		Timeout:     v.GetDuration(KeyTimeout),
		Retries:     v.GetInt(KeyRetries),
		Concurrency: v.GetInt(KeyConcurrency),
		Debug:       v.GetBool(KeyDebug),
		NoColor:     v.GetBool(KeyNoColor),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the client cannot run with.
func (s Settings) Validate() error {
	if s.Timeout <= 0 {
		return fmt.Errorf("invalid %s: %s", KeyTimeout, s.Timeout)
	}
	if s.Retries < 0 {
		return fmt.Errorf("invalid %s: %d", KeyRetries, s.Retries)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("invalid %s: %d (must be at least 1)", KeyConcurrency, s.Concurrency)
	}
	return nil
}

// ClientOptions converts settings into registry client options.
func (s Settings) ClientOptions() []registry.Option {
	return []registry.Option{
		registry.WithManifestURL(s.ManifestURL),
		registry.WithRawBaseURL(s.RawBaseURL),
		registry.WithAPIBaseURL(s.APIBaseURL),
		registry.WithToken(s.Token),
		registry.WithTimeout(s.Timeout),
		registry.WithRetries(s.Retries),
	}
}
