// Package config loads formflow runtime settings from formflow.yaml, the
// environment (FORMFLOW_ prefix) and command line flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: FORMFLOW_DATABASE_DSN and so on.
const EnvPrefix = "FORMFLOW"

// Config is the full runtime configuration.
type Config struct {
	// Environment is reported with every submission ("development", "production").
	Environment string `mapstructure:"environment" yaml:"environment"`
	// Locale is the default copy locale, "en" or "cy".
	Locale string `mapstructure:"locale" yaml:"locale"`
	// BaseURL prefixes step links in summaries and navigation.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Verification VerificationConfig `mapstructure:"verification" yaml:"verification"`
	Submission   SubmissionConfig   `mapstructure:"submission" yaml:"submission"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Forms        FormsConfig        `mapstructure:"forms" yaml:"forms"`
}

// DatabaseConfig selects the application store.
type DatabaseConfig struct {
	// Driver is "sqlite" (modernc) or "postgres" (lib/pq).
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// VerificationConfig points the bank account check at its endpoint. An empty
// URL disables the check.
type VerificationConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// SubmissionConfig points at the downstream system receiving completed
// applications.
type SubmissionConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`
	Token      string        `mapstructure:"token" yaml:"token,omitempty"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// StorageConfig holds the upload directory.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir" yaml:"upload_dir"`
}

// FormsConfig locates definition documents and copy catalogs. Empty
// directories fall back to the compiled-in grant form and inline copy.
type FormsConfig struct {
	DefinitionsDir string `mapstructure:"definitions_dir" yaml:"definitions_dir"`
	CopyDir        string `mapstructure:"copy_dir" yaml:"copy_dir"`
}

// ErrInvalid wraps configuration values that fail Validate.
var ErrInvalid = errors.New("config: invalid")

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("locale", "en")
	v.SetDefault("base_url", "/apply/awards-for-all")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "formflow.db")
	v.SetDefault("verification.timeout", 5*time.Second)
	v.SetDefault("verification.max_retries", 1)
	v.SetDefault("submission.timeout", 30*time.Second)
	v.SetDefault("submission.max_retries", 3)
	v.SetDefault("storage.upload_dir", "uploads")

	// Keys without a useful default are still registered so Unmarshal
	// sees their environment overrides.
	for _, key := range []string{"verification.url", "submission.url", "submission.token", "forms.definitions_dir", "forms.copy_dir"} {
		v.SetDefault(key, "")
	}
}

// New returns a viper instance with defaults and environment overrides set.
// When path is empty, formflow.yaml is looked up in the working directory
// and in ~/.config/formflow.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "formflow"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. A missing file is not an error when no
// explicit path was given.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is New, Read and Decode in one call.
func Load(path string) (Config, error) {
	v := New(path)
	if err := Read(v); err != nil {
		return Config{}, err
	}
	return Decode(v)
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	switch c.Locale {
	case "en", "cy":
	default:
		errs = append(errs, fmt.Errorf("%w: locale %q must be en or cy", ErrInvalid, c.Locale))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("%w: database driver %q must be sqlite or postgres", ErrInvalid, c.Database.Driver))
	}
	if c.Verification.Timeout < 0 || c.Submission.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeouts must not be negative", ErrInvalid))
	}
	return errors.Join(errs...)
}
