// Package config provides configuration management for devbridge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/devbridge"
	DefaultConfigFile = "config.yaml"

	DefaultConnectTimeout = 10 * time.Second
	DefaultADB            = "adb"
	DefaultSimulatorTool  = "ios-sim"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey   = errors.New("invalid configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
	ErrADBNotFound  = errors.New("android debug bridge not found")
	ErrNoEditor     = errors.New("$EDITOR environment variable not set")
)

// validKeys is built once from Config struct reflection and maps each key to
// the Go type it decodes into.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

var durationType = reflect.TypeOf(time.Duration(0))

// Config represents the full devbridge configuration.
type Config struct {
	Android  AndroidConfig  `mapstructure:"android"`
	IOS      IOSConfig      `mapstructure:"ios"`
	Transfer TransferConfig `mapstructure:"transfer"`
	Log      LogConfig      `mapstructure:"log"`
}

// AndroidConfig holds debug bridge settings.
type AndroidConfig struct {
	// ADBPath is an explicit bridge executable. When empty the bridge is
	// located via $ANDROID_HOME and then $PATH.
	ADBPath        string        `mapstructure:"adb_path"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" validate:"gte=0"`
}

// IOSConfig holds simulator and device settings.
type IOSConfig struct {
	SimulatorPath  string        `mapstructure:"simulator_path" validate:"required"`
	SDK            string        `mapstructure:"sdk"`
	Device         string        `mapstructure:"device"`
	LaunchTimeout  time.Duration `mapstructure:"launch_timeout" validate:"gte=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	JustLaunch     bool          `mapstructure:"just_launch"`
}

// TransferConfig holds file-transfer policy.
type TransferConfig struct {
	ErrorsAsWarnings bool `mapstructure:"errors_as_warnings"`
}

// LogConfig holds logging defaults; the -v flag takes precedence.
type LogConfig struct {
	Verbosity int `mapstructure:"verbosity" validate:"gte=0,lte=3"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ADBResolver returns a function locating the bridge executable. The order
// is the configured path, then $ANDROID_HOME/platform-tools/adb, then adb on
// lookPath.
func (c *Config) ADBResolver(lookPath func(string) (string, error)) func() (string, error) {
	return func() (string, error) {
		if c.Android.ADBPath != "" {
			return c.Android.ADBPath, nil
		}

		if home := os.Getenv("ANDROID_HOME"); home != "" {
			candidate := filepath.Join(home, "platform-tools", DefaultADB)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		p, err := lookPath(DefaultADB)
		if err != nil {
			return "", fmt.Errorf("%w: set android.adb_path or ANDROID_HOME: %w", ErrADBNotFound, err)
		}
		return p, nil
	}
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding
	v.SetEnvPrefix("DEVBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("android.adb_path", "DEVBRIDGE_ADB")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("ios.simulator_path", "DEVBRIDGE_IOS_SIM")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("ios.device", "DEVBRIDGE_IOS_DEVICE")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("android.adb_path", "")
	l.v.SetDefault("android.command_timeout", "0s")
	l.v.SetDefault("ios.simulator_path", DefaultSimulatorTool)
	l.v.SetDefault("ios.sdk", "")
	l.v.SetDefault("ios.device", "")
	l.v.SetDefault("ios.launch_timeout", "0s")
	l.v.SetDefault("ios.connect_timeout", DefaultConnectTimeout.String())
	l.v.SetDefault("ios.just_launch", false)
	l.v.SetDefault("transfer.errors_as_warnings", false)
	l.v.SetDefault("log.verbosity", 0)
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Android.ADBPath = l.expandPath(cfg.Android.ADBPath)
	cfg.IOS.SimulatorPath = l.expandPath(cfg.IOS.SimulatorPath)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Settings returns every effective setting as a nested map.
func (l *Loader) Settings() map[string]any {
	return l.v.AllSettings()
}

// Set sets a configuration value by dot-notation key and persists it.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := checkValue(key, value); err != nil {
		return err
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if _, ok := validKeys[key]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// Keys returns every valid configuration key.
func Keys() []string {
	keys := make([]string, 0, len(validKeys))
	for k, t := range validKeys {
		if t.Kind() != reflect.Struct {
			keys = append(keys, k)
		}
	}
	return keys
}

// checkValue rejects values that would not decode into the key's type.
func checkValue(key, value string) error {
	t := validKeys[key]

	var err error
	switch {
	case t == durationType:
		_, err = time.ParseDuration(value)
	case t.Kind() == reflect.Bool:
		_, err = strconv.ParseBool(value)
	case t.Kind() == reflect.Int:
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && key == "log.verbosity" && (n < 0 || n > 3) {
			err = errors.New("must be between 0 and 3")
		}
	case t.Kind() == reflect.Struct:
		err = errors.New("cannot set a section")
	}

	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, value, err)
	}
	return nil
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]reflect.Type {
	keys := make(map[string]reflect.Type)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]reflect.Type) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = field.Type

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
