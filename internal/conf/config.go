// config.go: This file contains the configuration for the silentcam application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for application logging.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// CameraSettings contains settings for the camera session.
type CameraSettings struct {
	Facing     string  // preferred camera facing, "environment" or "user"
	PixelRatio float64 // device pixel density, 1.0 if unknown
	Source     string  // frame source path for the CLI (directory of images)
}

// CaptureSettings contains defaults for the capture pipeline.
type CaptureSettings struct {
	Tier    string // default resolution tier, "normal", "high" or "ultra"
	Sharpen bool   // apply the sharpening pass on capture
}

// ThumbnailSettings contains defaults for thumbnail derivation.
type ThumbnailSettings struct {
	MaxWidth  int     // thumbnail bounding box width
	MaxHeight int     // thumbnail bounding box height
	Quality   float64 // JPEG quality factor, 0.1-1.0
}

// ExportSettings contains settings for the export sink chain.
type ExportSettings struct {
	Path string // directory the download sink writes into
}

// SQLiteSettings contains SQLite database settings.
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite output
	Path    string // path to the database file
}

// OutputSettings contains settings for persistence and export.
type OutputSettings struct {
	SQLite SQLiteSettings // SQLite output settings
	Export ExportSettings // export sink settings
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string    // name of the application instance
		Log  LogConfig // main log settings
	}

	Camera    CameraSettings    // camera session settings
	Capture   CaptureSettings   // capture pipeline defaults
	Thumbnail ThumbnailSettings // thumbnail derivation defaults
	Output    OutputSettings    // persistence and export settings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	once             sync.Once
)

// Load reads the configuration into a new Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets up viper with defaults, config paths and the config file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !asConfigFileNotFound(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file found, create one from the embedded default
		if err := createDefaultConfig(configPaths[0]); err != nil {
			return err
		}
	}

	return nil
}

func asConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// createDefaultConfig writes the embedded default config file to the first config path.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading newly created config file: %w", err)
	}

	log.Printf("Created default config file at %s", configPath)
	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml,
// in priority order: current directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return paths, nil // fall back to current directory only
	}

	paths = append(paths, filepath.Join(userConfigDir, "silentcam"))
	return paths, nil
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the final rename is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}

// ValidateSettings checks settings for values the pipeline cannot work with.
func ValidateSettings(settings *Settings) error {
	switch settings.Capture.Tier {
	case "normal", "high", "ultra":
	default:
		return fmt.Errorf("invalid capture tier: %q", settings.Capture.Tier)
	}

	switch settings.Camera.Facing {
	case "environment", "user":
	default:
		return fmt.Errorf("invalid camera facing: %q", settings.Camera.Facing)
	}

	if settings.Camera.PixelRatio <= 0 {
		settings.Camera.PixelRatio = 1.0
	}

	if settings.Thumbnail.MaxWidth <= 0 || settings.Thumbnail.MaxHeight <= 0 {
		return fmt.Errorf("thumbnail bounds must be positive, got %dx%d",
			settings.Thumbnail.MaxWidth, settings.Thumbnail.MaxHeight)
	}
	if settings.Thumbnail.Quality < 0.1 || settings.Thumbnail.Quality > 1.0 {
		return fmt.Errorf("thumbnail quality must be within 0.1-1.0, got %v", settings.Thumbnail.Quality)
	}

	return nil
}
