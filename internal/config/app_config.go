// Package config loads lsreplay defaults from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/lsreplay/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Report ReportConfiguration `mapstructure:"report"`
	Tree   TreeConfiguration   `mapstructure:"tree"`
}

// ReportConfiguration defines defaults for the report command.
type ReportConfiguration struct {
	Format        string `mapstructure:"format"`
	Threshold     *int64 `mapstructure:"threshold"`
	TotalCapacity *int64 `mapstructure:"capacity"`
	RequiredFree  *int64 `mapstructure:"required_free"`
	Verify        *bool  `mapstructure:"verify"`
	Clipboard     *bool  `mapstructure:"clipboard"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	Format    string `mapstructure:"format"`
	Summary   *bool  `mapstructure:"summary"`
	Clipboard *bool  `mapstructure:"clipboard"`
}

// LoadApplicationConfiguration loads configuration from the global file and then the local or explicit file.
// Values from the later file override earlier ones key by key.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if validationError := merged.validate(); validationError != nil {
		return ApplicationConfiguration{}, validationError
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// loadConfigurationFromPath reads one file. A missing file yields an empty configuration
// unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

func (config ApplicationConfiguration) validate() error {
	checks := []struct {
		key   string
		value *int64
	}{
		{key: "report.threshold", value: config.Report.Threshold},
		{key: "report.capacity", value: config.Report.TotalCapacity},
		{key: "report.required_free", value: config.Report.RequiredFree},
	}
	for _, check := range checks {
		if check.value != nil && *check.value < 0 {
			return fmt.Errorf("configuration %s must not be negative, got %d", check.key, *check.value)
		}
	}
	return nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Report = result.Report.merge(override.Report)
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config ReportConfiguration) merge(override ReportConfiguration) ReportConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Threshold != nil {
		result.Threshold = cloneInt64(override.Threshold)
	}
	if override.TotalCapacity != nil {
		result.TotalCapacity = cloneInt64(override.TotalCapacity)
	}
	if override.RequiredFree != nil {
		result.RequiredFree = cloneInt64(override.RequiredFree)
	}
	if override.Verify != nil {
		result.Verify = cloneBool(override.Verify)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
