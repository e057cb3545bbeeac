// Package config provides configuration management for the mystudy CLI using
// Viper for flexible configuration loading from files, environment variables,
// and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the MYSTUDY_ prefix, and validation. It manages preview
// server settings, lesson scan paths, practice workspace location, and the
// progress database.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Lessons     LessonsConfig     `yaml:"lessons"`
	Workspace   WorkspaceConfig   `yaml:"workspace"`
	Progress    ProgressConfig    `yaml:"progress"`
	Development DevelopmentConfig `yaml:"development"`
	TargetFiles []string          `yaml:"-"` // CLI arguments, not from config file
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	Host   string `yaml:"host"`
	Open   bool   `yaml:"open"`
	NoOpen bool   `yaml:"no-open"`
}

type LessonsConfig struct {
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	IncludeDrafts   bool     `yaml:"include_drafts"`
}

type WorkspaceConfig struct {
	// Root is where the scaffold command creates the practice tree
	Root string `yaml:"root"`
	// ExtractDir receives snippets written by the extract command
	ExtractDir string `yaml:"extract_dir"`
}

type ProgressConfig struct {
	Database string `yaml:"database"`
}

type DevelopmentConfig struct {
	HotReload bool `yaml:"hot_reload"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults for scan paths only if not explicitly set
	if !viper.IsSet("lessons.scan_paths") && len(config.Lessons.ScanPaths) == 0 {
		config.Lessons.ScanPaths = []string{"."}
	}

	// Handle scan_paths set via viper (workaround for viper slice handling)
	if viper.IsSet("lessons.scan_paths") && len(config.Lessons.ScanPaths) == 0 {
		scanPaths := viper.GetStringSlice("lessons.scan_paths")
		if len(scanPaths) > 0 {
			config.Lessons.ScanPaths = scanPaths
		}
	}

	if viper.IsSet("lessons.exclude_patterns") && len(config.Lessons.ExcludePatterns) == 0 {
		excludePatterns := viper.GetStringSlice("lessons.exclude_patterns")
		if len(excludePatterns) > 0 {
			config.Lessons.ExcludePatterns = excludePatterns
		}
	}
	if len(config.Lessons.ExcludePatterns) == 0 {
		config.Lessons.ExcludePatterns = []string{"README.md", "node_modules", ".git", "typescript-examples"}
	}

	if viper.IsSet("lessons.include_drafts") {
		config.Lessons.IncludeDrafts = viper.GetBool("lessons.include_drafts")
	}

	// Workspace defaults mirror the layout the scaffold command creates
	if config.Workspace.Root == "" {
		config.Workspace.Root = "typescript-examples"
	}
	// ExtractDir is relative to the workspace root
	if config.Workspace.ExtractDir == "" {
		config.Workspace.ExtractDir = "exercises"
	}

	if config.Progress.Database == "" {
		config.Progress.Database = ".mystudy/progress.db"
	}

	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}

	if !viper.IsSet("development.hot_reload") {
		config.Development.HotReload = true
	} else {
		config.Development.HotReload = viper.GetBool("development.hot_reload")
	}

	// Override no-open if explicitly set via flag
	if viper.IsSet("server.no-open") && viper.GetBool("server.no-open") {
		config.Server.Open = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	for _, path := range config.Lessons.ScanPaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("lessons config: invalid scan path '%s': %w", path, err)
		}
	}

	if err := validateRelativePath(config.Workspace.Root); err != nil {
		return fmt.Errorf("workspace config: root: %w", err)
	}
	if err := validateRelativePath(config.Workspace.ExtractDir); err != nil {
		return fmt.Errorf("workspace config: extract_dir: %w", err)
	}
	if err := validateRelativePath(config.Progress.Database); err != nil {
		return fmt.Errorf("progress config: database: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateRelativePath rejects absolute paths and traversal for paths the
// tool will create or write under.
func validateRelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}
	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("path should be relative: %s", path)
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
