package config

import (
	"path/filepath"

	"github.com/mvp-joe/intl-extract/internal/messages"
)

// FileName is the base name of the project configuration file.
// Both .intl-extract.yml and .intl-extract.yaml are recognised.
const FileName = ".intl-extract"

// Config represents the complete intl-extract configuration.
// It can be loaded from .intl-extract.yml with environment variable overrides.
type Config struct {
	ModuleSourceName string      `yaml:"module_source_name" mapstructure:"module_source_name"` // catalog module whose imports are tracked
	MessagesDir      string      `yaml:"messages_dir" mapstructure:"messages_dir"`             // sidecar root; empty disables sidecars
	Concurrency      int         `yaml:"concurrency" mapstructure:"concurrency"`               // units extracted in parallel
	Paths            PathsConfig `yaml:"paths" mapstructure:"paths"`
	Cache            CacheConfig `yaml:"cache" mapstructure:"cache"`
}

// PathsConfig defines which files are extracted and which are ignored.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// CacheConfig controls the incremental manifest.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Location string `yaml:"location" mapstructure:"location"` // relative paths resolve against the project root
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		ModuleSourceName: messages.DefaultModuleSourceName,
		MessagesDir:      "",
		Concurrency:      4,
		Paths: PathsConfig{
			Include: []string{
				"**/*.js",
				"**/*.jsx",
				"**/*.ts",
				"**/*.tsx",
				"**/*.mjs",
				"**/*.cjs",
			},
			Ignore: []string{
				"node_modules/**",
				"dist/**",
				"build/**",
				".git/**",
				"coverage/**",
			},
		},
		Cache: CacheConfig{
			Enabled:  false,
			Location: filepath.Join(".intl-extract", "manifest.db"),
		},
	}
}

// ResolvePath returns p unchanged when absolute, otherwise joined to rootDir.
// Empty stays empty.
func ResolvePath(rootDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}

// GetSourceExtensions extracts unique file extensions from the include patterns.
// Returns extensions with leading dot (e.g., []string{".js", ".tsx"}).
func (c *Config) GetSourceExtensions() []string {
	seen := make(map[string]bool)
	var extensions []string
	for _, pattern := range c.Paths.Include {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Returns empty string if pattern doesn't end in a simple extension pattern.
// Examples: "**/*.js" -> ".js", "src/*.tsx" -> ".tsx", "**/index.js" -> ""
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '/' {
			return ""
		}
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
