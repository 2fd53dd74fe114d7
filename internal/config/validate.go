package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/intl-extract/internal/parsers"
)

var (
	// ErrEmptyModuleSource indicates a missing catalog module name
	ErrEmptyModuleSource = errors.New("empty module source name")

	// ErrInvalidConcurrency indicates a non-positive worker count
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrEmptyInclude indicates that no include patterns are configured
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrUnsupportedExtension indicates an include pattern for files the parser cannot read
	ErrUnsupportedExtension = errors.New("unsupported source extension")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.ModuleSourceName) == "" {
		errs = append(errs, fmt.Errorf("%w: module_source_name is required", ErrEmptyModuleSource))
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConcurrency, cfg.Concurrency))
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	for _, ext := range cfg.GetSourceExtensions() {
		if !parsers.Supports("source" + ext) {
			errs = append(errs, fmt.Errorf("%w: include patterns select %s files (supported: %s)",
				ErrUnsupportedExtension, ext, strings.Join(parsers.Extensions(), ", ")))
		}
	}

	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCache(cfg *CacheConfig) error {
	if cfg.Enabled && strings.TrimSpace(cfg.Location) == "" {
		return fmt.Errorf("%w: cache.location is required when the cache is enabled", ErrInvalidCacheSettings)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
