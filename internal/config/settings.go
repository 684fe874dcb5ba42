package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/handiism/asset-loader/internal/fetch"
	"github.com/handiism/asset-loader/internal/size"
)

// ErrNoUnboundedSize is returned by Validate when size definitions are
// given but none of them is unbounded.
var ErrNoUnboundedSize = errors.New("size definitions need one unbounded entry")

var validate = validator.New()

// Settings holds all configuration options.
type Settings struct {
	// Source settings
	BaseURL      string `json:"base_url" validate:"omitempty,url"`
	AssetRoot    string `json:"asset_root"`
	VersionsFile string `json:"versions_file"`
	CacheBust    bool   `json:"cache_bust"`
	CrossOrigin  bool   `json:"cross_origin"`
	Origin       string `json:"origin" validate:"omitempty,url"`
	UserAgent    string `json:"user_agent" validate:"required"`

	// Fetch settings, durations in seconds
	RequestTimeout float64 `json:"request_timeout" validate:"gte=0"`
	MaxRetries     int     `json:"max_retries" validate:"gte=0,lte=50"`
	RetryCooldown  float64 `json:"retry_cooldown" validate:"gte=0"`
	RetryExponent  float64 `json:"retry_exponent" validate:"gte=1"`
	AttemptTimeout float64 `json:"attempt_timeout" validate:"gte=0"`

	// Scheduling settings. 0 means unlimited.
	MaxConcurrentTasks int `json:"max_concurrent_tasks" validate:"gte=0"`

	// Size variants, empty for the built-in half/full pair
	Sizes []SizeSetting `json:"sizes" validate:"dive"`

	// Playlist export settings
	PlaylistFormat string `json:"playlist_format" validate:"oneof=m3u pls wpl zpl"`
	M3UExtended    bool   `json:"m3u_extended"`

	// Logging settings
	LogLevel  string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format" validate:"oneof=text json"`
}

// SizeSetting is the JSON form of a size variant definition.
type SizeSetting struct {
	Name string `json:"name" validate:"required"`

	// MaxBound is the largest viewport dimension served, 0 for unbounded.
	MaxBound  int      `json:"max_bound" validate:"gte=0"`
	Scale     float64  `json:"scale" validate:"gt=0"`
	Fallbacks []string `json:"fallbacks"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		UserAgent: "AssetLoader",

		RequestTimeout: 60,
		MaxRetries:     fetch.DefaultMaxRetries,
		RetryCooldown:  0,
		RetryExponent:  1,
		AttemptTimeout: 0,

		MaxConcurrentTasks: 0,

		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads settings from a JSON file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings against their field constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if len(s.Sizes) == 0 {
		return nil
	}
	for _, sz := range s.Sizes {
		if sz.MaxBound == 0 {
			return nil
		}
	}
	return ErrNoUnboundedSize
}

// ToRetryPolicy converts the fetch settings to a RetryPolicy.
func (s *Settings) ToRetryPolicy() fetch.RetryPolicy {
	return fetch.RetryPolicy{
		MaxRetries:     s.MaxRetries,
		Cooldown:       seconds(s.RetryCooldown),
		Exponent:       s.RetryExponent,
		AttemptTimeout: seconds(s.AttemptTimeout),
	}
}

// ToSizeDefinitions converts the size settings to size definitions. A
// MaxBound of 0 becomes size.Unbounded.
func (s *Settings) ToSizeDefinitions() []size.Definition {
	defs := make([]size.Definition, 0, len(s.Sizes))
	for _, sz := range s.Sizes {
		bound := sz.MaxBound
		if bound == 0 {
			bound = size.Unbounded
		}
		defs = append(defs, size.Definition{
			Name:      sz.Name,
			MaxBound:  bound,
			Scale:     sz.Scale,
			Fallbacks: sz.Fallbacks,
		})
	}
	return defs
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (s *Settings) RequestTimeoutDuration() time.Duration {
	return seconds(s.RequestTimeout)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
