// Package config provides YAML-based configuration loading for the tetr
// tools: simulation limits, frame rendering, storage, servers, cache and logging.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tetrlang/internal/engine"
)

// Config is the complete tetr configuration.
type Config struct {
	Limits  engine.Limits `yaml:"limits"`
	Render  RenderConfig  `yaml:"render"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// RenderConfig controls frame layout and timing.
type RenderConfig struct {
	BaseDelayMS  int                `yaml:"base_delay_ms"`  // delay of a ratio 1.0 frame
	MinDelayMS   int                `yaml:"min_delay_ms"`   // lower bound for base_delay_ms
	MaxDelayMS   int                `yaml:"max_delay_ms"`   // upper bound for base_delay_ms
	FrameFloorMS int                `yaml:"frame_floor_ms"` // shortest non-skipped frame
	Delays       map[string]float64 `yaml:"delays"`         // ratio per state tag; missing tags use 1.0
	EndRatio     float64            `yaml:"end_ratio"`      // ratio of the final frame
	BufferRows   int                `yaml:"buffer_rows"`    // rows shown above the visible field
	NextCount    int                `yaml:"next_count"`
	Ghost        bool               `yaml:"ghost"`
	Color        bool               `yaml:"color"`
}

// BaseDelay returns the configured base delay clamped to its bounds.
func (r RenderConfig) BaseDelay() time.Duration {
	ms := r.BaseDelayMS
	if r.MinDelayMS > 0 && ms < r.MinDelayMS {
		ms = r.MinDelayMS
	}
	if r.MaxDelayMS > 0 && ms > r.MaxDelayMS {
		ms = r.MaxDelayMS
	}
	return time.Duration(ms) * time.Millisecond
}

// StorageConfig locates the run history database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds the SSH and HTTP listener settings.
type ServerConfig struct {
	SSHAddress  string        `yaml:"ssh_address"`
	HostKeyPath string        `yaml:"host_key_path"` // empty means ~/.tetr/host_key
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	HTTPAddress string        `yaml:"http_address"`
}

// CacheConfig configures the Redis result cache. An empty address disables it.
type CacheConfig struct {
	Address string        `yaml:"address"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MaxNextCount is the largest next preview the renderer draws.
const MaxNextCount = 5

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	r := c.Render
	if r.BaseDelayMS <= 0 {
		return fmt.Errorf("config: render.base_delay_ms must be positive, got %d", r.BaseDelayMS)
	}
	if r.MinDelayMS > 0 && r.MaxDelayMS > 0 && r.MinDelayMS > r.MaxDelayMS {
		return fmt.Errorf("config: render.min_delay_ms %d is above max_delay_ms %d", r.MinDelayMS, r.MaxDelayMS)
	}
	if r.EndRatio < 0 {
		return fmt.Errorf("config: render.end_ratio must not be negative, got %g", r.EndRatio)
	}
	for tag, ratio := range r.Delays {
		if ratio < 0 {
			return fmt.Errorf("config: render.delays[%q] must not be negative, got %g", tag, ratio)
		}
	}
	if r.NextCount < 0 || r.NextCount > MaxNextCount {
		return fmt.Errorf("config: render.next_count must be within 0..%d, got %d", MaxNextCount, r.NextCount)
	}
	if r.BufferRows < 0 || r.BufferRows > engine.GridHeight-engine.DisplayHeight {
		return fmt.Errorf("config: render.buffer_rows must be within 0..%d, got %d",
			engine.GridHeight-engine.DisplayHeight, r.BufferRows)
	}
	if c.Limits.MaxProgramLength < 0 || c.Limits.MaxOperations < 0 || c.Limits.MaxBoardRows < 0 {
		return fmt.Errorf("config: limits must not be negative")
	}
	return nil
}
