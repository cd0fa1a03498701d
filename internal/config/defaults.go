package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tetrlang/internal/engine"
)

//go:embed defaults/tetr.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It mirrors defaults/tetr.yaml.
func Default() Config {
	return Config{
		Limits: engine.DefaultLimits(),
		Render: RenderConfig{
			BaseDelayMS:  250,
			MinDelayMS:   100,
			MaxDelayMS:   2000,
			FrameFloorMS: 20,
			Delays:       DefaultDelays(),
			EndRatio:     5,
			BufferRows:   3,
			NextCount:    MaxNextCount,
			Ghost:        true,
			Color:        true,
		},
		Storage: StorageConfig{
			Path: "~/.tetr/runs.db",
		},
		Server: ServerConfig{
			SSHAddress:  ":2323",
			IdleTimeout: 10 * time.Minute,
			HTTPAddress: ":8080",
		},
		Cache: CacheConfig{
			TTL:    time.Hour,
			Prefix: "tetr:",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDelays returns the delay ratio of each state tag.
// Hard moves and soft drops flash by; locks linger.
func DefaultDelays() map[string]float64 {
	return map[string]float64{
		"init":  0,
		"spawn": 1,
		"<":     1,
		">":     1,
		".":     1,
		"[":     0.25,
		"]":     0.25,
		"_":     0.25,
		"o":     0,
		"r":     1,
		"z":     1,
		"a":     1,
		"|":     1,
		";":     2,
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
