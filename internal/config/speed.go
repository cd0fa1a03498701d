package config

import "fmt"

// SpeedPreset represents a named playback speed.
type SpeedPreset string

const (
	SpeedSlow   SpeedPreset = "slow"
	SpeedNormal SpeedPreset = "normal"
	SpeedFast   SpeedPreset = "fast"
)

// SpeedPresets lists the accepted presets in display order.
var SpeedPresets = []SpeedPreset{SpeedSlow, SpeedNormal, SpeedFast}

// FactorForPreset returns the base delay multiplier of a preset.
func FactorForPreset(preset SpeedPreset) float64 {
	switch preset {
	case SpeedSlow:
		return 2.0
	case SpeedFast:
		return 0.5
	default:
		return 1.0
	}
}

// ParseSpeedPreset validates a preset name. Empty means normal.
func ParseSpeedPreset(s string) (SpeedPreset, error) {
	if s == "" {
		return SpeedNormal, nil
	}
	for _, p := range SpeedPresets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: unknown speed %q (want slow, normal or fast)", s)
}

// ApplySpeedPreset scales the base delay, staying inside the configured bounds.
func ApplySpeedPreset(cfg *RenderConfig, preset SpeedPreset) {
	ms := int(float64(cfg.BaseDelayMS) * FactorForPreset(preset))
	if cfg.MinDelayMS > 0 {
		ms = max(ms, cfg.MinDelayMS)
	}
	if cfg.MaxDelayMS > 0 {
		ms = min(ms, cfg.MaxDelayMS)
	}
	cfg.BaseDelayMS = ms
}
