package tcp_track

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SurfaceConfig describes the demo sine surface.
type SurfaceConfig struct {
	Amplitude  float64 `json:"amplitude"`
	Wavenumber float64 `json:"wavenumber"`
	Base       float64 `json:"base"`
}

// TrackingConfig bundles the stand-off geometry and traversal parameters.
type TrackingConfig struct {
	Offset   float64 `json:"offset"`    // stand-off above the surface
	Lead1    float64 `json:"lead_1"`    // first sensor lead along the tangent
	Lead2    float64 `json:"lead_2"`    // second sensor lead along the tangent
	StepSize float64 `json:"step_size"` // horizontal advance per frame
	XStart   float64 `json:"x_start"`
	XEnd     float64 `json:"x_end"` // auto-reset bound
}

// FilterConfig selects the smoothing mode and its parameter.
type FilterConfig struct {
	Mode   FilterMode `json:"mode"`
	Window int        `json:"window"` // moving-average mode
	Alpha  float64    `json:"alpha"`  // exponential mode
}

// NoiseConfig controls the additive Gaussian beam noise.
type NoiseConfig struct {
	Std  float64 `json:"std"`
	Seed int64   `json:"seed"`
}

// RigConfig bounds the numeric beam march.
type RigConfig struct {
	MarchStep float64 `json:"march_step"`
	MaxRayLen float64 `json:"max_ray_len"`
}

// Config bundles the tuning parameters consumed by the control loop.
type Config struct {
	Tracking TrackingConfig `json:"tracking"`
	Filter   FilterConfig   `json:"filter"`
	Noise    NoiseConfig    `json:"noise"`
	Rig      RigConfig      `json:"rig"`
}

// VizConfig controls the optional expvar endpoint used by jplot.
type VizConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// OutputConfig controls UDP output settings for telemetry.
type OutputConfig struct {
	UDPAddr string `json:"udp_addr"`
}

// ReportConfig controls the end-of-run CSV log and plots.
type ReportConfig struct {
	Dir string `json:"dir"` // empty disables the report
}

// LogConfig controls console logging.
type LogConfig struct {
	Enabled bool `json:"enabled"`
}

// AppConfig aggregates all configuration sections.
type AppConfig struct {
	Hz        float64       `json:"hz"`
	MaxFrames int           `json:"max_frames"` // 0 runs until interrupted
	Surface   SurfaceConfig `json:"surface"`
	Config
	Viz    VizConfig    `json:"viz"`
	Output OutputConfig `json:"output"`
	Report ReportConfig `json:"report"`
	Log    LogConfig    `json:"log"`
}

// LoadConfig reads the JSON config from disk.
func LoadConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate applies defaults and rejects parameter combinations the loop
// cannot run with. It must pass before any tick executes.
func (c *Config) Validate() error {
	if c.Rig.MarchStep <= 0 {
		c.Rig.MarchStep = 0.1
	}
	if c.Rig.MaxRayLen <= 0 {
		c.Rig.MaxRayLen = 50
	}

	if c.Tracking.Lead1 == c.Tracking.Lead2 {
		return fmt.Errorf("%w: sensor leads must be distinct, both are %g", ErrConfiguration, c.Tracking.Lead1)
	}
	if c.Tracking.StepSize <= 0 {
		return fmt.Errorf("%w: step_size must be > 0, got %g", ErrConfiguration, c.Tracking.StepSize)
	}
	if c.Tracking.XEnd <= c.Tracking.XStart {
		return fmt.Errorf("%w: x_end (%g) must exceed x_start (%g)", ErrConfiguration, c.Tracking.XEnd, c.Tracking.XStart)
	}
	if c.Noise.Std < 0 {
		return fmt.Errorf("%w: noise std must be >= 0, got %g", ErrConfiguration, c.Noise.Std)
	}

	switch c.Filter.Mode {
	case FilterMovingAverage:
		if c.Filter.Window < 1 {
			return fmt.Errorf("%w: moving-average window must be >= 1, got %d", ErrConfiguration, c.Filter.Window)
		}
	case FilterExponential:
		if c.Filter.Alpha <= 0 || c.Filter.Alpha >= 1 {
			return fmt.Errorf("%w: exponential alpha must be in (0, 1), got %g", ErrConfiguration, c.Filter.Alpha)
		}
	default:
		return fmt.Errorf("%w: unknown filter mode %v", ErrConfiguration, c.Filter.Mode)
	}
	return nil
}

// ParseFilterMode converts a mode name into a FilterMode enum.
func ParseFilterMode(value string) (FilterMode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	switch normalized {
	case "MOVING_AVERAGE", "MA":
		return FilterMovingAverage, nil
	case "EXPONENTIAL", "EMA":
		return FilterExponential, nil
	default:
		return FilterMovingAverage, fmt.Errorf("unknown filter mode %q", value)
	}
}

// UnmarshalJSON allows filter modes to be loaded from JSON strings.
func (m *FilterMode) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	parsed, err := ParseFilterMode(*raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
