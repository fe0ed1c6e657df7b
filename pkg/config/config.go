package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	DB         DBConfig         `yaml:"db"`
	Floorplan  FloorplanConfig  `yaml:"floorplan"`
	Stride     StrideConfig     `yaml:"stride"`
	Correction CorrectionConfig `yaml:"correction"`
	Stairs     StairsConfig     `yaml:"stairs"`
	Router     RouterConfig     `yaml:"router"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// FloorplanConfig holds settings for the floor-plan loader.
type FloorplanConfig struct {
	Dir string `yaml:"dir"`
}

// StrideConfig governs the stride-length model of the dead-reckoning
// tracker. Stride length = heightM * (K*cadence + C), clamped to
// [40cm, 0.85*height].
type StrideConfig struct {
	HeightCm           float64 `yaml:"height_cm"`
	K                  float64 `yaml:"k"`
	C                  float64 `yaml:"c"`
	CadenceAverageSize int     `yaml:"cadence_average_size"`
}

// CorrectionConfig holds tunables for the drift corrector and the turn
// detector. Distances are in campus units (meters).
type CorrectionConfig struct {
	TurnThresholdDeg     float64 `yaml:"turn_threshold_deg"`
	MaxCorrectionPerStep float64 `yaml:"max_correction_per_step"`
	EntranceSnapRadius   float64 `yaml:"entrance_snap_radius"`
	StepBufferSize       int     `yaml:"step_buffer_size"`
}

// StairsConfig holds tunables for the stairwell transition detector.
type StairsConfig struct {
	ProximityRadius      float64 `yaml:"proximity_radius"`
	FOVHalfAngleDeg      float64 `yaml:"fov_half_angle_deg"`
	CandidateExpirySteps int     `yaml:"candidate_expiry_steps"`
	HeadingLagWindow     int     `yaml:"heading_lag_window"`
	LabelWindowSize      int     `yaml:"label_window_size"`
	RequiredInWindow     int     `yaml:"required_in_window"`
	MinConfidence        float64 `yaml:"min_confidence"`
}

// RouterConfig holds settings for per-floor routing grids.
type RouterConfig struct {
	CellSize    float64 `yaml:"cell_size"`
	WallPenalty float64 `yaml:"wall_penalty"`
	SnapRadius  float64 `yaml:"snap_radius"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1930",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/campusnav.db",
		},
		Floorplan: FloorplanConfig{
			Dir: "./data/floorplans",
		},
		Stride: StrideConfig{
			HeightCm:           175,
			K:                  0.18,
			C:                  0.32,
			CadenceAverageSize: 6,
		},
		Correction: CorrectionConfig{
			TurnThresholdDeg:     60,
			MaxCorrectionPerStep: 0.8,
			EntranceSnapRadius:   1.5,
			StepBufferSize:       8,
		},
		Stairs: StairsConfig{
			ProximityRadius:      3.0,
			FOVHalfAngleDeg:      35,
			CandidateExpirySteps: 8,
			HeadingLagWindow:     3,
			LabelWindowSize:      5,
			RequiredInWindow:     2,
			MinConfidence:        0.6,
		},
		Router: RouterConfig{
			CellSize:    0.25,
			WallPenalty: 4.0,
			SnapRadius:  3.0,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, defaults are merged with existing values but not
// saved back to disk, to preserve user formatting and comments.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, cfg.validate()
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Stride.HeightCm <= 0 {
		return fmt.Errorf("stride.height_cm must be positive, got %v", c.Stride.HeightCm)
	}
	if c.Stride.CadenceAverageSize < 1 {
		return fmt.Errorf("stride.cadence_average_size must be at least 1, got %d", c.Stride.CadenceAverageSize)
	}
	if c.Router.CellSize <= 0 {
		return fmt.Errorf("router.cell_size must be positive, got %v", c.Router.CellSize)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# CampusNav Configuration
# ----------------------
# Distances are in campus units (meters); angles in degrees.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GenerateDefault writes the default config to path, for --init-config.
func GenerateDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
