// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/spawn"
	"github.com/pthm-cable/fluid/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Parallel    ParallelConfig    `yaml:"parallel"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Render      RenderConfig      `yaml:"render"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the bounding box, centred on the origin.
type WorldConfig struct {
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
}

// ParticlesConfig controls the initial spawn.
type ParticlesConfig struct {
	Count       int     `yaml:"count"`
	Mass        float64 `yaml:"mass"`
	Radius      float64 `yaml:"radius"`       // in world units; rendered at radius * 50 px
	Layout      string  `yaml:"layout"`       // "box" or "random"
	Layers      int     `yaml:"layers"`       // rows in the box layout
	Spacing     float64 `yaml:"spacing"`      // box layout pitch
	VelocityX   float64 `yaml:"velocity_x"`   // initial velocity
	VelocityY   float64 `yaml:"velocity_y"`
	Jitter      float64 `yaml:"jitter"`       // noise amplitude added to the initial velocity
	JitterScale float64 `yaml:"jitter_scale"` // noise frequency
	Seed        int64   `yaml:"seed"`
}

// PhysicsConfig holds the SPH solver parameters.
type PhysicsConfig struct {
	DT                    float64 `yaml:"dt"` // frame delta for headless runs
	GravityX              float64 `yaml:"gravity_x"`
	GravityY              float64 `yaml:"gravity_y"`
	SmoothingRadius       float64 `yaml:"smoothing_radius"`
	InfluenceModifier     float64 `yaml:"influence_modifier"`
	TargetDensity         float64 `yaml:"target_density"`
	PressureMultiplier    float64 `yaml:"pressure_multiplier"`
	PressureForceModifier float64 `yaml:"pressure_force_modifier"`
	DensityFloor          float64 `yaml:"density_floor"`
	AirDensity            float64 `yaml:"air_density"`
	DragCoefficient       float64 `yaml:"drag_coefficient"`
	ViscosityStrength     float64 `yaml:"viscosity_strength"`
	CollisionDamping      float64 `yaml:"collision_damping"`
	TimeScale             float64 `yaml:"time_scale"`
	PredictionRate        float64 `yaml:"prediction_rate"`
	UsePressure           bool    `yaml:"use_pressure"`
	UseViscosity          bool    `yaml:"use_viscosity"`
}

// InteractionConfig holds pointer interaction parameters.
type InteractionConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
	Floor    float64 `yaml:"floor"` // lower clamp for squared pointer distance
}

// ParallelConfig controls the worker pool.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // particles below which stages run inline
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of simulated time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// RenderConfig holds visual settings.
type RenderConfig struct {
	ColorMode     string  `yaml:"color_mode"`  // "density" or "speed"
	SpeedScale    float64 `yaml:"speed_scale"` // speed mapped to the top of the palette
	DensityScale  float64 `yaml:"density_scale"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	DT32       float32         // Physics.DT as float32
	ScreenW32  float32         // Screen.Width as float32
	ScreenH32  float32         // Screen.Height as float32
	HalfExtent components.Vec2 // World half extent
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.HalfExtent = components.Vec2{
		X: float32(c.World.HalfWidth),
		Y: float32(c.World.HalfHeight),
	}
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Particles.Count <= 0:
		return fmt.Errorf("particles.count %d: %w", c.Particles.Count, ErrInvalid)
	case !(c.Particles.Mass > 0):
		return fmt.Errorf("particles.mass %v: %w", c.Particles.Mass, ErrInvalid)
	case !(c.Particles.Radius > 0):
		return fmt.Errorf("particles.radius %v: %w", c.Particles.Radius, ErrInvalid)
	case !(c.World.HalfWidth > 0 && c.World.HalfHeight > 0):
		return fmt.Errorf("world half extent %vx%v: %w", c.World.HalfWidth, c.World.HalfHeight, ErrInvalid)
	case !(c.Physics.SmoothingRadius > 0):
		return fmt.Errorf("physics.smoothing_radius %v: %w", c.Physics.SmoothingRadius, ErrInvalid)
	case !(c.Physics.TimeScale > 0):
		return fmt.Errorf("physics.time_scale %v: %w", c.Physics.TimeScale, ErrInvalid)
	case !(c.Physics.PredictionRate > 0):
		return fmt.Errorf("physics.prediction_rate %v: %w", c.Physics.PredictionRate, ErrInvalid)
	case !(c.Physics.CollisionDamping >= 0 && c.Physics.CollisionDamping <= 1):
		return fmt.Errorf("physics.collision_damping %v outside [0,1]: %w", c.Physics.CollisionDamping, ErrInvalid)
	case !(c.Physics.DT > 0):
		return fmt.Errorf("physics.dt %v: %w", c.Physics.DT, ErrInvalid)
	case c.Render.ColorMode != "density" && c.Render.ColorMode != "speed":
		return fmt.Errorf("render.color_mode %q: %w", c.Render.ColorMode, ErrInvalid)
	case !(c.Render.SpeedScale > 0):
		return fmt.Errorf("render.speed_scale %v: %w", c.Render.SpeedScale, ErrInvalid)
	case !(c.Render.DensityScale > 0 && c.Render.DensityScale < 1):
		return fmt.Errorf("render.density_scale %v outside (0,1): %w", c.Render.DensityScale, ErrInvalid)
	case c.Render.StepsPerFrame < 1:
		return fmt.Errorf("render.steps_per_frame %d: %w", c.Render.StepsPerFrame, ErrInvalid)
	}
	if _, err := spawn.ParseLayout(c.Particles.Layout); err != nil {
		return fmt.Errorf("particles.layout: %w: %w", err, ErrInvalid)
	}
	params := c.Params()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", err, ErrInvalid)
	}
	if err := params.CheckRadius(float32(c.Particles.Radius)); err != nil {
		return fmt.Errorf("particles.radius: %w: %w", err, ErrInvalid)
	}
	return nil
}

// Params builds the solver parameters.
func (c *Config) Params() systems.Params {
	ph := c.Physics
	return systems.Params{
		Gravity:               components.Vec2{X: float32(ph.GravityX), Y: float32(ph.GravityY)},
		SmoothingRadius:       float32(ph.SmoothingRadius),
		BoundsHalfExtent:      components.Vec2{X: float32(c.World.HalfWidth), Y: float32(c.World.HalfHeight)},
		InfluenceModifier:     float32(ph.InfluenceModifier),
		TargetDensity:         float32(ph.TargetDensity),
		PressureMultiplier:    float32(ph.PressureMultiplier),
		PressureForceModifier: float32(ph.PressureForceModifier),
		DensityFloor:          float32(ph.DensityFloor),
		AirDensity:            float32(ph.AirDensity),
		DragCoefficient:       float32(ph.DragCoefficient),
		ViscosityStrength:     float32(ph.ViscosityStrength),
		CollisionDamping:      float32(ph.CollisionDamping),
		InteractionRadius:     float32(c.Interaction.Radius),
		InteractionStrength:   float32(c.Interaction.Strength),
		InteractionFloor:      float32(c.Interaction.Floor),
		TimeScale:             float32(ph.TimeScale),
		PredictionRate:        float32(ph.PredictionRate),
		UsePressure:           ph.UsePressure,
		UseViscosity:          ph.UseViscosity,
	}
}

// SpawnOptions builds the initial layout options.
func (c *Config) SpawnOptions() spawn.Options {
	pc := c.Particles
	return spawn.Options{
		Layout:      spawn.Layout(pc.Layout),
		Count:       pc.Count,
		Layers:      pc.Layers,
		Spacing:     float32(pc.Spacing),
		Half:        components.Vec2{X: float32(c.World.HalfWidth), Y: float32(c.World.HalfHeight)},
		Mass:        float32(pc.Mass),
		Radius:      float32(pc.Radius),
		Velocity:    components.Vec2{X: float32(pc.VelocityX), Y: float32(pc.VelocityY)},
		Jitter:      float32(pc.Jitter),
		JitterScale: float32(pc.JitterScale),
		Seed:        pc.Seed,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
