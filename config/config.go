// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumSenses is the length of the sensed feature vector built for every agent.
// The network input layer must match it.
const NumSenses = 8

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Food       FoodConfig       `yaml:"food"`
	Agent      AgentConfig      `yaml:"agent"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Neural     NeuralConfig     `yaml:"neural"`
	Traits     TraitsConfig     `yaml:"traits"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PopulationConfig holds population sizing and spawn placement.
type PopulationConfig struct {
	Size        int     `yaml:"size"`
	SpawnMargin float64 `yaml:"spawn_margin"` // Agents spawn inside [margin, extent-margin]
}

// FoodConfig holds food field parameters.
type FoodConfig struct {
	Count  int     `yaml:"count"`
	Energy float64 `yaml:"energy"` // Energy restored per item eaten
	Margin float64 `yaml:"margin"` // Food spawns inside [margin, extent-margin]
}

// AgentConfig holds per-agent physical constants.
type AgentConfig struct {
	InitialEnergy float64 `yaml:"initial_energy"`
	MaxEnergy     float64 `yaml:"max_energy"`
	StepCost      float64 `yaml:"step_cost"`
	Speed         float64 `yaml:"speed"`
	PickupRadius  float64 `yaml:"pickup_radius"`
	DistanceScale float64 `yaml:"distance_scale"` // Distance input = dist / (width * this)
	ScoreScale    float64 `yaml:"score_scale"`    // Score input = score / this
}

// EvolutionConfig holds generation loop and breeding parameters.
type EvolutionConfig struct {
	Generations   int     `yaml:"generations"`
	MaxSteps      int     `yaml:"max_steps"`
	EliteFraction float64 `yaml:"elite_fraction"`
	MutationRate  float64 `yaml:"mutation_rate"`
	MutationSigma float64 `yaml:"mutation_sigma"`
	ClipLimit     float64 `yaml:"clip_limit"`     // Parameters are clipped to [-limit, limit] after mutation
	BiasCrossover string  `yaml:"bias_crossover"` // "element" or "vector"
}

// NeuralConfig holds network architecture parameters.
type NeuralConfig struct {
	Inputs    int     `yaml:"inputs"`
	Hidden    int     `yaml:"hidden"`
	Outputs   int     `yaml:"outputs"`
	InitScale float64 `yaml:"init_scale"`
}

// TraitBoundConfig bounds a single heritable trait.
type TraitBoundConfig struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Sigma float64 `yaml:"sigma"`
}

// TraitsConfig holds heritable physical trait settings.
// A zero mutation rate keeps every agent at the agent.* constants.
type TraitsConfig struct {
	MutationRate float64          `yaml:"mutation_rate"`
	Speed        TraitBoundConfig `yaml:"speed"`
	PickupRadius TraitBoundConfig `yaml:"pickup_radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogGenerations bool `yaml:"log_generations"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	EliteCount     int     // max(1, floor(elite_fraction * size))
	ParentPoolSize int     // max(1, size / 2)
	CenterX        float64 // world center, the nearest-food fallback
	CenterY        float64
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
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
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks every field and recomputes derived values.
// All failures wrap ErrInvalid.
func (c *Config) Validate() error {
	switch {
	case c.Population.Size <= 0:
		return invalid("population.size must be > 0, got %d", c.Population.Size)
	case c.World.Width <= 0 || c.World.Height <= 0:
		return invalid("world extents must be > 0, got %gx%g", c.World.Width, c.World.Height)
	case c.Food.Count < 0:
		return invalid("food.count must be >= 0, got %d", c.Food.Count)
	case c.Evolution.EliteFraction <= 0 || c.Evolution.EliteFraction > 1:
		return invalid("evolution.elite_fraction must be in (0, 1], got %g", c.Evolution.EliteFraction)
	case c.Evolution.MutationRate < 0 || c.Evolution.MutationRate > 1:
		return invalid("evolution.mutation_rate must be in [0, 1], got %g", c.Evolution.MutationRate)
	case c.Evolution.MutationSigma < 0:
		return invalid("evolution.mutation_sigma must be >= 0, got %g", c.Evolution.MutationSigma)
	case c.Evolution.ClipLimit <= 0:
		return invalid("evolution.clip_limit must be > 0, got %g", c.Evolution.ClipLimit)
	case c.Evolution.MaxSteps <= 0:
		return invalid("evolution.max_steps must be > 0, got %d", c.Evolution.MaxSteps)
	case c.Evolution.Generations < 0:
		return invalid("evolution.generations must be >= 0, got %d", c.Evolution.Generations)
	case c.Evolution.BiasCrossover != "element" && c.Evolution.BiasCrossover != "vector":
		return invalid("evolution.bias_crossover must be \"element\" or \"vector\", got %q", c.Evolution.BiasCrossover)
	case c.Neural.Inputs != NumSenses:
		return invalid("neural.inputs must be %d, got %d", NumSenses, c.Neural.Inputs)
	case c.Neural.Hidden <= 0:
		return invalid("neural.hidden must be > 0, got %d", c.Neural.Hidden)
	case c.Neural.Outputs < 2:
		return invalid("neural.outputs must be >= 2, got %d", c.Neural.Outputs)
	case c.Neural.InitScale < 0:
		return invalid("neural.init_scale must be >= 0, got %g", c.Neural.InitScale)
	case c.Agent.MaxEnergy <= 0 || c.Agent.InitialEnergy <= 0 || c.Agent.InitialEnergy > c.Agent.MaxEnergy:
		return invalid("agent energy must satisfy 0 < initial_energy <= max_energy, got %g/%g",
			c.Agent.InitialEnergy, c.Agent.MaxEnergy)
	case c.Agent.StepCost <= 0:
		return invalid("agent.step_cost must be > 0, got %g", c.Agent.StepCost)
	case c.Agent.DistanceScale <= 0 || c.Agent.ScoreScale <= 0:
		return invalid("agent.distance_scale and agent.score_scale must be > 0")
	case c.Traits.MutationRate < 0 || c.Traits.MutationRate > 1:
		return invalid("traits.mutation_rate must be in [0, 1], got %g", c.Traits.MutationRate)
	}
	if err := checkBound("traits.speed", c.Traits.Speed, c.Agent.Speed); err != nil {
		return err
	}
	if err := checkBound("traits.pickup_radius", c.Traits.PickupRadius, c.Agent.PickupRadius); err != nil {
		return err
	}

	c.computeDerived()
	return nil
}

func checkBound(name string, b TraitBoundConfig, initial float64) error {
	if b.Min > b.Max || b.Sigma < 0 {
		return invalid("%s bounds must satisfy min <= max and sigma >= 0", name)
	}
	if initial < b.Min || initial > b.Max {
		return invalid("%s initial value %g outside [%g, %g]", name, initial, b.Min, b.Max)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	elites := int(c.Evolution.EliteFraction * float64(c.Population.Size))
	if elites < 1 {
		elites = 1
	}
	c.Derived.EliteCount = elites

	pool := c.Population.Size / 2
	if pool < 1 {
		pool = 1
	}
	c.Derived.ParentPoolSize = pool

	c.Derived.CenterX = c.World.Width / 2
	c.Derived.CenterY = c.World.Height / 2
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
