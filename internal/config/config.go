package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files whose extension is not
// .json, .toml, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

//go:embed config.schema.json
var schemaSource string

var embeddedSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", schemaSource)
})

// Distribution names accepted in population.distribution.
const (
	DistributionRect = "rect"
	DistributionDisk = "disk"
)

// leaderHeading is the fixed rotation of the leader boid, in radians.
const leaderHeading = 5.934

type Config struct {
	World      flocking.Bounds  `json:"world" toml:"world" yaml:"world"`
	Population PopulationConfig `json:"population" toml:"population" yaml:"population"`
	Flocking   flocking.Config  `json:"flocking" toml:"flocking" yaml:"flocking"`
	Runtime    RuntimeConfig    `json:"runtime" toml:"runtime" yaml:"runtime"`
	Logging    LoggingConfig    `json:"logging" toml:"logging" yaml:"logging"`
}

type PopulationConfig struct {
	Size         int    `json:"size" toml:"size" yaml:"size"`
	Distribution string `json:"distribution" toml:"distribution" yaml:"distribution"` // "rect" or "disk"
	// Radius is the half side of the spawn square for "rect", the disk radius for "disk".
	Radius float64 `json:"radius" toml:"radius" yaml:"radius"`
	Seed   uint64  `json:"seed" toml:"seed" yaml:"seed"` // 0 picks a seed from the clock
	// Leader adds one extra agent at the origin, tagged for diagnostics.
	Leader bool `json:"leader" toml:"leader" yaml:"leader"`
}

type RuntimeConfig struct {
	Workers             int     `json:"workers" toml:"workers" yaml:"workers"` // 0 = GOMAXPROCS
	TickRate            int     `json:"tickRate" toml:"tickRate" yaml:"tickRate"`
	DumpIntervalSeconds float64 `json:"dumpIntervalSeconds" toml:"dumpIntervalSeconds" yaml:"dumpIntervalSeconds"` // 0 disables the dump
}

type LoggingConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level"`
	Format string `json:"format" toml:"format" yaml:"format"` // "json" or "console"
}

// Default returns the built-in configuration: the 1200x700 scene with a
// hundred boids and one leader.
func Default() *Config {
	return &Config{
		World: flocking.Bounds{Width: 1200, Height: 700},
		Population: PopulationConfig{
			Size:         100,
			Distribution: DistributionRect,
			Radius:       300,
			Leader:       true,
		},
		Flocking: flocking.DefaultConfig(),
		Runtime: RuntimeConfig{
			Workers:             0,
			TickRate:            60,
			DumpIntervalSeconds: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and validates the result against the
// embedded schema.
func Load(path string) (*Config, error) {
	return LoadWithSchema(path, "")
}

// LoadWithSchema is Load with an additional JSON schema file the merged
// configuration must satisfy. An empty schemaFile skips the extra check.
func LoadWithSchema(path, schemaFile string) (*Config, error) {
	var extra *jsonschema.Schema
	if schemaFile != "" {
		sch, err := jsonschema.Compile(schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema: %w", err)
		}
		extra = sch
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if extra != nil {
		if err := cfg.validateWith(extra); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys %v", undecoded)
		}
		return nil
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Validate checks c against the embedded schema and the flocking rules.
func (c *Config) Validate() error {
	sch, err := embeddedSchema()
	if err != nil {
		return fmt.Errorf("failed to compile embedded schema: %w", err)
	}
	if err := c.validateWith(sch); err != nil {
		return err
	}
	if err := c.Flocking.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) validateWith(sch *jsonschema.Schema) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Seed returns the configured seed, or one derived from the clock when unset.
func (c *Config) Seed() uint64 {
	if c.Population.Seed != 0 {
		return c.Population.Seed
	}
	return uint64(time.Now().UnixNano())
}

// Distribution builds the spawn distribution for seed.
func (c *Config) Distribution(seed uint64) flocking.Distribution {
	rng := flocking.NewRand(seed)
	var base flocking.Distribution
	switch c.Population.Distribution {
	case DistributionDisk:
		base = flocking.UniformDisk{Rand: rng, Radius: c.Population.Radius}
	default:
		base = flocking.UniformRect{Rand: rng, HalfWidth: c.Population.Radius, HalfHeight: c.Population.Radius}
	}
	if !c.Population.Leader {
		return base
	}
	return flocking.WithLeader{
		Base:      base,
		ID:        c.Population.Size,
		Placement: flocking.Placement{Heading: geometry.FromAngle(leaderHeading)},
	}
}

// Agents returns the total population, leader included.
func (c *Config) Agents() int {
	if c.Population.Leader {
		return c.Population.Size + 1
	}
	return c.Population.Size
}

// NewStore spawns the configured population.
func (c *Config) NewStore(seed uint64) *flocking.AgentStore {
	return flocking.Initialize(c.Agents(), c.World, c.Distribution(seed))
}

// TickInterval is the wall-clock period between ticks.
func (c *Config) TickInterval() time.Duration {
	if c.Runtime.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Runtime.TickRate)
}

// DumpInterval is the period of the diagnostics dump, zero when disabled.
func (c *Config) DumpInterval() time.Duration {
	return time.Duration(c.Runtime.DumpIntervalSeconds * float64(time.Second))
}
