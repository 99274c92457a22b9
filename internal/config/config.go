// Package config loads the shuttlemap settings from defaults, an optional
// shuttlemap.yml and SHUTTLEMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/babcock-shuttle/shuttlemap/internal/feed"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

// FileName is the config file looked up in the config directory, without extension.
const FileName = "shuttlemap"

// EnvPrefix prefixes environment overrides, e.g. SHUTTLEMAP_API_TOKEN.
const EnvPrefix = "SHUTTLEMAP"

// DefaultBackground is the campus map drawn behind the markers.
const DefaultBackground = "https://lh5.googleusercontent.com/p/AF1QipN7Ea-z-QC0_g9L0H8e5nHGZ2z6vL6_-TcH2x8=w408-h306-k-no"

// APIConfig holds fleet backend settings
type APIConfig struct {
	BaseURL string        `mapstructure:"baseUrl" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// FleetConfig holds shuttle list polling settings
type FleetConfig struct {
	RefreshInterval time.Duration `mapstructure:"refreshInterval" validate:"gte=0"` // Zero fetches once
	DemoOnFailure   bool          `mapstructure:"demoOnFailure"`
}

// MapConfig holds what is drawn under the markers
type MapConfig struct {
	Background string `mapstructure:"background"` // Path or URL; empty draws no image
	Landmarks  string `mapstructure:"landmarks"`  // YAML landmark table; empty uses the campus table
}

// FeedConfig holds the GTFS-realtime endpoint settings
type FeedConfig struct {
	Addr string `mapstructure:"addr"` // Listen address; empty disables the endpoint
}

// Config is the full application configuration.
type Config struct {
	LogLevel  string `mapstructure:"logLevel" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"logFormat" validate:"oneof=console json"`

	API        APIConfig         `mapstructure:"api"`
	Fleet      FleetConfig       `mapstructure:"fleet"`
	Map        MapConfig         `mapstructure:"map"`
	Simulation simulation.Config `mapstructure:"simulation"`
	Geo        feed.Geo          `mapstructure:"geo"`
	Feed       FeedConfig        `mapstructure:"feed"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "console")

	viper.SetDefault("api.baseUrl", "http://localhost:8000")
	viper.SetDefault("api.token", "")
	viper.SetDefault("api.timeout", "30s")

	viper.SetDefault("fleet.refreshInterval", "0s")
	viper.SetDefault("fleet.demoOnFailure", true)

	viper.SetDefault("map.background", DefaultBackground)
	viper.SetDefault("map.landmarks", "")

	sim := simulation.DefaultConfig()
	viper.SetDefault("simulation.canvasWidth", sim.CanvasWidth)
	viper.SetDefault("simulation.canvasHeight", sim.CanvasHeight)
	viper.SetDefault("simulation.boundaryMin", sim.BoundaryMin)
	viper.SetDefault("simulation.boundaryMaxX", sim.BoundaryMaxX)
	viper.SetDefault("simulation.boundaryMaxY", sim.BoundaryMaxY)
	viper.SetDefault("simulation.spawnMargin", sim.SpawnMargin)
	viper.SetDefault("simulation.spawnWidth", sim.SpawnWidth)
	viper.SetDefault("simulation.spawnHeight", sim.SpawnHeight)
	viper.SetDefault("simulation.initialSpeed", sim.InitialSpeed)
	viper.SetDefault("simulation.speed", sim.Speed)
	viper.SetDefault("simulation.arrivalThreshold", sim.ArrivalThreshold)
	viper.SetDefault("simulation.tickInterval", sim.TickInterval.String())
	viper.SetDefault("simulation.preserveMarkers", sim.PreserveMarkers)
	viper.SetDefault("simulation.seed", sim.Seed)

	geo := feed.DefaultGeo()
	viper.SetDefault("geo.north", geo.North)
	viper.SetDefault("geo.south", geo.South)
	viper.SetDefault("geo.east", geo.East)
	viper.SetDefault("geo.west", geo.West)

	viper.SetDefault("feed.addr", "")
}

// Load reads the configuration. configDir is searched for shuttlemap.yml;
// the file is optional. Environment variables override the file.
func Load(configDir string) (Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	if configDir == "" {
		configDir = "."
	}
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the simulation rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	return nil
}

// ConfigFileUsed returns the path of the config file read by Load, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
