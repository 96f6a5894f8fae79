package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации мира.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Generator GeneratorConfig `yaml:"generator"`
	Loader    LoaderConfig    `yaml:"loader"`
	Changes   ChangesConfig   `yaml:"changes"`
	Engine    EngineConfig    `yaml:"engine"`
	API       APIConfig       `yaml:"api"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type WorldConfig struct {
	Seed int64 `yaml:"seed"`
	// Radius ограничивает мир по x и z в блоках, 0 - без ограничения
	Radius int `yaml:"radius"`
}

type GeneratorConfig struct {
	// Kind - "terrain" (шум Перлина) или "wave" (отладочный)
	Kind         string  `yaml:"kind"`
	SoilsPath    string  `yaml:"soils_path"`
	NoiseScale   float64 `yaml:"noise_scale"`
	ClimateScale float64 `yaml:"climate_scale"`
	SurfaceDepth int     `yaml:"surface_depth"`
	SeaLevel     int     `yaml:"sea_level"`
	FillStone    bool    `yaml:"fill_stone"`
	TreeChance   float64 `yaml:"tree_chance"`
}

type LoaderConfig struct {
	Radius       int `yaml:"radius"`
	LoadsPerStep int `yaml:"loads_per_step"`
	Workers      int `yaml:"workers"`
}

type ChangesConfig struct {
	PerStep     int    `yaml:"per_step"`
	BackoffBase uint64 `yaml:"backoff_base"`
	BackoffMax  uint64 `yaml:"backoff_max"`
}

type EngineConfig struct {
	TickRate int `yaml:"tick_rate"`
	// SweepEvery - раз во сколько тиков выгружать колонны вне интереса
	SweepEvery int `yaml:"sweep_every"`
}

type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{Seed: 42},
		Generator: GeneratorConfig{
			Kind:         "terrain",
			SoilsPath:    "assets/data/soils_condition.csv",
			NoiseScale:   0.01,
			ClimateScale: 0.004,
			SurfaceDepth: 3,
			SeaLevel:     40,
			TreeChance:   0.01,
		},
		Loader:    LoaderConfig{Radius: 4, LoadsPerStep: 1, Workers: 4},
		Changes:   ChangesConfig{PerStep: 1, BackoffBase: 1, BackoffMax: 32},
		Engine:    EngineConfig{TickRate: 20, SweepEvery: 100},
		API:       APIConfig{Enabled: true},
		Telemetry: TelemetryConfig{ServiceName: "blockworld"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// TickInterval возвращает длительность одного тика
func (e EngineConfig) TickInterval() time.Duration {
	if e.TickRate <= 0 {
		return time.Second / 20
	}
	return time.Second / time.Duration(e.TickRate)
}

// GetPort возвращает порт REST API с поддержкой fallback значений
func (a *APIConfig) GetPort() int {
	return getPortWithEnvFallback(a.Port, "WORLD_API_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error
	if c.Loader.Radius < 0 {
		errs = append(errs, fmt.Errorf("loader.radius должен быть >= 0, получено %d", c.Loader.Radius))
	}
	if c.Loader.LoadsPerStep <= 0 {
		errs = append(errs, fmt.Errorf("loader.loads_per_step должен быть > 0"))
	}
	if c.Loader.Workers <= 0 {
		errs = append(errs, fmt.Errorf("loader.workers должен быть > 0"))
	}
	if c.Changes.PerStep <= 0 {
		errs = append(errs, fmt.Errorf("changes.per_step должен быть > 0"))
	}
	if c.Generator.SeaLevel < 0 || c.Generator.SeaLevel >= 256 {
		errs = append(errs, fmt.Errorf("generator.sea_level вне [0, 256): %d", c.Generator.SeaLevel))
	}
	if c.Generator.TreeChance < 0 || c.Generator.TreeChance > 1 {
		errs = append(errs, fmt.Errorf("generator.tree_chance вне [0, 1]: %v", c.Generator.TreeChance))
	}
	switch c.Generator.Kind {
	case "terrain", "wave":
	default:
		errs = append(errs, fmt.Errorf("неизвестный generator.kind %q", c.Generator.Kind))
	}
	if c.Generator.SoilsPath == "" {
		errs = append(errs, errors.New("generator.soils_path не задан"))
	}
	return errors.Join(errs...)
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV WORLD_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("WORLD_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация %s: %w", path, err)
	}
	return cfg, nil
}
