// Package config loads the building description from YAML and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"building_twin/internal/simulator"
)

// Environment variables read by Load.
const (
	EnvConfig         = "TWIN_CONFIG"
	EnvSeed           = "TWIN_SEED"
	EnvHours          = "TWIN_HOURS"
	EnvEPILimit       = "TWIN_EPI_LIMIT"
	EnvBuildingArea   = "TWIN_BUILDING_AREA"
	EnvEmissionFactor = "TWIN_EMISSION_FACTOR"
	EnvKafkaBrokers   = "TWIN_KAFKA_BROKERS"
	EnvKafkaTopic     = "TWIN_KAFKA_TOPIC"
)

// DefaultKafkaTopic receives run summaries when publishing is enabled.
const DefaultKafkaTopic = "building-twin.runs"

// ServerConfig holds settings used only by the dashboard server.
type ServerConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// PublishEnabled reports whether run summaries go to Kafka.
func (c ServerConfig) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// LoadServer reads the server settings from the environment.
func LoadServer() ServerConfig {
	return ServerConfig{
		KafkaBrokers: splitCSV(os.Getenv(EnvKafkaBrokers)),
		KafkaTopic:   getenvDefault(EnvKafkaTopic, DefaultKafkaTopic),
	}
}

// Load builds a validated configuration. Defaults are overlaid by the YAML
// file at path (or $TWIN_CONFIG when path is empty), then by environment
// variables.
func Load(path string) (simulator.Config, error) {
	cfg := simulator.DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults without consulting the
// environment.
func Parse(r io.Reader) (simulator.Config, error) {
	cfg := simulator.DefaultConfig()
	if err := decode(r, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *simulator.Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Marshal renders cfg as YAML, e.g. to seed a config file.
func Marshal(cfg simulator.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func applyEnv(cfg *simulator.Config) {
	cfg.Seed = getenvUintDefault(EnvSeed, cfg.Seed)
	cfg.Hours = getenvIntDefault(EnvHours, cfg.Hours)
	cfg.Assessment.EPILimit = getenvFloatDefault(EnvEPILimit, cfg.Assessment.EPILimit)
	cfg.Assessment.BuildingAreaM2 = getenvFloatDefault(EnvBuildingArea, cfg.Assessment.BuildingAreaM2)
	cfg.Assessment.EmissionFactor = getenvFloatDefault(EnvEmissionFactor, cfg.Assessment.EmissionFactor)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvUintDefault(key string, fallback uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
