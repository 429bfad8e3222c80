// Package config loads the odataq configuration: where the data lives, how
// entity sets map onto tables and the engine defaults.
//
// Values are resolved in order: built-in defaults, then the YAML file, then
// ODATAQ_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

// Supported database dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DefaultPageSize matches the engine's server-side page size.
const DefaultPageSize = 10

// Config is the resolved CLI configuration.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Engine        EngineConfig        `yaml:"engine"`
	Observability ObservabilityConfig `yaml:"observability"`
	Namespace     string              `yaml:"namespace"`
	EntitySets    []EntitySetConfig   `yaml:"entity_sets"`
}

// DatabaseConfig selects the gorm dialect and data source.
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
}

// EngineConfig holds query engine defaults.
type EngineConfig struct {
	PageSize int `yaml:"page_size"`
	// BaseURI is the service root used to build request URIs when only an
	// entity set name is given.
	BaseURI string `yaml:"base_uri"`
}

// ObservabilityConfig toggles the optional instrumentation.
type ObservabilityConfig struct {
	ServerTiming bool   `yaml:"server_timing"`
	DetailedDB   bool   `yaml:"detailed_db"`
	ServiceName  string `yaml:"service_name"`
	LogLevel     string `yaml:"log_level"`
}

// EntitySetConfig maps an entity set onto a table.
type EntitySetConfig struct {
	Name       string           `yaml:"name"`
	EntityType string           `yaml:"entity_type"`
	Table      string           `yaml:"table"`
	Key        []string         `yaml:"key"`
	Properties []PropertyConfig `yaml:"properties"`
}

// PropertyConfig declares one column as a primitive property.
type PropertyConfig struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Type       string `yaml:"type"`
	Nullable   *bool  `yaml:"nullable"`
	Searchable bool   `yaml:"searchable"`
}

// ColumnName returns the column backing the property.
func (p PropertyConfig) ColumnName() string {
	if p.Column != "" {
		return p.Column
	}
	return p.Name
}

// LoadDefaults returns the built-in configuration.
func LoadDefaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect: DialectSQLite,
			DSN:     "file::memory:?cache=shared",
		},
		Engine: EngineConfig{
			PageSize: DefaultPageSize,
			BaseURI:  "http://localhost/odata",
		},
		Observability: ObservabilityConfig{
			ServiceName: "odataq",
			LogLevel:    "info",
		},
		Namespace: "Default",
	}
}

// LoadFromFile loads defaults, overlays the YAML file at path and then the
// environment. A missing file is not an error.
func LoadFromFile(path string) (*Config, error) {
	cfg := LoadDefaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	ApplyEnvVars(cfg)
	return cfg, nil
}

// ApplyEnvVars overlays ODATAQ_* environment variables onto cfg.
func ApplyEnvVars(cfg *Config) {
	cfg.Database.Dialect = getEnv("ODATAQ_DB_DIALECT", cfg.Database.Dialect)
	cfg.Database.DSN = getEnv("ODATAQ_DB_DSN", cfg.Database.DSN)
	cfg.Engine.PageSize = getEnvInt("ODATAQ_PAGE_SIZE", cfg.Engine.PageSize)
	cfg.Engine.BaseURI = getEnv("ODATAQ_BASE_URI", cfg.Engine.BaseURI)
	cfg.Observability.ServerTiming = getEnvBool("ODATAQ_SERVER_TIMING", cfg.Observability.ServerTiming)
	cfg.Observability.DetailedDB = getEnvBool("ODATAQ_DETAILED_DB", cfg.Observability.DetailedDB)
	cfg.Observability.LogLevel = getEnv("ODATAQ_LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Namespace = getEnv("ODATAQ_NAMESPACE", cfg.Namespace)
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	switch c.Database.Dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return fmt.Errorf("unsupported database dialect: %q", c.Database.Dialect)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn must not be empty")
	}
	if c.Engine.PageSize <= 0 {
		return fmt.Errorf("invalid page size: %d", c.Engine.PageSize)
	}

	seen := make(map[string]bool, len(c.EntitySets))
	for _, set := range c.EntitySets {
		if set.Name == "" {
			return fmt.Errorf("entity set must have a name")
		}
		if seen[set.Name] {
			return fmt.Errorf("entity set %q is declared twice", set.Name)
		}
		seen[set.Name] = true
		if len(set.Properties) == 0 {
			return fmt.Errorf("entity set %q declares no properties", set.Name)
		}
		for _, p := range set.Properties {
			if p.Name == "" {
				return fmt.Errorf("entity set %q has a property without a name", set.Name)
			}
			if _, err := edm.ParseKind(p.Type); err != nil {
				return fmt.Errorf("entity set %q property %q: %w", set.Name, p.Name, err)
			}
		}
	}
	return nil
}

// EntitySet looks up an entity set definition by name.
func (c *Config) EntitySet(name string) (EntitySetConfig, bool) {
	for _, set := range c.EntitySets {
		if set.Name == name {
			return set, true
		}
	}
	return EntitySetConfig{}, false
}

// Model builds the EDM model declared by the entity sets.
func (c *Config) Model() (*edm.Model, error) {
	model := edm.NewModel(c.Namespace)
	for _, set := range c.EntitySets {
		t, err := set.EntityTypeDef()
		if err != nil {
			return nil, err
		}
		if _, exists := model.EntityType(t.Name); !exists {
			if err := model.AddEntityType(t); err != nil {
				return nil, err
			}
		}
		if _, err := model.AddEntitySet(set.Name, t.Name); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// EntityTypeDef converts the set declaration into an entity type. The type
// name defaults to the set name.
func (s EntitySetConfig) EntityTypeDef() (*edm.EntityType, error) {
	name := s.EntityType
	if name == "" {
		name = s.Name
	}
	t := &edm.EntityType{Name: name, Key: s.Key}
	for _, p := range s.Properties {
		kind, err := edm.ParseKind(p.Type)
		if err != nil {
			return nil, fmt.Errorf("entity set %q property %q: %w", s.Name, p.Name, err)
		}
		nullable := true
		if p.Nullable != nil {
			nullable = *p.Nullable
		}
		t.Properties = append(t.Properties, edm.PropertyDef{
			Name:       p.Name,
			Type:       kind,
			Nullable:   nullable,
			Searchable: p.Searchable,
		})
	}
	return t, nil
}

// TableName returns the table backing the set, defaulting to the set name.
func (s EntitySetConfig) TableName() string {
	if s.Table != "" {
		return s.Table
	}
	return strings.ToLower(s.Name)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}
