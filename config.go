package cyphersql

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SchemaConfig describes the relational schema the translator targets.
type SchemaConfig struct {
	// Table holding nodes when label tables are disabled
	NodeTable string `yaml:"node_table"`

	// Table holding relationships
	RelationshipTable string `yaml:"relationship_table"`

	// Use one table per node label instead of a shared node table
	UseLabelTables bool `yaml:"use_label_tables"`
}

// Config represents the .cyphersql.yaml configuration file.
type Config struct {
	// Default dialect for parsing
	Dialect string `yaml:"dialect,omitempty"`

	// Schema mapping for translation
	Schema SchemaConfig `yaml:"schema"`
}

// DefaultSchemaConfig returns the schema defaults: a shared relationships
// table and per-label node tables.
func DefaultSchemaConfig() SchemaConfig {
	return SchemaConfig{
		NodeTable:         "nodes",
		RelationshipTable: "relationships",
		UseLabelTables:    true,
	}
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Dialect: "cypher",
		Schema:  DefaultSchemaConfig(),
	}
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".cyphersql.yaml", ".cyphersql.yml", "cyphersql.yaml", "cyphersql.yml"}

// LoadConfig finds and loads the nearest .cyphersql.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path. Fields absent from the
// file keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
