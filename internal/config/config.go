package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// DefaultModel is what new workspaces talk to until switched.
	DefaultModel string `yaml:"default_model"`
	UseMockLLM   bool   `yaml:"use_mock_llm"`

	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`

	// StorageBackend is "memory", "sqlite" or "firestore".
	StorageBackend string `yaml:"storage_backend"`
	SQLitePath     string `yaml:"sqlite_path"`

	// RequireAuth gates save/share on a signed-in user.
	RequireAuth bool `yaml:"require_auth"`

	// ShareBaseURL prefixes minted share links.
	ShareBaseURL string `yaml:"share_base_url"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load builds the config from env vars, overlaid by the YAML file at
// BRAID_CONFIG (or the given path) when one exists.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:           getEnv("BRAID_PORT", "8080"),
		DefaultModel:   getEnv("BRAID_MODEL_NAME", "gemini-2.5-flash"),
		UseMockLLM:     getBoolEnv("BRAID_USE_MOCK_LLM", true),
		GCPProjectID:   getEnv("BRAID_GCP_PROJECT", ""),
		GCPLocation:    getEnv("BRAID_GCP_LOCATION", "us-central1"),
		StorageBackend: getEnv("BRAID_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("BRAID_SQLITE_PATH", "braid.db"),
		RequireAuth:    getBoolEnv("BRAID_REQUIRE_AUTH", false),
		ShareBaseURL:   getEnv("BRAID_SHARE_BASE_URL", "http://localhost:8080"),
	}

	if path == "" {
		path = os.Getenv("BRAID_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, nil
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "memory", "sqlite", "firestore":
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.StorageBackend == "firestore" && c.GCPProjectID == "" {
		return fmt.Errorf("BRAID_GCP_PROJECT is required for the firestore backend")
	}
	if !c.UseMockLLM && c.GCPProjectID == "" {
		return fmt.Errorf("BRAID_GCP_PROJECT is required when not using the mock LLM")
	}
	return nil
}
