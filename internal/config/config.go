// Package config loads runtime configuration from the environment, with an
// optional YAML overrides file that can be hot-reloaded while the server
// runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store selection values for StoreBackend.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Narrative provider selection values for NarrativeProvider.
const (
	ProviderMock    = "mock"
	ProviderBedrock = "bedrock"
)

// Config holds everything the API server needs at startup. Values come from
// the environment; OverridesPath points at an optional YAML file watched for
// model-routing changes.
type Config struct {
	Port              int
	StoreBackend      string
	NarrativeProvider string
	TableName         string
	IndexName         string
	Region            string
	ModelID           string
	BranchModelID     string
	BedrockTimeout    time.Duration
	LogLevel          string
	OverridesPath     string
}

// Load reads configuration from the environment, applying defaults that suit
// local development: in-memory storage and the mock narrative provider.
func Load() Config {
	return Config{
		Port:              getEnvInt("PORT", 3001),
		StoreBackend:      getEnv("STORE_BACKEND", StoreMemory),
		NarrativeProvider: getEnv("NARRATIVE_PROVIDER", ProviderMock),
		TableName:         getEnv("TABLE_NAME", "branchpoint"),
		IndexName:         getEnv("INDEX_NAME", "GSI1"),
		Region:            getEnv("AWS_REGION", "us-east-1"),
		ModelID:           getEnv("MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
		BranchModelID:     getEnv("BRANCH_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		BedrockTimeout:    getEnvDuration("BEDROCK_TIMEOUT", 30*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		OverridesPath:     getEnv("OVERRIDES_PATH", ""),
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.StoreBackend {
	case StoreMemory, StoreDynamoDB:
	default:
		return fmt.Errorf("unknown store backend: %q", c.StoreBackend)
	}
	switch c.NarrativeProvider {
	case ProviderMock, ProviderBedrock:
	default:
		return fmt.Errorf("unknown narrative provider: %q", c.NarrativeProvider)
	}
	if c.StoreBackend == StoreDynamoDB && c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required for the dynamodb backend")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
