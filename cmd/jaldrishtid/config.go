package main

import (
	"fmt"
	"strconv"
	"time"
)

// Provider names accepted by the configuration.
const (
	ProviderMemory   = "memory"
	ProviderRedis    = "redis"
	ProviderFile     = "file"
	ProviderPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Host        string
	Port        int
	Environment string
	LogLevel    string
	APIKey      string

	// Database settings
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Vision settings
	AzureEndpoint   string
	AzureKey        string
	GoogleVisionKey string
	UpstreamTimeout time.Duration

	// Classifier overrides
	WaterThreshold   float64
	TagMinConfidence float64
	MaxConfidence    float64

	// Duplicate registry settings
	RegistryProvider  string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RegistryNamespace string

	// Reference data settings
	ReferenceProvider string
	WardMetadataPath  string
	LocationsPath     string
	PopulationPath    string

	// Report settings
	ReportStore string

	// Storage settings
	StorageProvider  string
	StorageLocalPath string
	StorageLocalURL  string
	StorageS3Bucket  string
	StorageS3Region  string
	StorageS3BaseURL string

	// Rate limit settings
	AnalyzeRateLimit int
	AnalyzeRateBurst int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		// Server settings
		Host:        envString(getenv, "SERVER_HOST", "localhost"),
		Port:        envInt(getenv, "SERVER_PORT", 8000),
		Environment: envString(getenv, "ENVIRONMENT", "dev"),
		LogLevel:    envString(getenv, "LOG_LEVEL", "info"),
		APIKey:      envString(getenv, "JALDRISHTI_API_KEY", ""),

		// Database settings
		DBUser:     envString(getenv, "DB_USER", "postgres"),
		DBPassword: envString(getenv, "DB_PASSWORD", ""),
		DBHost:     envString(getenv, "DB_HOSTNAME", "localhost"),
		DBPort:     envString(getenv, "DB_PORT", "5432"),
		DBName:     envString(getenv, "DB_NAME", "jaldrishti"),

		// Vision settings
		AzureEndpoint:   envString(getenv, "AZURE_CV_ENDPOINT", ""),
		AzureKey:        envString(getenv, "AZURE_CV_KEY", ""),
		GoogleVisionKey: envString(getenv, "GOOGLE_VISION_KEY", ""),
		UpstreamTimeout: envDuration(getenv, "UPSTREAM_TIMEOUT", 15*time.Second),

		// Classifier overrides
		WaterThreshold:   envFloat(getenv, "CLASSIFIER_WATER_THRESHOLD", 10),
		TagMinConfidence: envFloat(getenv, "CLASSIFIER_TAG_MIN_CONFIDENCE", 0.4),
		MaxConfidence:    envFloat(getenv, "CLASSIFIER_MAX_CONFIDENCE", 98.5),

		// Duplicate registry settings
		RegistryProvider:  envString(getenv, "REGISTRY_PROVIDER", ProviderMemory),
		RedisAddr:         envString(getenv, "REDIS_ADDR", "localhost:6379"),
		RedisPassword:     envString(getenv, "REDIS_PASSWORD", ""),
		RedisDB:           envInt(getenv, "REDIS_DB", 0),
		RegistryNamespace: envString(getenv, "REGISTRY_NAMESPACE", ""),

		// Reference data settings
		ReferenceProvider: envString(getenv, "REFERENCE_PROVIDER", ProviderFile),
		WardMetadataPath:  envString(getenv, "WARD_METADATA_PATH", "data/ward_metadata.json"),
		LocationsPath:     envString(getenv, "LOCATIONS_PATH", "data/locations.csv"),
		PopulationPath:    envString(getenv, "POPULATION_PATH", ""),

		// Report settings
		ReportStore: envString(getenv, "REPORT_STORE", ProviderMemory),

		// Storage settings
		StorageProvider:  envString(getenv, "STORAGE_PROVIDER", "local"),
		StorageLocalPath: envString(getenv, "STORAGE_LOCAL_PATH", "./uploads"),
		StorageLocalURL:  envString(getenv, "STORAGE_LOCAL_URL", "http://localhost:8000/uploads"),
		StorageS3Bucket:  envString(getenv, "STORAGE_S3_BUCKET", ""),
		StorageS3Region:  envString(getenv, "STORAGE_S3_REGION", "ap-south-1"),
		StorageS3BaseURL: envString(getenv, "STORAGE_S3_BASE_URL", ""),

		// Rate limit settings
		AnalyzeRateLimit: envInt(getenv, "ANALYZE_RATE_LIMIT", 30),
		AnalyzeRateBurst: envInt(getenv, "ANALYZE_RATE_BURST", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// NeedsDatabase reports whether any component is backed by PostgreSQL.
func (c *Config) NeedsDatabase() bool {
	return c.ReferenceProvider == ProviderPostgres || c.ReportStore == ProviderPostgres
}

// validate checks provider names and production requirements.
func (c *Config) validate() error {
	switch c.RegistryProvider {
	case ProviderMemory, ProviderRedis:
	default:
		return fmt.Errorf("REGISTRY_PROVIDER must be %q or %q, got %q", ProviderMemory, ProviderRedis, c.RegistryProvider)
	}
	switch c.ReferenceProvider {
	case ProviderFile, ProviderPostgres:
	default:
		return fmt.Errorf("REFERENCE_PROVIDER must be %q or %q, got %q", ProviderFile, ProviderPostgres, c.ReferenceProvider)
	}
	switch c.ReportStore {
	case ProviderMemory, ProviderPostgres:
	default:
		return fmt.Errorf("REPORT_STORE must be %q or %q, got %q", ProviderMemory, ProviderPostgres, c.ReportStore)
	}

	if c.MaxConfidence <= 0 || c.MaxConfidence > 100 {
		return fmt.Errorf("CLASSIFIER_MAX_CONFIDENCE must be in (0, 100]")
	}
	if c.AnalyzeRateLimit < 0 {
		return fmt.Errorf("ANALYZE_RATE_LIMIT must not be negative")
	}

	if c.IsProduction() {
		if c.APIKey == "" {
			return fmt.Errorf("JALDRISHTI_API_KEY must be set in production environment")
		}
	}
	return nil
}

// Helper functions for loading environment variables with defaults.

func envString(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envFloat(getenv func(string) string, key string, defaultValue float64) float64 {
	if value := getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func envDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
