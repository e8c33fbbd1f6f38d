package config

import (
	"os"
	"path/filepath"
	"testing"
)

const baseConfigYAML = `
port: "8090"
logLevel: "info"
mongoURI: "mongodb://localhost:27017"
mongoDatabase: "garage"
redisAddr: "localhost:6379"
queueStream: "garage:enrich"
queueGroup: "enrichers"
queueConcurrency: 2
vehicleResourceID: "0866573c-40cd-4ca8-91d2-9dd2d7a492e5"
vehicleModelResourceID: "142afde2-6228-49f9-8a29-9b6c3a0cbe40"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("ENRICH_QUEUE_CONCURRENCY", "8")
	t.Setenv("REGISTRY_TIMEOUT_SECONDS", "20")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(writeConfig(t, baseConfigYAML))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MongoURI != "mongodb://db:27017" {
		t.Fatalf("mongoURI = %q, want env override", cfg.MongoURI)
	}
	if cfg.QueueConcurrency != 8 {
		t.Fatalf("queueConcurrency = %d, want 8", cfg.QueueConcurrency)
	}
	if cfg.RegistryTimeoutSeconds != 20 {
		t.Fatalf("registryTimeoutSeconds = %d, want 20", cfg.RegistryTimeoutSeconds)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("minioUseSSL = false, want true")
	}
}

func TestValidateConfigRejectsMissingResourceID(t *testing.T) {
	cfg := FileConfig{
		Port:              "8090",
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "garage",
		RedisAddr:         "localhost:6379",
		VehicleResourceID: "0866573c-40cd-4ca8-91d2-9dd2d7a492e5",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for missing vehicleModelResourceID")
	}
}

func TestValidateConfigRejectsPartialMinioSettings(t *testing.T) {
	cfg := FileConfig{
		Port:                   "8090",
		MongoURI:               "mongodb://localhost:27017",
		MongoDatabase:          "garage",
		RedisAddr:              "localhost:6379",
		VehicleResourceID:      "0866573c-40cd-4ca8-91d2-9dd2d7a492e5",
		VehicleModelResourceID: "142afde2-6228-49f9-8a29-9b6c3a0cbe40",
		MinioEndpoint:          "localhost:9000",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for minio endpoint without credentials")
	}
}
