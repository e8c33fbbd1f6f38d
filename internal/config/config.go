package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location, relative to the
// working directory of the server process.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	MongoURI      string `yaml:"mongoURI"`
	MongoDatabase string `yaml:"mongoDatabase"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	QueueStream      string `yaml:"queueStream"`
	QueueGroup       string `yaml:"queueGroup"`
	QueueConcurrency int    `yaml:"queueConcurrency"`
	QueueMaxAttempts int    `yaml:"queueMaxAttempts"`

	RegistryBaseURL        string `yaml:"registryBaseURL"`
	VehicleResourceID      string `yaml:"vehicleResourceID"`
	VehicleModelResourceID string `yaml:"vehicleModelResourceID"`
	RegistryTimeoutSeconds int    `yaml:"registryTimeoutSeconds"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	CameraAMQPURL string `yaml:"cameraAmqpURL"`
	CameraQueue   string `yaml:"cameraQueue"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("GARAGE_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("GARAGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ENRICH_QUEUE_STREAM"); v != "" {
		cfg.QueueStream = v
	}
	if v := os.Getenv("ENRICH_QUEUE_GROUP"); v != "" {
		cfg.QueueGroup = v
	}
	if v := os.Getenv("ENRICH_QUEUE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueConcurrency = n
		}
	}
	if v := os.Getenv("ENRICH_QUEUE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueMaxAttempts = n
		}
	}
	if v := os.Getenv("REGISTRY_BASE_URL"); v != "" {
		cfg.RegistryBaseURL = v
	}
	if v := os.Getenv("REGISTRY_VEHICLE_RESOURCE_ID"); v != "" {
		cfg.VehicleResourceID = v
	}
	if v := os.Getenv("REGISTRY_VEHICLE_MODEL_RESOURCE_ID"); v != "" {
		cfg.VehicleModelResourceID = v
	}
	if v := os.Getenv("REGISTRY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RegistryTimeoutSeconds = n
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MinioUseSSL = enabled
		}
	}
	if v := os.Getenv("CAMERA_AMQP_URL"); v != "" {
		cfg.CameraAMQPURL = v
	}
	if v := os.Getenv("CAMERA_QUEUE"); v != "" {
		cfg.CameraQueue = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.MongoURI == "" {
		return errors.New("config: mongoURI is required (set in config.yaml or MONGO_URI)")
	}
	if cfg.MongoDatabase == "" {
		return errors.New("config: mongoDatabase is required (set in config.yaml or MONGO_DATABASE)")
	}
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	if cfg.QueueConcurrency < 0 {
		return errors.New("config: queueConcurrency must be >= 0")
	}
	if cfg.QueueMaxAttempts < 0 {
		return errors.New("config: queueMaxAttempts must be >= 0")
	}
	if strings.TrimSpace(cfg.VehicleResourceID) == "" {
		return errors.New("config: vehicleResourceID is required (set in config.yaml or REGISTRY_VEHICLE_RESOURCE_ID)")
	}
	if strings.TrimSpace(cfg.VehicleModelResourceID) == "" {
		return errors.New("config: vehicleModelResourceID is required (set in config.yaml or REGISTRY_VEHICLE_MODEL_RESOURCE_ID)")
	}
	if cfg.RegistryTimeoutSeconds < 0 {
		return errors.New("config: registryTimeoutSeconds must be >= 0")
	}
	if cfg.MinioEndpoint != "" && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "") {
		return errors.New("config: minio requires minioAccessKey, minioSecretKey and minioBucket when minioEndpoint is set")
	}
	if cfg.CameraAMQPURL != "" && strings.TrimSpace(cfg.CameraQueue) == "" {
		return errors.New("config: cameraQueue is required when cameraAmqpURL is set")
	}
	return nil
}
