package config

import "github.com/ilyakaznacheev/cleanenv"

const EnvConfigPath = "CONFIG_PATH"

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
}

type ModelConfig struct {
	// PrimaryPath points at the full-precision ONNX graph. Empty disables
	// the variant; at least one variant must load for startup to succeed.
	PrimaryPath string `yaml:"primary_path" env:"MODEL_PRIMARY_PATH"`
	// CompactPath points at the quantized mobile model.
	CompactPath string `yaml:"compact_path" env:"MODEL_COMPACT_PATH"`
	LabelsPath  string `yaml:"labels_path" env:"CLASS_LABELS_PATH" env-default:"data/class_labels.json"`
	// ImageSize is the square input resolution the models were trained on.
	ImageSize      int `yaml:"image_size" env:"IMAGE_SIZE" env-default:"224"`
	MaxImageSizeMB int `yaml:"max_image_size_mb" env:"MAX_IMAGE_SIZE_MB" env-default:"10"`
}

type APIConfig struct {
	MaxBatchSize int `yaml:"max_batch_size" env:"MAX_BATCH_SIZE" env-default:"10"`
	MaxTopK      int `yaml:"max_top_k" env:"MAX_TOP_K" env-default:"10"`
}

type KnowledgeConfig struct {
	DatasetPath string `yaml:"dataset_path" env:"DISEASE_DATASET_PATH" env-default:"data/diseases.json"`
	// RedisAddr switches the knowledge base to redis when set.
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	// PostgresDSN switches the knowledge base to postgres when set; it takes
	// precedence over redis.
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
}

type KafkaConfig struct {
	// Address enables the diagnostics publisher when set.
	Address string `yaml:"address" env:"KAFKA_ADDRESS"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"diagnostics"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	API       APIConfig       `yaml:"api"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

// MustNew loads configuration from the yaml file at path, overlaid with
// environment variables. An empty path reads the environment only.
func MustNew(path string) *Config {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			panic(err)
		}
		return cfg
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		panic(err)
	}

	return cfg
}

// MaxImageBytes converts the configured megabyte limit to bytes.
func (r *Config) MaxImageBytes() int64 {
	return int64(r.Model.MaxImageSizeMB) << 20
}
