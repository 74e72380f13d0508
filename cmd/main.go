package main

import (
	"context"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cropsight/internal/backend"
	"cropsight/internal/config"
	"cropsight/internal/controller/server"
	"cropsight/internal/knowledge"
	"cropsight/internal/predictor"
	"cropsight/internal/preprocess"
	"cropsight/internal/publish"
)

func main() {
	cfg := config.MustNew(os.Getenv(config.EnvConfigPath))

	logger, err := zap.NewProduction(zap.AddStacktrace(zapcore.ErrorLevel), zap.AddCaller())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	models, err := backend.New(backend.Config{
		PrimaryPath: cfg.Model.PrimaryPath,
		CompactPath: cfg.Model.CompactPath,
		LabelsPath:  cfg.Model.LabelsPath,
		ImageSize:   cfg.Model.ImageSize,
	}, logger)
	if err != nil {
		logger.Fatal("backend not ready", zap.Error(err))
	}
	defer models.Close()

	store := newStore(ctx, cfg, logger)
	defer store.Close()

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	normalizer := preprocess.New(cfg.Model.ImageSize, cfg.MaxImageBytes(), logger)

	svc := predictor.New(normalizer, models, store, publisher, logger)

	srv := server.New(cfg.Server.Host, cfg.Server.Port, svc, cfg.API.MaxBatchSize, cfg.API.MaxTopK, logger)

	logger.Info("started service",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Int("num_classes", models.Metadata().NumClasses),
	)

	if err := srv.Start(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newStore picks the knowledge base implementation: postgres when a DSN is
// configured, redis when an address is configured, otherwise in-memory. The
// external stores are seeded from the shipped dataset on every startup.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) knowledge.Store {
	records, err := knowledge.LoadDataset(cfg.Knowledge.DatasetPath)
	if err != nil {
		logger.Fatal("load disease dataset", zap.Error(err))
	}

	if cfg.Knowledge.PostgresDSN != "" {
		store, err := knowledge.NewPostgresStore(ctx, cfg.Knowledge.PostgresDSN, logger)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}

		if err := store.Seed(ctx, records); err != nil {
			logger.Fatal("seed postgres", zap.Error(err))
		}

		return store
	}

	if cfg.Knowledge.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Knowledge.RedisAddr,
			Password: cfg.Knowledge.RedisPassword,
			DB:       cfg.Knowledge.RedisDB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}

		store := knowledge.NewRedisStore(client)
		if err := store.Seed(ctx, records); err != nil {
			logger.Fatal("seed redis", zap.Error(err))
		}

		return store
	}

	return knowledge.NewMemoryStore(records)
}

func newPublisher(cfg *config.Config, logger *zap.Logger) publish.Publisher {
	if cfg.Kafka.Address == "" {
		return publish.NopPublisher{}
	}

	brokers := strings.Split(cfg.Kafka.Address, ",")

	publisher, err := publish.NewKafkaPublisher(brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		logger.Fatal("connect to kafka", zap.Error(err))
	}

	return publisher
}
