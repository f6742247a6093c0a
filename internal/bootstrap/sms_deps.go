package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"sms_classifier/adapter/out/messaging"
	"sms_classifier/adapter/out/mongodb"
	"sms_classifier/adapter/out/onnx"
	"sms_classifier/adapter/out/persistence"
	"sms_classifier/config"
	"sms_classifier/core/domain"
	"sms_classifier/core/port/in"
	"sms_classifier/core/port/out"
	"sms_classifier/core/service/classification"
	"sms_classifier/core/service/feedback"
	"sms_classifier/infra/database"
	"sms_classifier/pkg/cache"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies holds every connection, adapter and service shared by the
// API and the worker. Optional stores are nil when not configured.
type Dependencies struct {
	Mode domain.InferenceMode

	// Infrastructure
	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client
	Mongo *mongo.Client

	// Outbound adapters
	Messages          out.MessageRepository
	FeedbackRepo      out.FeedbackRepository
	Misclassification out.MisclassificationRepository
	Cache             *cache.RedisCache
	Trigger           out.ClassifyTrigger

	// Classification
	Vocabulary *classification.Vocabulary
	Extractor  *classification.FeatureExtractor
	Heuristic  *classification.HeuristicClassifier
	Scorer     *onnx.Scorer
	Classifier in.Classifier
	Tracker    *metrics.PerformanceTracker

	// Services
	ClassificationService *classification.Service
	FeedbackService       *feedback.Service
	BackendChecker        *classification.BackendHealthChecker
}

// HasStore reports whether message persistence is configured.
func (d *Dependencies) HasStore() bool {
	return d.Messages != nil
}

// NewDependencies connects every configured store and assembles the
// classification stack. PostgreSQL is optional here; callers that need it
// check HasStore.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Tracker: metrics.NewPerformanceTracker()}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	mode, err := classification.ParseInferenceMode(cfg.InferenceMode)
	if err != nil {
		return fail(err)
	}
	deps.Mode = mode

	// PostgreSQL
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		deps.DB = pool
		cleanups = append(cleanups, pool.Close)

		sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
		if err != nil {
			return fail(fmt.Errorf("postgres (sqlx): %w", err))
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { sqlDB.Close() })

		if err := database.Migrate(sqlDB, cfg.MigrationsPath); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}

		deps.Messages = persistence.NewMessageAdapter(sqlDB)
		deps.FeedbackRepo = persistence.NewFeedbackAdapter(sqlDB)
		logger.Info("PostgreSQL connected")
	} else {
		logger.Warn("DATABASE_URL not set, message storage disabled")
	}

	// Redis
	if cfg.RedisURL != "" {
		client, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, continuing without cache and stream")
		} else {
			deps.Redis = client
			cleanups = append(cleanups, func() { client.Close() })
			deps.Cache = cache.NewRedisCache(client)
			deps.Trigger = messaging.NewRedisProducer(client)
			logger.Info("Redis connected")
		}
	}

	// MongoDB
	if cfg.MongoDBURL != "" {
		client, err := mongodb.NewClient(cfg.MongoDBURL, mongodb.DefaultClientConfig())
		if err != nil {
			logger.WithError(err).Warn("MongoDB unavailable, misclassification log disabled")
		} else {
			deps.Mongo = client
			cleanups = append(cleanups, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				client.Disconnect(ctx)
			})

			adapter := mongodb.NewMisclassificationAdapter(client.Database(cfg.MongoDBName))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := adapter.EnsureIndexes(ctx); err != nil {
				logger.WithError(err).Warn("Failed to ensure misclassification indexes")
			}
			cancel()
			deps.Misclassification = adapter
			logger.Info("MongoDB connected")
		}
	}

	// Model bundle
	manifest, err := config.LoadModelManifest(cfg.ModelConfigPath)
	if err != nil {
		return fail(err)
	}
	thresholds := ApplyManifestThresholds(classification.DefaultThresholds(), manifest)

	vocabPath := cfg.VocabularyPath
	if manifest.Vocabulary != "" {
		vocabPath = resolveModelPath(cfg.ModelDir, manifest.Vocabulary)
	}
	deps.Vocabulary = classification.NewVocabulary(vocabPath)
	deps.Extractor = classification.NewFeatureExtractor(deps.Vocabulary)
	deps.Heuristic = classification.NewHeuristicClassifier()

	opts := classification.ClassifierOptions{
		Mode:          mode,
		Heuristic:     deps.Heuristic,
		Thresholds:    thresholds,
		ServerBaseURL: cfg.ServerAPIBaseURL,
		RemoteTimeout: cfg.RemoteTimeout,
	}
	if mode == domain.InferenceModeOnDevice {
		onnxCfg := ApplyManifestModels(onnx.DefaultConfig(cfg.ModelDir), manifest)
		onnxCfg.SharedLibraryPath = cfg.OnnxRuntimeLib
		deps.Scorer = onnx.NewScorer(onnxCfg)
		scorer := deps.Scorer
		cleanups = append(cleanups, func() {
			if err := scorer.Close(); err != nil {
				logger.WithError(err).Warn("Failed to release ONNX sessions")
			}
		})
		opts.Scorer = scorer
	}

	deps.Classifier, err = classification.NewClassifier(opts)
	if err != nil {
		return fail(err)
	}

	var predictionCache out.PredictionCache
	if deps.Cache != nil {
		predictionCache = deps.Cache
	}
	deps.ClassificationService = classification.NewService(
		deps.Classifier,
		deps.Extractor,
		deps.Heuristic,
		deps.Tracker,
		predictionCache,
		cfg.PredictionCacheTTL,
	)

	if deps.HasStore() {
		deps.FeedbackService = feedback.NewService(deps.Messages, deps.FeedbackRepo, deps.Misclassification)
	}

	if mode == domain.InferenceModeServer {
		deps.BackendChecker = classification.NewBackendHealthChecker(cfg.ServerAPIBaseURL, nil)
	}

	logger.WithFields(map[string]any{
		"inference_mode": string(mode),
		"store":          deps.HasStore(),
		"redis":          deps.Redis != nil,
		"mongodb":        deps.Mongo != nil,
	}).Info("Dependencies ready")

	return deps, cleanup, nil
}

// ApplyManifestModels overlays manifest model entries onto cfg.
func ApplyManifestModels(cfg onnx.Config, m *config.ModelManifest) onnx.Config {
	models := make(map[out.ModelKind]onnx.ModelSpec, len(cfg.Models))
	for kind, spec := range cfg.Models {
		models[kind] = spec
	}
	for name, entry := range m.Models {
		kind := out.ModelKind(name)
		spec := models[kind]
		if entry.File != "" {
			spec.File = entry.File
		}
		if entry.Input != "" {
			spec.InputName = entry.Input
		}
		if entry.Output != "" {
			spec.OutputName = entry.Output
		}
		if entry.OutputSize > 0 {
			spec.OutputSize = entry.OutputSize
		}
		models[kind] = spec
	}
	cfg.Models = models
	return cfg
}

// ApplyManifestThresholds overlays manifest thresholds onto t.
func ApplyManifestThresholds(t classification.Thresholds, m *config.ModelManifest) classification.Thresholds {
	o := m.Thresholds
	if o.HeuristicTrust != nil {
		t.HeuristicTrust = *o.HeuristicTrust
	}
	if o.HeuristicOverride != nil {
		t.HeuristicOverride = *o.HeuristicOverride
	}
	if o.OTPPositive != nil {
		t.OTPPositive = *o.OTPPositive
	}
	if o.PhishingPositive != nil {
		t.PhishingPositive = *o.PhishingPositive
	}
	return t
}

func resolveModelPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
