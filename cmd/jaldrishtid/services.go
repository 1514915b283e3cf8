package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaldrishti/jaldrishti"
	"github.com/jaldrishti/jaldrishti/azure"
	"github.com/jaldrishti/jaldrishti/classify"
	"github.com/jaldrishti/jaldrishti/exif"
	"github.com/jaldrishti/jaldrishti/file"
	"github.com/jaldrishti/jaldrishti/google"
	"github.com/jaldrishti/jaldrishti/memory"
	"github.com/jaldrishti/jaldrishti/opencv"
	"github.com/jaldrishti/jaldrishti/postgres"
	"github.com/jaldrishti/jaldrishti/redis"
	"github.com/jaldrishti/jaldrishti/risk"
	"github.com/jaldrishti/jaldrishti/storage"

	goredis "github.com/redis/go-redis/v9"
)

// Services holds all application services.
type Services struct {
	Reference         *jaldrishti.ReferenceData
	Registry          jaldrishti.DuplicateRegistry
	Classifier        jaldrishti.Classifier
	ReportService     jaldrishti.ReportService
	RiskScorer        jaldrishti.RiskScorer
	Predictor         jaldrishti.WardPredictor
	RainfallEstimator jaldrishti.RainfallEstimator
	RiskPolicy        jaldrishti.RiskPolicy
	FileStorage       jaldrishti.FileStorage
}

// Close releases services holding external connections.
func (s *Services) Close() error {
	if s.Registry == nil {
		return nil
	}
	return s.Registry.Close()
}

// initServices initializes all application services. db is nil unless a
// component is backed by PostgreSQL.
func initServices(ctx context.Context, db *postgres.DB, cfg *Config, logger *slog.Logger) (*Services, error) {
	// Initialize file storage
	fileStorage, err := initFileStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("file storage initialized", slog.String("provider", cfg.StorageProvider))

	// Load reference data
	ref, err := loadReference(ctx, newReferenceLoader(db, cfg), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("reference data loaded",
		slog.String("provider", cfg.ReferenceProvider),
		slog.Int("wards", len(ref.Wards)),
		slog.Int("locations", len(ref.Locations)))

	// Initialize duplicate registry
	registry, err := initRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("duplicate registry initialized", slog.String("provider", cfg.RegistryProvider))

	// Initialize classifier
	classifier := initClassifier(cfg, registry, logger)

	// Initialize risk models
	riskPolicy := jaldrishti.DefaultRiskPolicy()
	predictor := risk.NewPredictor(risk.NewRationalEstimator(), ref, jaldrishti.DefaultPSIPolicy())

	// Initialize report store
	var reports jaldrishti.ReportService = memory.NewReportService()
	if cfg.ReportStore == ProviderPostgres {
		reports = db.ReportService
	}
	logger.Info("report store initialized", slog.String("provider", cfg.ReportStore))

	return &Services{
		Reference:         ref,
		Registry:          registry,
		Classifier:        classifier,
		ReportService:     reports,
		RiskScorer:        risk.NewScorer(ref, riskPolicy),
		Predictor:         predictor,
		RainfallEstimator: risk.HeuristicRainfall{},
		RiskPolicy:        riskPolicy,
		FileStorage:       fileStorage,
	}, nil
}

// initFileStorage creates the appropriate file storage implementation.
func initFileStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (jaldrishti.FileStorage, error) {
	logger.Debug("storage service configuration",
		slog.String("provider", cfg.StorageProvider),
		slog.String("local_path", cfg.StorageLocalPath),
		slog.String("s3_bucket", cfg.StorageS3Bucket),
		slog.String("s3_region", cfg.StorageS3Region))

	storageCfg := jaldrishti.StorageConfig{
		Provider:  cfg.StorageProvider,
		LocalPath: cfg.StorageLocalPath,
		LocalURL:  cfg.StorageLocalURL,
		S3Bucket:  cfg.StorageS3Bucket,
		S3Region:  cfg.StorageS3Region,
		S3BaseURL: cfg.StorageS3BaseURL,
	}

	return storage.NewFileStorage(ctx, logger, storageCfg)
}

// newReferenceLoader returns the configured reference data source.
func newReferenceLoader(db *postgres.DB, cfg *Config) jaldrishti.ReferenceLoader {
	if cfg.ReferenceProvider == ProviderPostgres {
		return db.ReferenceService
	}
	return fileReferenceLoader(cfg)
}

func fileReferenceLoader(cfg *Config) *file.ReferenceLoader {
	return &file.ReferenceLoader{
		WardMetadataPath: cfg.WardMetadataPath,
		LocationsPath:    cfg.LocationsPath,
		PopulationPath:   cfg.PopulationPath,
	}
}

// loadReference loads reference data. An empty table is not fatal: the
// classifier and report endpoints still work, predictions return nothing.
func loadReference(ctx context.Context, loader jaldrishti.ReferenceLoader, logger *slog.Logger) (*jaldrishti.ReferenceData, error) {
	ref, err := loader.LoadReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}
	if ref == nil {
		ref = &jaldrishti.ReferenceData{}
	}
	if ref.Wards == nil {
		ref.Wards = make(map[string]jaldrishti.WardMeta)
	}
	if len(ref.Wards) == 0 {
		logger.Warn("no ward metadata loaded, PSI predictions will be empty")
	}
	if len(ref.Locations) == 0 {
		logger.Warn("no locations loaded, location risk will be empty")
	}
	return ref, nil
}

// initRegistry creates the duplicate registry.
func initRegistry(ctx context.Context, cfg *Config, logger *slog.Logger) (jaldrishti.DuplicateRegistry, error) {
	if cfg.RegistryProvider != ProviderRedis {
		return memory.NewDuplicateRegistry(), nil
	}

	logger.Debug("redis configuration",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB))

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	registry := redis.NewDuplicateRegistry(client, cfg.RegistryNamespace)
	if err := registry.Open(ctx); err != nil {
		return nil, errors.Join(err, client.Close())
	}
	return registry, nil
}

// initClassifier wires the vision clients, local heuristic and forensic
// checks into the hybrid classifier. Unconfigured remote services are left
// nil so the pipeline skips them without a network attempt.
func initClassifier(cfg *Config, registry jaldrishti.DuplicateRegistry, logger *slog.Logger) jaldrishti.Classifier {
	var tagger jaldrishti.VisionTagger
	if c := azure.NewClient(cfg.AzureEndpoint, cfg.AzureKey, cfg.UpstreamTimeout); c.Configured() {
		tagger = c
		logger.Info("Azure Computer Vision enabled")
	} else {
		logger.Warn("Azure Computer Vision not configured, using local heuristic only")
	}

	var web jaldrishti.WebDetector
	if cfg.GoogleVisionKey != "" {
		web = google.NewClient(cfg.GoogleVisionKey, cfg.UpstreamTimeout)
		logger.Info("Google web detection enabled")
	} else {
		logger.Warn("Google Vision not configured, web presence check disabled")
	}

	policy := jaldrishti.DefaultClassifierPolicy()
	policy.WaterThreshold = cfg.WaterThreshold
	policy.TagMinConfidence = cfg.TagMinConfidence
	policy.MaxConfidence = cfg.MaxConfidence

	detector := opencv.NewDetector()
	return classify.NewService(classify.Config{
		Tagger:   tagger,
		Detector: detector,
		Hasher:   detector,
		Metadata: exif.NewInspector(),
		Web:      web,
		Registry: registry,
		Policy:   policy,
		Logger:   logger,
	})
}
