package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"job-board-api/config"
	"job-board-api/internal/assets"
	"job-board-api/internal/database"
	"job-board-api/internal/ratelimit"
	"job-board-api/internal/services"
	"job-board-api/internal/storage/postgres"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	DBPool      *pgxpool.Pool
	RedisClient *redis.Client
	Validator   *validator.Validate

	CVService          services.CVService
	JobService         services.JobService
	ApplicationService services.ApplicationService

	// Uploads is set when CVs are stored on local disk and must be served by this process.
	Uploads *StaticMount
}

// StaticMount is a filesystem served under a URL prefix.
type StaticMount struct {
	Prefix string
	FS     http.FileSystem
}

// New connects to Postgres and Redis, builds the asset backend and wires the services.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	dbPool, err := database.NewConnectionPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	backend, uploads, err := newAssetBackend(ctx, cfg.Storage)
	if err != nil {
		dbPool.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	// A nil *redis.Client must not reach the limiter as a non-nil interface.
	var scripter redis.Scripter
	if redisClient != nil {
		scripter = redisClient
	}
	limiter := ratelimit.NewUploadLimiter(scripter, cfg.Uploads.PerDay)

	userRepo := postgres.NewUserRepo(dbPool)
	companyRepo := postgres.NewCompanyRepo(dbPool)
	jobRepo := postgres.NewJobRepo(dbPool)
	cvRepo := postgres.NewCVRepo(dbPool)
	appRepo := postgres.NewJobApplicationRepo(dbPool)

	store := assets.NewStore(backend, assets.CVNamespace)

	return &Application{
		Config:             cfg,
		DBPool:             dbPool,
		RedisClient:        redisClient,
		Validator:          validator.New(),
		CVService:          services.NewCVService(cvRepo, userRepo, store, limiter, assets.CVConstraints(cfg.Storage.MaxUploadBytes)),
		JobService:         services.NewJobService(jobRepo, companyRepo, appRepo, dbPool),
		ApplicationService: services.NewApplicationService(appRepo, jobRepo, cvRepo, companyRepo, dbPool),
		Uploads:            uploads,
	}, nil
}

func newAssetBackend(ctx context.Context, cfg config.StorageConfig) (assets.Backend, *StaticMount, error) {
	switch cfg.Backend {
	case "s3":
		client, err := assets.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Storing CVs in S3 bucket %s", cfg.S3.Bucket)
		return assets.NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.PublicBaseURL), nil, nil
	case "local", "":
		local, err := assets.NewLocalBackend(cfg.LocalDir, cfg.PublicPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Storing CVs under %s, served at %s", cfg.LocalDir, local.PublicPrefix())
		return local, &StaticMount{Prefix: local.PublicPrefix(), FS: local.FileSystem()}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close releases the database pool and Redis client.
func (a *Application) Close() {
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if a.DBPool != nil {
		a.DBPool.Close()
	}
}
