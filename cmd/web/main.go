package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent-marketplace/config"
	_ "talent-marketplace/docs" // registers the Swagger spec
	"talent-marketplace/internal/delivery/http/web"
	"talent-marketplace/internal/repository/postgres"
	"talent-marketplace/internal/session"
	"talent-marketplace/internal/usecase"
	"talent-marketplace/pkg/auth"
	"talent-marketplace/pkg/database"
	"talent-marketplace/pkg/imaging"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/redis"
	"talent-marketplace/pkg/security"
	"talent-marketplace/pkg/security/antivirus"
	"talent-marketplace/pkg/supabase"
	"talent-marketplace/pkg/validation"

	goredis "github.com/redis/go-redis/v9"
)

// @title           Talent Marketplace API
// @version         1.0
// @description     Read-only JSON API of the developer and company directory.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting talent marketplace", "port", cfg.Port)
	secLog := security.InitSecurityLogger("talent-marketplace", security.Environment())
	defer func() { _ = secLog.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional, limits fall back to memory)
	var redisClient *goredis.Client
	if rc, err := redis.New(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limits", "error", err)
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	// 5. Setup Supabase clients
	storage, err := supabase.NewStorage(ctx, supabase.StorageConfig{
		Endpoint:        cfg.StorageS3Endpoint,
		Region:          cfg.StorageRegion,
		AccessKeyID:     cfg.StorageAccessKeyID,
		SecretAccessKey: cfg.StorageSecretKey,
		PublicBaseURL:   cfg.SupabaseUrl,
	})
	if err != nil {
		logger.Log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}
	authClient := supabase.NewAuthClient(cfg.SupabaseUrl, cfg.SupabaseKey, nil)
	jwksProvider := auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 6. Setup Repositories
	userProfileRepo := postgres.NewUserProfileRepository(dbPool)
	developerRepo := postgres.NewDeveloperProfileRepository(dbPool)
	companyRepo := postgres.NewCompanyProfileRepository(dbPool)
	uploadRepo := postgres.NewUploadRepository(dbPool)
	pointerRepo := postgres.NewPointerRepository(dbPool)

	// 7. Setup UseCases
	validate := validation.New()
	accountProfileUC := usecase.NewAccountProfileUsecase(userProfileRepo, developerRepo, companyRepo, validate)
	sessions := session.NewManager(accountProfileUC, 10*time.Second)
	sessions.SetIdleTimeout(time.Duration(cfg.SessionIdleMinutes) * time.Minute)
	defer sessions.Close()

	loginTracker := security.NewLoginTracker(redisClient, security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, secLog)
	authUC := usecase.NewAuthUsecase(authClient, sessions, loginTracker, secLog, validate)
	developerUC := usecase.NewDeveloperProfileUsecase(developerRepo, validate)
	companyUC := usecase.NewCompanyProfileUsecase(companyRepo, validate)
	directoryUC := usecase.NewDirectoryUsecase(developerRepo, companyRepo)
	uploadUC := usecase.NewUploadUsecase(
		storage,
		uploadRepo,
		pointerRepo,
		developerRepo,
		antivirus.New(cfg.ClamAVAddress),
		security.NewUploadLimiter(redisClient, cfg.UploadsPerMinute, cfg.UploadsPerDay),
		secLog,
		usecase.UploadConfig{
			CVBucket:    cfg.CVBucket,
			ImageBucket: cfg.ImageBucket,
			MaxBytes:    cfg.MaxUploadBytes,
			SignedTTL:   time.Duration(cfg.SignedURLTTLSeconds) * time.Second,
			Image:       imaging.Options{MaxDimension: cfg.ImageMaxDimension, Quality: cfg.ImageJPEGQuality},
		},
	)

	checks := map[string]usecase.Checker{
		"database": func(ctx context.Context) error { return dbPool.Ping(ctx) },
		"storage":  func(ctx context.Context) error { return storage.HealthCheck(ctx, cfg.CVBucket) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
	} else {
		checks["redis"] = nil
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 8. Setup Router
	router, err := web.NewRouter(web.RouterDeps{
		Config:     cfg,
		Auth:       authUC,
		Sessions:   sessions,
		Developers: developerUC,
		Companies:  companyUC,
		Directory:  directoryUC,
		Uploads:    uploadUC,
		Health:     healthUC,
		Verifier:   verifier,
		Redis:      redisClient,
		SecLog:     secLog,
	})
	if err != nil {
		logger.Log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
