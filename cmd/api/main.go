package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/propwatch/rentroll-risk/internal/application"
	appanalysis "github.com/propwatch/rentroll-risk/internal/application/analysis"
	appprofiles "github.com/propwatch/rentroll-risk/internal/application/profiles"
	apprecords "github.com/propwatch/rentroll-risk/internal/application/records"
	"github.com/propwatch/rentroll-risk/internal/config"
	profdomain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
	recdomain "github.com/propwatch/rentroll-risk/internal/domain/records"
	aiclient "github.com/propwatch/rentroll-risk/internal/infra/ai/openai"
	mysqldb "github.com/propwatch/rentroll-risk/internal/infra/db/mysql"
	pgdb "github.com/propwatch/rentroll-risk/internal/infra/db/postgres"
	"github.com/propwatch/rentroll-risk/internal/infra/httpserver"
	minioStore "github.com/propwatch/rentroll-risk/internal/infra/storage"
	"github.com/propwatch/rentroll-risk/internal/middleware"
)

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Fatal("openai api key is not configured")
	}

	ctx := context.Background()

	// connect database (postgres by default, mysql supported)
	var db *sql.DB
	var recordRepo recdomain.Repository
	var profileRepo profdomain.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		recordRepo = mysqldb.NewRecordRepository(db)
		profileRepo = mysqldb.NewProfileRepository(db)
	default:
		db, err = pgdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		recordRepo = pgdb.NewRecordRepository(db)
		profileRepo = pgdb.NewProfileRepository(db)
	}
	defer db.Close()

	// init minio archive
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init provider client
	ai := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.SearchModel)

	// init services
	analysisSvc := &appanalysis.Service{
		Gatherer: ai,
		Uploader: ai,
		Model:    ai,
		Records:  recordRepo,
		Archive:  store,
		Clock:    application.SystemClock{},
	}
	recordsSvc := apprecords.NewService(recordRepo)
	profilesSvc := appprofiles.NewService(profileRepo)

	// init router with the ambient middleware stack
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	capacity, refill := cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate
	if capacity <= 0 {
		capacity = 10
	}
	if refill <= 0 {
		refill = 1
	}
	mux.Use(middleware.RateLimitMiddleware(capacity, refill))

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  &middleware.PingHealthChecker{Target: store},
	}))
	mux.Mount("/", httpserver.NewRouter(analysisSvc, recordsSvc, profilesSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// No write timeout: an analysis holds the request open for as long
		// as the provider takes; cancellation comes from client disconnects.
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
