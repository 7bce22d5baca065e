// Command main is the entry point for the Inkpress API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpress/internal/ai"
	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/jobs"
	"inkpress/internal/mail"
	"inkpress/internal/media"
	"inkpress/internal/middleware"
	"inkpress/internal/observability"
	"inkpress/internal/repository"
	"inkpress/internal/server"

	"gorm.io/gorm"
)

// @title Inkpress API
// @version 1.0
// @description Blog and CMS API with posts, tags, likes, threaded comments, media and AI writing helpers
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@inkpress.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func fatal(msg string, err error) {
	middleware.Logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkpress-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		fatal("Failed to initialize tracing", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database", err)
	}

	// Without redis the API still serves: caching is skipped, rate limits fail
	// open and background jobs are dropped with a warning.
	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, running degraded", "error", err)
		rdb = nil
	}

	deps := server.Deps{Config: cfg, DB: db, Redis: rdb}

	var queue *jobs.Queue
	if rdb != nil {
		queue = jobs.NewQueue(rdb)
		deps.Queue = queue
	}

	if store := newMediaStore(cfg); store != nil {
		deps.Media = store
	}
	if gen := newGenerator(cfg); gen != nil {
		deps.Generator = gen
	}

	srv, err := server.NewServer(deps)
	if err != nil {
		fatal("Failed to create server", err)
	}
	app := srv.App()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if queue != nil {
		go func() {
			defer close(workerDone)
			startWorker(workerCtx, cfg, db, queue)
		}()
	} else {
		close(workerDone)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}

		stopWorker()
		select {
		case <-workerDone:
		case <-ctx.Done():
			middleware.Logger.Warn("Job worker did not stop in time")
		}

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server resource shutdown error", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracer shutdown error", "error", err)
		}
	}()

	middleware.Logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal("Server stopped", err)
	}
}

// newMediaStore returns nil when MinIO is not configured. The interface is
// only set from a non-nil store so the service sees a true nil.
func newMediaStore(cfg *config.Config) *media.MinioStore {
	if cfg.MinioEndpoint == "" {
		middleware.Logger.Info("Media store not configured, uploads disabled")
		return nil
	}
	store, err := media.NewMinioStore(media.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MediaPublicURL,
	})
	if err != nil {
		fatal("Invalid media store configuration", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		middleware.Logger.Warn("Media bucket check failed", "bucket", cfg.MinioBucket, "error", err)
	}
	return store
}

func newGenerator(cfg *config.Config) *ai.OpenAIGenerator {
	if cfg.OpenAIAPIKey == "" {
		middleware.Logger.Info("AI provider not configured, generation disabled")
		return nil
	}
	gen, err := ai.NewOpenAIGenerator(ai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: 60 * time.Second,
	})
	if err != nil {
		fatal("Invalid AI provider configuration", err)
	}
	return gen
}

func newMailSender(cfg *config.Config) mail.Sender {
	if cfg.SMTPHost == "" {
		middleware.Logger.Info("SMTP not configured, emails are logged only")
		return mail.LogSender{}
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		fatal("Invalid SMTP configuration", err)
	}
	return sender
}

// startWorker registers the email jobs, makes sure the weekly digest is
// scheduled and runs the worker until ctx ends.
func startWorker(ctx context.Context, cfg *config.Config, db *gorm.DB, queue *jobs.Queue) {
	worker := jobs.NewWorker(queue, cfg.JobsConcurrency, cfg.JobsPollInterval())
	emailJobs := jobs.NewEmailJobs(
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		newMailSender(cfg),
		cfg.ClientURL,
	)
	emailJobs.Register(worker)

	if added, err := queue.EnsureRecurring(ctx, jobs.DigestWeekly, nil, jobs.DigestInterval); err != nil {
		middleware.Logger.Warn("Failed to schedule weekly digest", "error", err)
	} else if added {
		middleware.Logger.Info("Scheduled weekly digest", "every", jobs.DigestInterval.String())
	}

	worker.Run(ctx)
}
