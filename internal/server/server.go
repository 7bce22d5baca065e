// Package server contains the HTTP handlers, auth middleware and routes of the Inkpress API.
package server

import (
	"context"
	"errors"
	"time"

	_ "inkpress/docs" // swagger docs
	"inkpress/internal/ai"
	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/middleware"
	"inkpress/internal/repository"
	"inkpress/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultSlugNode = 1

// Deps are the collaborators a Server is built from. Queue, Media and
// Generator may be nil; the features behind them then report an upstream error.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Queue     service.JobSubmitter
	Media     service.MediaStore
	Generator ai.Generator
	// SlugSuffix overrides the snowflake-based slug disambiguator.
	SlugSuffix func() string
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *service.TokenManager
	userRepo       repository.UserRepository
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	mediaService   *service.MediaService
	aiService      *service.AIService
}

// NewServer wires repositories and services on top of already-initialized dependencies.
func NewServer(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.DB == nil {
		return nil, errors.New("server: config and database are required")
	}
	cfg := deps.Config

	suffix := deps.SlugSuffix
	if suffix == nil {
		var err error
		if suffix, err = service.NewSlugSuffixer(defaultSlugNode); err != nil {
			return nil, err
		}
	}

	userRepo := repository.NewUserRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)
	tagRepo := repository.NewTagRepository(deps.DB)
	commentRepo := repository.NewCommentRepository(deps.DB)

	tokens := service.NewTokenManager(cfg.JWTSecret)

	return &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics("inkpress-api"),
		tokens:         tokens,
		userRepo:       userRepo,
		userService:    service.NewUserService(userRepo, tokens, deps.Queue, cfg.AdminAccessToken),
		postService: service.NewPostService(postRepo, tagRepo, cache.NewStore(deps.Redis),
			deps.Queue, suffix, cfg.SlugMaxAttempts),
		commentService: service.NewCommentService(commentRepo, postRepo),
		mediaService:   service.NewMediaService(deps.Media, int64(cfg.MediaMaxUploadMB)<<20),
		aiService:      service.NewAIService(deps.Generator),
	}, nil
}

// App builds a fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Inkpress API",
		BodyLimit: (s.config.MediaMaxUploadMB + 1) << 20,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(middleware.TracingMiddleware())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public reads. Specific /posts/... paths come before /posts/:id.
	posts := api.Group("/posts")
	posts.Get("/", s.OptionalAuth(), s.ListPosts)
	posts.Get("/trending", s.TrendingPosts)
	posts.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchPosts)
	posts.Get("/tag/:tag", s.PostsByTag)
	posts.Get("/slug/:slug", s.OptionalAuth(), s.GetPostBySlug)
	posts.Get("/:id/comments", s.OptionalAuth(), s.ListPostComments)
	posts.Post("/:id/view", s.OptionalAuth(), s.IncrementView)
	posts.Get("/:id", s.OptionalAuth(), s.GetPost)

	api.Get("/tags", s.ListTags)

	authed := s.AuthRequired()
	admin := s.AdminRequired()

	posts.Post("/", authed, admin, s.CreatePost)
	posts.Post("/:id/like", authed, s.LikePost)
	posts.Delete("/:id/like", authed, s.UnlikePost)
	posts.Post("/:id/comments", authed,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id", authed, s.UpdatePost)
	posts.Delete("/:id", authed, s.DeletePost)

	users := api.Group("/users", authed)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", admin, s.ListUsers)
	users.Delete("/:id", s.DeleteUser)

	comments := api.Group("/comments", authed)
	comments.Get("/", admin, s.ListAllComments)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	mediaRoutes := api.Group("/media", authed)
	mediaRoutes.Post("/", middleware.RateLimit(s.redis, 20, time.Minute, "media_upload"), s.UploadMedia)
	mediaRoutes.Delete("/", admin, s.DeleteMedia)

	aiRoutes := api.Group("/ai", authed, middleware.RateLimit(s.redis, 10, time.Minute, "ai"))
	aiRoutes.Post("/ideas", s.GenerateIdeas)
	aiRoutes.Post("/reply", s.DraftReply)
	aiRoutes.Post("/summarize", s.Summarize)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the database pool and the redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := s.db.WithContext(ctx).DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
