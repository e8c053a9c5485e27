// Package server contains the HTTP handlers for the rumor plaza API.
package server

import (
	"context"
	"time"

	"rumorplaza/internal/config"
	"rumorplaza/internal/middleware"
	"rumorplaza/internal/models"
	"rumorplaza/internal/repository"
	"rumorplaza/internal/service"
	"rumorplaza/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

const mediaCacheMaxAge = 31536000

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
	imageService   *service.ImageService
}

// NewServerWithDeps creates a Server over an already-selected store and
// object store. redisClient may be nil, in which case route rate limits
// fail open.
func NewServerWithDeps(cfg *config.Config, store repository.Store, objects storage.ObjectStore, redisClient *redis.Client) *Server {
	imageService := service.NewImageService(objects, cfg)
	return &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("rumorplaza-api"),
		postService:    service.NewPostService(store, imageService),
		commentService: service.NewCommentService(store),
		likeService:    service.NewLikeService(store),
		imageService:   imageService,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Anonymous client identity for likes and rate limits
	app.Use(middleware.ClientID())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate request id and client id
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Images are embedded by the web client from another origin.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		ExposeHeaders: middleware.ClientIDHeader,
		MaxAge:        86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded images on the disk store
	if s.config.ImageStore == config.ImageStoreDisk && s.config.ImageUploadDir != "" {
		app.Static("/media", s.config.ImageUploadDir, fiber.Static{
			MaxAge: mediaCacheMaxAge,
		})
	}

	api.Get("/categories", s.GetCategories)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	// Define specific routes BEFORE generic /:id route
	posts.Get("/popular", s.GetPopularPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", middleware.RateLimit(
		s.redis, 30, time.Minute, "toggle_like"), s.ToggleLike)
	posts.Post("/:id/verify", middleware.RateLimit(
		s.redis, 10, time.Minute, "verify_password"), s.VerifyPassword)
	// Generic /:id routes (for item detail, update, delete)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	images := api.Group("/images")
	images.Post("/", middleware.RateLimit(
		s.redis, 20, 5*time.Minute, "upload_images"), s.UploadImages)
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Rumor Plaza API",
		BodyLimit: (service.MaxUploadFiles*s.maxUploadMB() + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) maxUploadMB() int {
	if s.config.ImageMaxUploadSizeMB > 0 {
		return s.config.ImageMaxUploadSizeMB
	}
	return service.DefaultImageMaxUploadSizeMB
}

// LivenessCheck handles GET /health/live
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles GET /health/ready
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.postService.Ready(ctx); err != nil {
		storeStatus = "unhealthy"
		middleware.Logger.WarnContext(ctx, "store readiness check failed", "error", err)
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "up"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "down"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"store":  s.postService.StoreName(),
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port, "store", s.postService.StoreName())
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
