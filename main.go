package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/playerback_backend/config"
	"github.com/HSouheill/playerback_backend/controllers"
	"github.com/HSouheill/playerback_backend/metrics"
	"github.com/HSouheill/playerback_backend/middleware"
	"github.com/HSouheill/playerback_backend/repositories"
	"github.com/HSouheill/playerback_backend/routes"
	"github.com/HSouheill/playerback_backend/services"
	"github.com/HSouheill/playerback_backend/utils"
	"github.com/HSouheill/playerback_backend/websocket"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	client := config.ConnectDB(cfg)
	db := client.Database(cfg.DBName)

	// Token revocation: Redis when reachable, memory otherwise
	var blacklist middleware.TokenBlacklist
	if redisClient := config.ConnectRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		blacklist = middleware.NewRedisBlacklist(redisClient)
	} else {
		memory := middleware.NewMemoryBlacklist()
		go memory.Cleanup(ctx, 10*time.Minute)
		blacklist = memory
	}
	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTTTL, blacklist)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, cfg.QueryTimeout, cfg.ReadRetries)
	postRepo := repositories.NewPostRepository(db, cfg.QueryTimeout, cfg.ReadRetries)
	commentRepo := repositories.NewCommentRepository(db, cfg.QueryTimeout, cfg.ReadRetries)

	// Initialize services
	userService := services.NewUserService(userRepo, auth)
	postService := services.NewPostService(postRepo, commentRepo, userRepo, wsHub)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, wsHub)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Run(ctx)

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	if !cfg.IsDevelopment() {
		e.Use(middleware.SecurityHeaders())
	}
	e.Use(metrics.Middleware())
	e.Use(rateLimiter.RateLimit())

	routes.SetupRoutes(e, routes.Dependencies{
		Auth:     auth,
		Hub:      wsHub,
		Users:    controllers.NewUserController(userService, auth),
		Posts:    controllers.NewPostController(postService),
		Comments: controllers.NewCommentController(commentService),
		Health: controllers.NewHealthController(func() error {
			return config.PingDB(client, 5*time.Second)
		}),
	})

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
