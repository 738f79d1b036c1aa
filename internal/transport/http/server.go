package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/config"
	"prompthub/internal/database"
	"prompthub/internal/handler"
	appredis "prompthub/internal/redis"
	"prompthub/internal/repository"
	"prompthub/internal/service"
)

// Run wires the application together and serves HTTP until the listener
// fails. Redis and object storage are optional: without Redis the popular
// listing is served from Postgres, and without storage configuration the
// avatar endpoints report an internal error while everything else works.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	var trending cache.TrendingCache
	if cfg.RedisURL != "" {
		redisClient, err := appredis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("[Server] Redis unavailable, trending cache disabled: %v", err)
		} else if err := redisClient.Ping(ctx); err != nil {
			log.Printf("[Server] Redis unreachable, trending cache disabled: %v", err)
		} else {
			defer redisClient.Close()
			trending = cache.NewTrendingCache(redisClient.Client)
		}
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	postService := service.NewPostService(postRepo, trending)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo)
	promptService := service.NewPromptService(promptRepo)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		log.Printf("[Server] Object storage unavailable, avatar endpoints disabled: %v", err)
		mediaService = nil
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authService.CleanupExpiredTokens(ctx)
		}
	}()

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService, postService, mediaService, cfg.AvatarURLPrefixes),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		PromptHandler:  handler.NewPromptHandler(promptService),
		MediaHandler:   handler.NewMediaHandler(mediaService),
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("[Server] listening on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
