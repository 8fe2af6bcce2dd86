package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camp_photos/internal/api"
	"camp_photos/internal/app/service"
	"camp_photos/internal/common/security"
	"camp_photos/internal/domain/repository"
	"camp_photos/internal/platform/cache"
	"camp_photos/internal/platform/config"
	"camp_photos/internal/platform/database"
	"camp_photos/internal/platform/storage"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("Schema bootstrap failed: %v", err)
	}
	log.Println("Database connected.")

	var galleryCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer redisCache.Close()
		galleryCache = redisCache
		log.Println("Redis connected.")
	} else {
		log.Println("REDIS_ADDR not set, gallery cache disabled.")
	}

	tokenCodec := security.NewTokenCodec(cfg.JWTKey, cfg.JWTExp)
	localStorage := storage.NewLocal(cfg.UploadDir, cfg.BaseURL)

	userRepo := repository.NewPgUserRepository(db)
	challengeRepo := repository.NewPgChallengeRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, tokenCodec)
	challengeService := service.NewChallengeService(challengeRepo, submissionRepo, localStorage, galleryCache)
	submissionService := service.NewSubmissionService(submissionRepo, challengeRepo, localStorage, galleryCache, cfg.GalleryCacheTTL)

	if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Admin seeding failed: %v", err)
	}

	router := api.NewRouter(api.RouterDeps{
		TokenCodec:        tokenCodec,
		UserRepo:          userRepo,
		AuthService:       authService,
		ChallengeService:  challengeService,
		SubmissionService: submissionService,
		UploadsDir:        cfg.UploadDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully.")
}
