package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"protopia/internal/config"
	"protopia/internal/db"
	"protopia/internal/embedding"
	apihttp "protopia/internal/http"
	"protopia/internal/repository"
	"protopia/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	questionRepo := repository.NewPgQuestionRepository(pool)
	responseRepo := repository.NewPgResponseRepository(pool)
	scoreRepo := repository.NewPgScoreRepository(pool)
	essayRepo := repository.NewPgEssayRepository(pool)
	vrQuestionRepo := repository.NewPgVRQuestionRepository(pool)
	vrSessionRepo := repository.NewPgVRSessionRepository(pool)
	progressRepo := repository.NewPgProgressRepository(pool)
	resultRepo := repository.NewPgResultRepository(pool)

	// Embedding model is selected once at startup; absence means the
	// authenticity signal runs in degraded mode with the neutral constant.
	var embedder embedding.Provider = embedding.Disabled{}
	if cfg.EmbeddingBaseURL != "" {
		embedder = embedding.NewLazy(func() embedding.Provider {
			return embedding.NewHTTPProvider(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
		})
	} else {
		logger.Info("embedding model not configured, authenticity signal degraded")
	}

	locks := service.NewMemoryStageLock()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process stage locks", zap.Error(err))
		} else {
			locks = service.NewRedisStageLock(redisClient, time.Duration(cfg.StageLockTTLSeconds)*time.Second)
		}
		cancel()
	}

	selector := service.NewQuestionSelector(questionRepo, logger)
	analyzer := service.NewEssayAnalyzer(embedder, logger)
	assessSvc := service.NewAssessmentService(
		questionRepo,
		responseRepo,
		scoreRepo,
		essayRepo,
		vrQuestionRepo,
		vrSessionRepo,
		progressRepo,
		resultRepo,
		selector,
		analyzer,
		locks,
		logger,
	)
	tokenSvc := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	assessHandler := apihttp.NewAssessmentHandler(logger, assessSvc)
	vrHandler := apihttp.NewVRHandler(logger, assessSvc)
	router := apihttp.NewRouter(logger, tokenSvc, assessHandler, vrHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
