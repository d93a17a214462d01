package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vedicroots/vedicroots/backend/cms-services/handlers"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/audit"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/config"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/content"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/database"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/learners"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/oidc"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/sessions"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/tokens"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/users"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/logger"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/metrics"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v content_backend=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Content.Backend)

	r := gin.New()
	r.Use(corsMiddleware(cfg))
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so sessions, blacklist and the rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Prefer Redis-based sessions when available, Mongo otherwise
	var sessionsSvc *sessions.Service
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "cms:session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services: users, audit sink, optional session fallback
	var userSvc *users.Service
	var auditCol *mongo.Collection
	if cfg.MongoDB.URI != "" {
		// Retry/backoff to tolerate startup races against the database container
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoRepository(db.Collection("users")))
			auditCol = db.Collection("audit_events")
			if sessionsSvc == nil {
				sessionRepo := sessions.NewMongoRepository(db.Collection("sessions"))
				if err := sessionRepo.EnsureIndexes(ctx); err != nil {
					logger.Warnf("failed to create session indexes: %v", err)
				}
				sessionsSvc = sessions.NewService(sessionRepo)
			}
		}
	}

	// Content store over the configured repository
	contentRepo, err := buildContentRepository(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize content storage (%s): %v", cfg.Content.Backend, err)
	}
	contentStore := content.NewStore(contentRepo)

	// Verifier for protected routes: local HS256 tokens, or the SSO issuer
	// when one is configured
	var verifier middleware.Verifier = tokens.NewVerifier(cfg)
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		if ov, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID); err != nil {
			logger.Warnf("failed to initialize OIDC verifier, staying on local tokens: %v", err)
		} else {
			verifier = ov
			logger.Infof("Using OIDC verifier: %s", cfg.OIDC.Issuer)
		}
	}
	// Guard chain for protected routes. The mutation limiter sits behind
	// RequireAuth so it budgets per authenticated editor rather than per IP.
	guards := []gin.HandlerFunc{middleware.RequireAuth(verifier)}
	if cfg.RateLimit.Enabled {
		guards = append(guards, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	var learnersClient *learners.Client
	if cfg.Learners.BaseURL != "" {
		learnersClient = learners.NewClient(cfg.Learners.BaseURL, cfg.Learners.Timeout)
	}
	auditLog := audit.NewLogger(auditCol)

	handlers.NewContentHandler(contentStore).Register(r, guards...)
	if userSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc, auditLog, learnersClient).Register(r, guards...)
	} else {
		logger.Warnf("auth handlers not registered because user/session services are unavailable")
	}
	handlers.RegisterAPIDoc(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["content"] = contentStore != nil
		deps["auth"] = userSvc != nil && sessionsSvc != nil
		if !deps["auth"] {
			ready = false
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting cms-services on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

func buildContentRepository(cfg *config.Config) (content.Repository, error) {
	switch cfg.Content.Backend {
	case "mongo":
		client, err := database.ConnectMongo(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("content_documents")
		return content.NewMongoRepository(col), nil
	case "minio":
		return content.NewMinIORepository(&cfg.MinIO)
	default:
		return content.NewFileRepository(cfg.Content.DataDir)
	}
}

// corsMiddleware is intentionally permissive outside production; the frontend
// is served from a different origin during development.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	origin := "*"
	if cfg.IsProduction() {
		origin = os.Getenv("CORS_ALLOWED_ORIGIN")
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
