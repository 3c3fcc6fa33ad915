package api

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/meetingcopilot/api/internal/ai"
	"github.com/meetingcopilot/api/internal/blob"
	"github.com/meetingcopilot/api/internal/mail"
	"github.com/meetingcopilot/api/internal/observability"
	"github.com/meetingcopilot/api/internal/stores/live"
	"github.com/meetingcopilot/api/internal/stores/meetings"
	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/meeting"
	"github.com/meetingcopilot/api/pkg/utils"

	admin_module "github.com/meetingcopilot/api/internal/api/modules/admin"
	auth_module "github.com/meetingcopilot/api/internal/api/modules/auth"
	health_module "github.com/meetingcopilot/api/internal/api/modules/health"
	meeting_module "github.com/meetingcopilot/api/internal/api/modules/meeting"
)

const liveGaugeInterval = 30 * time.Second

func Start(cfg *utils.Config) {
	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	// Durable stores
	meetingStore, err := meetings.NewMySqlStore(cfg.Get("DATABASE_URL"))
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize meeting store: ", err)
	}
	userStore, err := users.NewMySqlStore(cfg.Get("DATABASE_URL"))
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize user store: ", err)
	}

	// Live store: Redis when configured (shared across instances),
	// otherwise in-memory with a janitor keeping it bounded
	metrics := observability.DefaultMetrics()
	liveStore := newLiveStore(cfg, metrics)

	// External collaborators
	blobClient := blob.NewClient(
		cfg.GetWithDefault("BLOB_API_URL", "https://blob.vercel-storage.com"),
		cfg.Get("BLOB_READ_WRITE_TOKEN"),
	)
	mailClient := mail.NewClient(
		cfg.GetWithDefault("MAIL_API_URL", "https://api.resend.com"),
		cfg.Get("MAIL_API_KEY"),
		cfg.GetWithDefault("MAIL_FROM", "Meeting Copilot <no-reply@meetingcopilot.dev>"),
	)
	aiService := ai.NewOpenAIService(cfg.Get("OPENAI_API_KEY"), cfg.Get("OPENAI_MODEL"))

	// Add app level settings/routes
	engine := gin.Default()

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	// Adding custom modules
	health_module.RegisterRoutes(baseGroup)

	if err := auth_module.Init(cfg, userStore, mailClient); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize auth module: ", err)
	}
	auth_module.RegisterRoutes(baseGroup)

	if err := meeting_module.Init(meetingStore, liveStore, blobClient, aiService, metrics); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize meeting module: ", err)
	}
	meeting_module.RegisterRoutes(baseGroup)

	if err := admin_module.Init(cfg, userStore, meetingStore); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize admin module: ", err)
	}
	admin_module.RegisterRoutes(baseGroup)

	// Prometheus scrape endpoint
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Then after performing initial setup, start the server
	if err := engine.Run(":" + port); err != nil {
		log.Fatal("[API-MAIN]: Failed to start server: ", err)
	}
}

// newLiveStore selects the live meeting store backend and starts its
// supporting goroutines
func newLiveStore(cfg *utils.Config, metrics *observability.Metrics) meeting.LiveStore {
	if redisURL := cfg.Get("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("[API-MAIN]: Invalid REDIS_URL: ", err)
		}

		ttl := time.Duration(cfg.GetIntWithDefault("LIVE_TTL_MINUTES", 24*60)) * time.Minute
		log.Printf("[API-MAIN]: Live meeting state backed by Redis (ttl %s)", ttl)
		return live.NewRedisStore(redis.NewClient(opts), ttl)
	}

	store := live.NewInMemoryStore()

	if cfg.GetBoolWithDefault("LIVE_JANITOR", true) {
		janitor := live.NewJanitor(store, live.DefaultJanitorOptions())
		if err := janitor.Start(); err != nil {
			log.Fatal("[API-MAIN]: Failed to start live store janitor: ", err)
		}
	}

	// Keep the live-meetings gauge current
	go func() {
		ticker := time.NewTicker(liveGaugeInterval)
		defer ticker.Stop()
		for range ticker.C {
			metrics.LiveMeetings.Set(float64(store.Len()))
		}
	}()

	return store
}
