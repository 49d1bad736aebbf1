package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fda-watch/config"
	"fda-watch/models"
	"fda-watch/notify"
	"fda-watch/scrapers"
	"fda-watch/services"
	"fda-watch/storage"
)

var newUpdatesCounter prometheus.Counter

func init() {
	newUpdatesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "new_updates_added_total",
			Help: "Total number of new FDA updates added to the database.",
		},
	)
	prometheus.MustRegister(newUpdatesCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection. Ohne Store ist der ganze Lauf sinnlos,
	// deshalb ist das der einzige fatale Fehlerpfad.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to updates database.")

	store := storage.NewUpdateStore(db, cfg.UpdatesTable)
	if err := store.Migrate(); err != nil {
		logging.Fatal("Database auto-migration failed", zap.Error(err))
	}

	// Setup Scrapers
	enabledSourceNames := strings.Split(cfg.EnabledSources, ",")
	var enabledScrapers []scrapers.Scraper
	for _, name := range enabledSourceNames {
		switch strings.TrimSpace(name) {
		case "withdrawals":
			enabledScrapers = append(enabledScrapers, scrapers.NewWithdrawals(cfg, logging))
		case "accelerated":
			enabledScrapers = append(enabledScrapers, scrapers.NewAccelerated(cfg, logging))
		case "approvals":
			enabledScrapers = append(enabledScrapers, scrapers.NewApprovals(cfg, logging))
		default:
			logging.Warn("Unknown source in config", zap.String("source_name", name))
		}
	}
	if len(enabledScrapers) == 0 {
		logging.Fatal("No valid sources enabled. Check ENABLED_SOURCES in .env")
	}
	logging.Info("Active sources loaded", zap.Strings("sources", enabledSourceNames))

	// Setup Notifier. Fehler hier degradieren nur den Mail-Versand.
	var notifier services.Notifier
	if cfg.NotifyRecipient != "" {
		sesNotifier, err := notify.NewSESNotifier(cfg, logging)
		if err != nil {
			logging.Error("SES client creation failed, notifications disabled", zap.Error(err))
		} else {
			notifier = sesNotifier
		}
	} else {
		logging.Info("No notification recipient configured, notifications disabled")
	}

	ingestService := services.NewIngestService(cfg, store, logging, enabledScrapers, notifier)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "fda-watch"})
	})

	setupUpdateRoutes(router, store, logging)
	setupScrapeRoutes(router, ingestService)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled scrape job...")
		count := ingestService.RunAll(context.Background())
		logging.Info("Cron job completed", zap.Int("new_updates", count))
		newUpdatesCounter.Add(float64(count))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupUpdateRoutes(router *gin.Engine, store *storage.UpdateStore, log *zap.Logger) {
	rg := router.Group("/updates")

	// Einfacher GET-Endpunkt für die zuletzt gespeicherten Updates
	rg.GET("/", func(c *gin.Context) {
		updates, err := store.FindRecent("", 0)
		if err != nil {
			log.Error("Database query for updates failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, updates)
	})

	// Body-gesteuerter Endpunkt für gefilterte Abfragen
	rg.POST("/query", func(c *gin.Context) {
		type UpdateQuery struct {
			DataSource string `json:"data_source"`
			Limit      int    `json:"limit"`
		}

		var req UpdateQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if req.DataSource != "" {
			switch req.DataSource {
			case models.SourceWithdrawals, models.SourceAccelerated, models.SourceApprovals:
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown data_source"})
				return
			}
		}

		updates, err := store.FindRecent(req.DataSource, req.Limit)
		if err != nil {
			log.Error("Database query for updates failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, updates)
	})
}

func setupScrapeRoutes(router *gin.Engine, ingestService *services.IngestService) {
	rg := router.Group("/scrape")
	rg.POST("/run", func(c *gin.Context) {
		go func() {
			count := ingestService.RunAll(context.Background())
			newUpdatesCounter.Add(float64(count))
			ingestService.Logger.Info("Async scrape completed", zap.Int("new_updates", count))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Scrape for all sources triggered."})
	})
}
