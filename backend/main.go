package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"factbook-dashboard/backend/handlers"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openDatabase(cfg system.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	default:
		db, err := gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		// WAL mode keeps the monitor writes from blocking API reads
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			system.Warn("Failed to enable WAL mode: %v", err)
		} else {
			system.Info("SQLite WAL mode enabled")
		}
		return db, nil
	}
}

func main() {
	mergeOnly := flag.Bool("merge", false, "rebuild the merged time series and exit")
	flag.Parse()

	// 0. Load configuration and initialize logger
	cfg, err := system.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := system.InitLogger(cfg.LogDir, system.ParseLevel(cfg.LogLevel)); err != nil {
		log.Printf("Warning: Could not initialize file logger: %v", err)
	}
	defer system.Close()

	dataset := services.NewDataset(cfg.DataDir)

	if *mergeOnly {
		res, err := dataset.Merge()
		if err != nil {
			system.Error("Merge failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Merged %d editions %v into %s\n", len(res.Years), res.Years, filepath.Join(cfg.DataDir, "_merged"))
		return
	}

	system.Info("Factbook dashboard backend starting...")

	// 1. Setup Database
	db, err := openDatabase(cfg)
	if err != nil {
		system.Error("Failed to connect to database: %v", err)
		log.Fatal("Failed to connect to database:", err)
	}
	system.Info("Database connected (%s)", cfg.DBDriver)

	// CRITICAL: Ensure schema is up to date. Exit if migration fails.
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.DashboardSettings{},
		&models.CountryGroup{},
		&models.AlertEvent{},
		&models.MonitorRun{},
	); err != nil {
		system.Error("Database migration failed: %v", err)
		log.Fatalf("CRITICAL: Database migration failed. Application cannot start: %v", err)
	}
	system.Info("Database migration completed successfully")

	// Seed built-in comparison groups if empty
	var groupCount int64
	db.Model(&models.CountryGroup{}).Count(&groupCount)
	if groupCount == 0 {
		for _, group := range models.SeedDefaultGroups() {
			if err := db.Create(&group).Error; err != nil {
				system.Warn("Failed to seed group %s: %v", group.Name, err)
			}
		}
		system.Info("Seeded %d default country groups", len(models.SeedDefaultGroups()))
	}

	settings, err := services.EnsureSettings(db)
	if err != nil {
		system.Warn("Failed to create default settings: %v", err)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		system.Warn("FACTBOOK_JWT_SECRET not set; tokens will not survive a restart")
	}

	// 2. Setup Services
	metrics := services.NewMetrics()
	dataset.SetMetrics(metrics)
	if years := dataset.Years(); len(years) == 0 {
		system.Warn("No editions found in %s", cfg.DataDir)
	} else {
		system.Info("Editions available: %v", years)
	}
	if cfg.Watch {
		if err := dataset.Watch(); err != nil {
			system.Warn("Data watcher disabled: %v", err)
		}
	}

	publisher := services.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if len(cfg.KafkaBrokers) > 0 {
		system.Info("Publishing anomaly events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	// Initialize Webhook Service
	webhookService := services.NewWebhookService()
	if settings.DiscordWebhookURL != "" {
		webhookService.SetWebhookURL(settings.DiscordWebhookURL)
		system.Info("Discord webhook configured")
	}

	geoipService, err := services.NewGeoIPService(cfg.GeoIPDB)
	if err != nil {
		system.Warn("GeoIP disabled: %v", err)
	}

	// Initialize Alert Monitor
	monitor := services.NewAlertMonitor(db, dataset, webhookService, cfg.DefaultYear)
	monitor.SetPublisher(publisher)
	monitor.SetMetrics(metrics)
	monitor.SetInterval(cfg.MonitorInterval)
	monitor.Start()

	// Initialize Daily Alert Reporter
	dailyReporter := services.NewDailyReporter(db, webhookService)
	dailyReporter.Start()

	// 3. Setup Handlers
	h := handlers.NewHandler(db, dataset, webhookService, monitor, cfg)
	h.GeoIP = geoipService
	h.Metrics = metrics

	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
	})

	// Add request logging middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stdout,
	}))

	app.Use(cors.New())
	app.Use(handlers.RequestMetrics(metrics))

	handlers.SetupRoutes(app, h)

	// 4. Serve Static Files (Frontend)
	app.Static("/", cfg.FrontendDir, fiber.Static{
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600,
	})

	// 5. SPA Fallback: Serve index.html for all other routes
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.FrontendDir, "index.html"))
	})

	system.Info("Server starting on %s (default edition %d)", cfg.Listen, cfg.DefaultYear)
	handlers.AddEvent("success", "Factbook dashboard backend started")

	// Send Startup Alert
	go func() {
		// Wait a bit for server to be fully up
		time.Sleep(2 * time.Second)
		if webhookService.IsEnabled() {
			msg := fmt.Sprintf("Factbook dashboard is now running on **%s** (%s)\nDefault edition: `%d`",
				cfg.Listen, time.Now().Format("2006-01-02 15:04:05"), cfg.DefaultYear)
			webhookService.SendSystemAlert("🚀 Server Started", msg, services.ColorGreen)
		}
	}()

	// Graceful Shutdown Handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c // Wait for signal
		system.Info("Gracefully shutting down...")

		monitor.Stop()
		dailyReporter.Stop()

		// Send Shutdown Alert
		if webhookService.IsEnabled() {
			webhookService.SendSystemAlert("🛑 Server Stopping", "Factbook dashboard is shutting down...", services.ColorOrange)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(ctx)
	}()

	if err := app.Listen(cfg.Listen); err != nil {
		log.Fatal(err)
	}

	if err := dataset.Close(); err != nil {
		system.Warn("Failed to stop data watcher: %v", err)
	}
	if err := publisher.Close(); err != nil {
		system.Warn("Failed to close publisher: %v", err)
	}
	if err := geoipService.Close(); err != nil {
		system.Warn("Failed to close GeoIP database: %v", err)
	}
}
