// Sentra - IoT device backend
//
// This is the main entry point for the Sentra server. Sentra provides
// account registration and login with progressive lockout, stateless
// session tokens, and ownership-scoped access to devices and their
// sensor readings. Readings arrive over the REST API or, optionally,
// over MQTT, and can be mirrored to InfluxDB for dashboards.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/avollmer/sentra/migrations"

	"github.com/avollmer/sentra/internal/api"
	"github.com/avollmer/sentra/internal/auth"
	"github.com/avollmer/sentra/internal/device"
	"github.com/avollmer/sentra/internal/infrastructure/config"
	"github.com/avollmer/sentra/internal/infrastructure/database"
	"github.com/avollmer/sentra/internal/infrastructure/influxdb"
	"github.com/avollmer/sentra/internal/infrastructure/logging"
	"github.com/avollmer/sentra/internal/infrastructure/mqtt"
	"github.com/avollmer/sentra/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Sentra",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	accounts := auth.NewAccountRepository(db.DB)
	devices := device.NewRepository(db.DB)
	readings := sensor.NewRepository(db.DB)

	// Auth services
	tokens := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.TokenTTL())
	hasher := auth.NewHasher(cfg.Security.Lockout.BcryptCost)
	authService := auth.NewService(accounts, hasher, tokens, log)
	guard := auth.NewGuard(tokens, devices)

	// Connect to InfluxDB (optional readings mirror)
	var mirror sensor.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		startHealthMetrics(ctx, influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	recorder := sensor.NewRecorder(readings, mirror, log)

	// Connect to MQTT and start the reading ingestor (optional)
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		ingestor := sensor.NewIngestor(recorder, devices, byte(cfg.MQTT.QoS), log)
		if startErr := ingestor.Start(mqttClient); startErr != nil {
			return fmt.Errorf("starting reading ingestor: %w", startErr)
		}
		log.Info("MQTT reading ingestor started")
	} else {
		log.Info("MQTT disabled")
	}

	// Start the HTTP API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		TokenTTL:  cfg.TokenTTL(),
		Logger:    log,
		Auth:      authService,
		Guard:     guard,
		Devices:   devices,
		Readings:  readings,
		Recorder:  recorder,
		Generator: sensor.NewGenerator(0),
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (graceful drain)
	// 2. MQTT (if enabled)
	// 3. InfluxDB (if enabled, flushes pending writes)
	// 4. Database

	log.Info("Sentra stopped")
	return nil
}

// healthMetricsInterval is how often the uptime point is written.
const healthMetricsInterval = time.Minute

// startHealthMetrics periodically records an uptime point so dashboards
// can tell the server is alive even when no readings are flowing.
func startHealthMetrics(ctx context.Context, client *influxdb.Client) {
	start := time.Now()

	go func() {
		ticker := time.NewTicker(healthMetricsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				client.WritePoint("system_health",
					map[string]string{"component": "core"},
					map[string]interface{}{"uptime_seconds": time.Since(start).Seconds()},
				)
			}
		}
	}()
}

// getConfigPath returns the configuration file path.
// Uses SENTRA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENTRA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
