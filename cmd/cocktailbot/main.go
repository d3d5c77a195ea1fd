// Cocktailbot Core - Drink Preparation Engine
//
// This is the main entry point for the Cocktailbot Core application.
// It drives a pump-based cocktail machine: recipes are scaled to the
// requested glass size, checked against tracked bottle levels, and
// dispensed through GPIO-driven peristaltic pumps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/SaschaWenning/cocktailbot-core/migrations"

	"github.com/SaschaWenning/cocktailbot-core/internal/actuator"
	"github.com/SaschaWenning/cocktailbot-core/internal/api"
	"github.com/SaschaWenning/cocktailbot-core/internal/engine"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/config"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/database"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/influxdb"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/logging"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/mqtt"
	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
	"github.com/SaschaWenning/cocktailbot-core/internal/inventory"
	"github.com/SaschaWenning/cocktailbot-core/internal/pump"
	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // wiring: every component is constructed and torn down here
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Cocktailbot Core",
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
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
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

	// Stores
	ingredientRepo := ingredient.NewSQLiteRepository(db.DB)
	recipeRepo := recipe.NewSQLiteRepository(db.DB)

	pumpRegistry := pump.NewRegistry(pump.NewSQLiteRepository(db.DB))
	pumpRegistry.SetLogger(log)
	if refreshErr := pumpRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading pump registry: %w", refreshErr)
	}
	log.Info("pump registry initialised", "pumps", pumpRegistry.Count())

	ledger := inventory.NewLedger(inventory.NewSQLiteRepository(db.DB), ingredientRepo)
	ledger.SetLogger(log)
	if refreshErr := ledger.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading inventory ledger: %w", refreshErr)
	}
	log.Info("inventory ledger initialised")

	// Actuator backend: real GPIO script or in-process simulator
	var driver actuator.Driver
	if cfg.Machine.GPIO.Simulate {
		sim := actuator.NewSimulator()
		sim.SetLogger(log)
		driver = sim
		log.Info("actuator backend: simulator")
	} else {
		gpio := actuator.NewGPIO(actuator.GPIOConfig{
			Interpreter:  cfg.Machine.GPIO.Interpreter,
			ScriptPath:   cfg.Machine.GPIO.ScriptPath,
			GraceTimeout: cfg.GraceTimeout(),
		})
		gpio.SetLogger(log)
		driver = gpio
		log.Info("actuator backend: gpio", "script", cfg.Machine.GPIO.ScriptPath)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Preparation engine
	eng := engine.NewEngine(recipeRepo, pumpRegistry, ledger,
		driver, engine.NewSQLiteRepository(db.DB),
		engine.Config{
			SettleDelay:  cfg.SettleDelay(),
			ShotVolumeML: cfg.Machine.ShotVolumeML,
		})
	eng.SetLogger(log)
	if mqttClient != nil {
		eng.SetNotifier(mqttClient)
	}
	if influxClient != nil {
		eng.SetStats(influxClient)
	}

	// API server; the engine broadcasts through the server's hub
	apiServer, err := api.New(api.Deps{
		Config:         cfg.API,
		WS:             cfg.WebSocket,
		Logger:         log,
		Engine:         eng,
		RecipeRepo:     recipeRepo,
		PumpRegistry:   pumpRegistry,
		Ledger:         ledger,
		IngredientRepo: ingredientRepo,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	eng.SetHub(apiServer.Hub())

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Cocktailbot Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses COCKTAILBOT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("COCKTAILBOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
