package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Bizimana-jeanluc/moviesBox/api"
	"github.com/Bizimana-jeanluc/moviesBox/config"
	"github.com/Bizimana-jeanluc/moviesBox/handlers"
	"github.com/Bizimana-jeanluc/moviesBox/models"
	"github.com/Bizimana-jeanluc/moviesBox/services/availability"
	"github.com/Bizimana-jeanluc/moviesBox/services/metadata"
	"github.com/Bizimana-jeanluc/moviesBox/services/transfer"
	"github.com/Bizimana-jeanluc/moviesBox/utils"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configFlag := flag.String("config", "", "path to settings.json (default $MOVIESBOX_CONFIG or cache/settings.json)")
	flag.Parse()

	fmt.Println("🎬 MoviesBox Starting...")

	// Init config manager and load settings (creates defaults if missing)
	configPath := config.ResolvePath(*configFlag)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	config.ApplyEnv(&settings, os.Getenv)
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("invalid settings in %s: %v", configPath, err)
	}

	logger := setupLogging(settings.Log)

	table, err := loadAvailability(settings)
	if err != nil {
		log.Fatalf("failed to load availability table: %v", err)
	}
	log.Printf("[availability] %d titles available for %s", table.Len(), settings.Metadata.Provider)

	provider := newProvider(settings.Metadata)
	if strings.TrimSpace(settings.Metadata.APIKey) == "" {
		log.Printf("warning: no %s API key configured; listings will fall back until one is set", provider.Name())
	}

	metadataService := metadata.NewService(provider, table, metadata.Options{
		TTL: metadata.TTLPolicy{
			Trending: settings.Cache.TrendingTTL(),
			Search:   settings.Cache.SearchTTL(),
			Details:  settings.Cache.DetailsTTL(),
		},
		MaxEntries:    settings.Cache.MaxEntries,
		SingleFlight:  settings.Cache.SingleFlight,
		TrendingSeeds: settings.Metadata.TrendingSeeds,
		Fallback:      fallbackListing(settings.Metadata),
		HydrateSearch: settings.Metadata.HydrateSearch,
	})
	transferService := transfer.NewService(table, transfer.Options{
		Timeout: time.Duration(settings.Transfer.ProxyTimeoutSeconds) * time.Second,
	})

	// Construct router
	r := utils.NewRouter()
	api.Register(r, logger,
		handlers.NewPagesHandler(metadataService),
		handlers.NewMetadataHandler(metadataService),
		handlers.NewTransferHandler(transferService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s (provider=%s)\n", addr, provider.Name())

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for proxied downloads
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// setupLogging tees the standard logger to a rotated file and returns the
// structured logger used for access lines.
func setupLogging(cfg config.LogConfig) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			out = io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(out)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", cfg.File)
		}
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func newProvider(cfg config.MetadataSettings) metadata.Provider {
	opts := metadata.ClientOptions{
		Timeout:     cfg.RequestTimeout(),
		MaxAttempts: cfg.MaxAttempts,
	}
	if cfg.Provider == config.MetadataProviderOMDb {
		return metadata.NewOMDbClient(cfg.APIKey, cfg.BaseURL, opts)
	}
	return metadata.NewTMDBClient(cfg.APIKey, cfg.BaseURL, cfg.ImageBaseURL, cfg.Language, opts)
}

// loadAvailability reads the configured table file, or the built-in catalog
// of the selected provider when none is set.
func loadAvailability(settings config.Settings) (*availability.Table, error) {
	if path := strings.TrimSpace(settings.Availability.File); path != "" {
		return availability.Load(afero.NewOsFs(), path)
	}
	return availability.New(availability.Defaults(string(settings.Metadata.Provider)))
}

func fallbackListing(cfg config.MetadataSettings) []models.MetadataRecord {
	switch cfg.Fallback {
	case config.FallbackSample:
		return metadata.SampleTrending()
	case config.FallbackEmpty:
		return nil
	}
	if cfg.Provider == config.MetadataProviderOMDb {
		return metadata.SampleTrending()
	}
	return nil
}
