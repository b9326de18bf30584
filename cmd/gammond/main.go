// Command gammond runs the gammon match server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/gammon/internal/config"
	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/internal/storage/memory"
	redisstore "github.com/yourusername/gammon/internal/storage/redis"
	"github.com/yourusername/gammon/pkg/api"
)

const version = "0.1.0"

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to YAML config file")
	host := flag.String("host", "", "Host to bind to, overriding the config file")
	port := flag.Int("port", 0, "Port to listen on, overriding the config file")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("gammond v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("gammond starting", zap.String("version", version))

	var store storage.Storage
	if cfg.Redis.Enabled {
		rs, err := redisstore.New(cfg.RedisStorageConfig())
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rs.Close()
		store = rs
		logger.Info("using redis storage", zap.String("url", cfg.Redis.URL))
	} else {
		store = memory.New()
		logger.Info("using in-memory storage")
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	serverConfig.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	serverConfig.ShutdownTimeout = time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second

	server := api.NewServer(store, logger, cfg.TimeControlSettings(), serverConfig, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
