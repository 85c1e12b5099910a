package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hexlands/internal/config"
	"hexlands/internal/game"
	"hexlands/internal/logging"
	"hexlands/internal/server"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Config file (default: configs/server.yml, searched upward)")
	port := flag.String("port", "", "Server port, overrides server.addr")
	dbPath := flag.String("db", "", "Database path, overrides database.path")
	flag.Parse()

	boot, _ := logging.New("server", logging.Options{}, nil)
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	cfg := loader.Config()

	log, level := logging.New("server", logOptions(cfg.Log), nil)
	defer log.Sync()

	// PORT and DB_PATH are what hosting platforms set.
	addr := cfg.Server.Addr
	if envPort := os.Getenv("PORT"); envPort != "" {
		addr = ":" + envPort
		log.Info("using PORT from environment", zap.String("port", envPort))
	}
	if *port != "" {
		addr = ":" + *port
	}
	db := cfg.Database.Path
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		db = envDB
		log.Info("using DB_PATH from environment", zap.String("path", envDB))
	}
	if *dbPath != "" {
		db = *dbPath
	}

	srv, err := server.New(server.Config{
		Addr:    addr,
		DBPath:  db,
		Version: version,
		Game: server.GameDefaults{
			Bots: cfg.Game.Bots,
			Settings: game.Settings{
				VictoryPoints: cfg.Game.VictoryPoints,
				DiscardLimit:  cfg.Game.DiscardLimit,
				FairDice:      cfg.Game.FairDice,
				Seed:          cfg.Game.Seed,
			},
		},
	}, log)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	// Only the log level is applied on reload; everything else needs a restart.
	loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		if next.Log.Level != level.Level() {
			level.SetLevel(next.Log.Level)
			log.Info("log level changed", zap.Stringer("level", next.Log.Level))
		}
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server error", zap.Error(err))
			done <- syscall.SIGTERM
		}
	}()

	log.Info("hexlands server running",
		zap.String("version", version),
		zap.String("config", loader.Path()))

	<-done
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}

func logOptions(c config.LogConfig) logging.Options {
	return logging.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
		Dev:        c.Dev,
	}
}
