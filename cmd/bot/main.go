// Command bot plays one seat of a Hexlands game over the network.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hexlands/internal/client"
	"hexlands/internal/config"
	"hexlands/internal/logging"
	"hexlands/internal/protocol"
)

func main() {
	configPath := flag.String("config", "", "Config file (default: configs/server.yml, searched upward)")
	serverAddr := flag.String("server", "", "Server address, overrides bot.server")
	gameID := flag.String("game", "", "Game to join, overrides bot.game_id")
	seat := flag.Int("seat", -2, "Seat to take, -1 for any, overrides bot.seat")
	name := flag.String("name", "", "Display name, overrides bot.name")
	host := flag.Int("host", 0, "Host a new game with this many server bots instead of joining")
	flag.Parse()

	boot, _ := logging.New("bot", logging.Options{}, nil)
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}

	log, _ := logging.New("bot", logging.Options{Level: cfg.Log.Level, Dev: cfg.Log.Dev}, nil)
	defer log.Sync()

	rc := client.RunnerConfig{
		Server:     cfg.Bot.Server,
		Token:      cfg.Bot.Token,
		Name:       cfg.Bot.Name,
		GameID:     cfg.Bot.GameID,
		Seat:       cfg.Bot.Seat,
		ThinkDelay: cfg.Bot.ThinkDelay,
	}
	if *serverAddr != "" {
		rc.Server = *serverAddr
	}
	if *gameID != "" {
		rc.GameID = *gameID
	}
	if *seat >= -1 {
		rc.Seat = *seat
	}
	if *name != "" {
		rc.Name = *name
	}
	if *host > 0 {
		rc.Create = &protocol.CreateGamePayload{
			Name:          rc.Name + "'s game",
			Bots:          *host,
			VictoryPoints: cfg.Game.VictoryPoints,
			FairDice:      cfg.Game.FairDice,
			Seed:          cfg.Game.Seed,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := client.NewRunner(rc, log)
	log.Info("bot starting", zap.String("server", rc.Server), zap.String("name", rc.Name))
	err = r.Run(ctx)

	joined, seatNo := r.Seat()
	fields := []zap.Field{zap.String("game", joined), zap.Int("seat", seatNo), zap.String("token", r.Token())}
	switch {
	case err == nil:
		log.Info("bot finished", fields...)
	case errors.Is(err, context.Canceled):
		log.Info("bot interrupted", fields...)
	default:
		log.Error("bot stopped", append(fields, zap.Error(err))...)
		os.Exit(1)
	}
}
