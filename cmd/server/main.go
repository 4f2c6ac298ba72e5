package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/broker"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/chat"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/config"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/server"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.ListenAddr, "HTTP listen address (WebSocket, static client and metrics)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		brk      chat.Broker
		presence chat.Presence
	)
	if redisAddr := cfg.RedisAddr(); redisAddr != "" {
		r, err := broker.NewRedis(broker.Config{
			Addr:        redisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			Channel:     cfg.EventsChannel,
			PresenceKey: cfg.PresenceKey,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", redisAddr, err)
		}
		defer r.Close()
		brk, presence = r, r
		logger.Info("using redis broker", "addr", redisAddr, "channel", cfg.EventsChannel)
	} else {
		m := broker.NewMemory()
		brk, presence = m, m
		logger.Warn("REDIS_HOST not set, using in-memory broker (single instance only)")
	}

	srv := server.New(*addr, brk, presence, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		srv.Stop()
	}

	logger.Info("server stopped")
}
