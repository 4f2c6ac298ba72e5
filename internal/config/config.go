// Package config provides application configuration management.
package config

import (
	"net"
	"os"
	"strconv"
)

// Config holds all server configuration.
type Config struct {
	// HTTP listen address for WebSocket, static files and metrics.
	ListenAddr string

	// Redis configuration. An empty RedisHost selects the in-memory
	// broker instead.
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Pub/sub channel carrying chat events and the set holding the
	// online roster.
	EventsChannel string
	PresenceKey   string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8888"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		EventsChannel: getEnv("EVENTS_CHANNEL", "chat_channel"),
		PresenceKey:   getEnv("PRESENCE_KEY", "online_clients"),
	}
}

// RedisAddr returns host:port for the Redis server, or an empty string
// when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
