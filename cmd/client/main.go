package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/client"
)

func main() {
	serverAddr := flag.String("server", "ws://localhost:8888/websocket", "WebSocket server address")
	username := flag.String("username", "", "Username for chat (server assigns a guest name when empty)")
	flag.Parse()

	addr := *serverAddr
	if *username != "" {
		addr += "?username=" + url.QueryEscape(*username)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	display := client.NewTermDisplay(os.Stdout)

	c := client.New(addr, display, logger)
	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer c.Disconnect()

	log.Printf("Connected to %s", *serverAddr)

	fmt.Println("Type your messages (or 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()

		if text == "quit" || text == "exit" {
			break
		}

		// Send trims and silently skips whitespace-only input.
		if err := c.Send(text); err != nil {
			log.Printf("Failed to send message: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Error reading input: %v", err)
	}

	log.Println("Disconnected from server")
}
