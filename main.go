package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/blogsyndicator/cli"
	"sjsage522/blogsyndicator/logger"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Logs go to stderr so that command output stays clean
	logger.InitWithWriter(os.Stderr)
	log := logger.Default

	// Set up context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
