package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/SafeMemoryZone/knight-rider/internal/uci"
)

func main() {
	// Diagnostics go to stderr so the UCI stream on stdout stays clean.
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	uci.New(os.Stdout, log).Run(os.Stdin)
}
