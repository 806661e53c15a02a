package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/starnote/internal/config"
)

// setupConsoleLogging sends human-readable logs to w.
func setupConsoleLogging(cfg *config.Config, w io.Writer) error {
	level, err := cfg.Log.ZerologLevel()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return nil
}

// setupFileLogging sends JSON logs to the configured log file, keeping
// the terminal free for the editor.
func setupFileLogging(cfg *config.Config) (func(), error) {
	level, err := cfg.Log.ZerologLevel()
	if err != nil {
		return nil, err
	}
	path, err := cfg.LogFileOrDefault()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}
