package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/initia-labs/movevm/types"
)

// NewLogger builds the process logger from c. Console output goes to stderr;
// when File is set, JSON lines are also written to a rotated file. The
// returned closer releases the file and is never nil.
func (c LogConfig) NewLogger() (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return zerolog.Nop(), nopCloser{}, types.NewConfigError("Log.Level", err)
	}
	if c.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stderr
	if c.Format != FormatJSON {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	out := console
	if c.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}
		closer = rotated
		out = zerolog.MultiLevelWriter(console, rotated)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
