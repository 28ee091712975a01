package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	Level string    // zerolog level name, empty means info
	JSON  bool      // raw JSON lines instead of console output
	Out   io.Writer // defaults to os.Stdout
}

// NewLogger returns a zerolog logger. Console output is the default; JSON is
// meant for log shippers.
func NewLogger(opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
		zerolog.CallerMarshalFunc = shortCaller
	}

	return zerolog.New(out).Level(level).With().Timestamp().Caller().Logger(), nil
}

// shortCaller keeps only the file name, padded so messages line up.
func shortCaller(pc uintptr, file string, line int) string {
	return fmt.Sprintf("%-24s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
}
