package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/match-odds-chart/internal/config"
)

var logLevelMatches = map[string]zerolog.Level{
	"NONE":  zerolog.Disabled,
	"TRACE": zerolog.TraceLevel,
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if l, ok := logLevelMatches[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Setup configures the global logger. Format "console" forces the human
// writer, "json" forces JSON lines and anything else picks console only when
// stdout is a terminal.
func Setup(cfg config.LogConfig) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	log.Logger = New(os.Stdout, cfg.Format, isTerminalAttached())
}

// New builds a logger writing to out.
func New(out io.Writer, format string, terminal bool) zerolog.Logger {
	var w io.Writer = out
	switch strings.ToLower(format) {
	case "console":
		w = consoleWriter(out)
	case "json":
	default:
		if terminal {
			w = consoleWriter(out)
		}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    runtime.GOOS == "windows",
	}
}

func isTerminalAttached() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && runtime.GOOS != "windows"
}

// Enabled reports whether events at level pass the global level, so callers
// can skip building log-only data.
func Enabled(level zerolog.Level) bool {
	return level >= zerolog.GlobalLevel()
}
