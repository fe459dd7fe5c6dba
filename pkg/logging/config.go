package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap/pkg/constants"
)

// Config selects where and how logs are written.
type Config struct {
	// Level is trace, debug, info, warn, error or disabled.
	Level string

	// Format is json, console or auto. Auto picks console on a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path. Log files are
	// appended to.
	Output string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every entry.
	Fields map[string]string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig builds a logger and sets zerolog's global level to
// the configured one. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level, _ := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	return build(cfg, openOutput(cfg.Output))
}

// ParseLevel parses a level name. Unknown names yield info and false.
func ParseLevel(name string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warning":
		return zerolog.WarnLevel, true
	case "off", "none":
		return zerolog.Disabled, true
	case "":
		return zerolog.InfoLevel, false
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

func build(cfg *Config, out io.Writer) zerolog.Logger {
	level, _ := ParseLevel(cfg.Level)

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(out) {
			format = "console"
		}
	}
	if format == "console" || format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
	}

	c := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		c = c.Caller()
	}
	for k, v := range cfg.Fields {
		c = c.Str(k, v)
	}
	return c.Logger()
}

// openOutput resolves an output name. Unopenable files fall back to stderr.
func openOutput(name string) io.Writer {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
