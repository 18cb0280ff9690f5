package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"servecore/internal/config"
)

type options struct {
	configPath string
	logLevel   string
	logFormat  string

	addr        string
	modelsDir   string
	cacheDB     string
	warmUp      string
	corsOrigins string
	maxWorkers  int
	maxModels   int
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&options{}) }

// newRootCmdWith builds the command tree with every flag bound into o.
func newRootCmdWith(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "servecore",
		Short:         "Task scheduler, model manager and result cache for AI serving",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", os.Getenv("SERVECORE_CONFIG"), "Config file (.yaml, .json, .toml); defaults SERVECORE_CONFIG")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: console|json (overrides config)")

	root.AddCommand(newServeCmd(o), newCheckCmd(o))
	return root
}

// loadConfig reads the config file (if any), applies flags the user set and
// fills the remaining fields from defaults.
func loadConfig(cmd *cobra.Command, o *options) (config.Config, error) {
	var file config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		file = c
	}
	over := config.Config{LogLevel: o.logLevel, LogFormat: o.logFormat}
	flags := cmd.Flags()
	if flags.Changed("addr") || os.Getenv("SERVECORE_ADDR") != "" {
		over.Addr = o.addr
	}
	if flags.Changed("models-dir") {
		over.ModelsDir = o.modelsDir
	}
	if flags.Changed("cache-db") {
		over.CacheDB = o.cacheDB
	}
	if flags.Changed("max-workers") {
		over.MaxWorkers = o.maxWorkers
	}
	if flags.Changed("max-models") {
		over.MaxModelsInMemory = o.maxModels
	}
	if flags.Changed("warm-up") {
		over.WarmUp = splitCSV(o.warmUp)
	}
	if flags.Changed("cors-origins") {
		over.CORSOrigins = splitCSV(o.corsOrigins)
	}
	cfg := config.Merge(config.Merge(config.Default(), file), over)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger the way the HTTP layer expects it:
// console output for humans, JSON lines otherwise.
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
