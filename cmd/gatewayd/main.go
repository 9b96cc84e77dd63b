// Command gatewayd runs the schema-driven API gateway: a REST surface
// plus an MCP tool catalogue synthesised from a declarative schema.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:           "gatewayd",
		Short:         "Schema-driven API gateway",
		Long:          "gatewayd synthesises a complete REST surface and MCP tool catalogue from a declarative entity schema.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to gatewayd.toml (default: ./gatewayd.toml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level: debug, info, warn, error")

	root.AddCommand(newServeCmd())
	root.AddCommand(newInfoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gatewayd: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger: structured JSON to stderr, same
// as the server's request logging expects.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
