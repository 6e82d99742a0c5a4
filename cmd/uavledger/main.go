// Command uavledger drives the flight-log integrity pipeline: simulated
// chunked uploads with on-chain anchoring, verification runs, and the HTTP
// API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	uavledger "github.com/kevin-atari/uav-mission-log-integrity"
)

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:           "uavledger",
		Short:         "Tamper-evident UAV flight log ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "path to config file (default: ./uavledger.yaml)")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	pflag.CommandLine.AddFlagSet(flags)

	root.AddCommand(simulateCommand(), verifyCommand(), serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig() (uavledger.Config, error) {
	return uavledger.LoadConfig(flagConfig)
}

func openStore(ctx context.Context, cfg uavledger.Config) (uavledger.ObjectStore, error) {
	switch cfg.Store {
	case "s3":
		return uavledger.NewS3Store(ctx, cfg.S3)
	case "sqlite":
		return uavledger.OpenSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func openRegistry(ctx context.Context, cfg uavledger.Config, log zerolog.Logger) (uavledger.Registry, error) {
	switch cfg.Registry {
	case "eth":
		return uavledger.NewEthRegistry(ctx, cfg.Eth, log)
	case "mem":
		return uavledger.NewMemRegistry(), nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Registry)
	}
}
