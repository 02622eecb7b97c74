package main

import (
	"context"
	"os"

	"github.com/martinsuchenak/devcalc/cmd/calculate"
	"github.com/martinsuchenak/devcalc/cmd/server"
	"github.com/martinsuchenak/devcalc/internal/log"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "devcalc",
		Version:     version,
		Usage:       "Device address and port calculator",
		Description: "Calculate IP, gateway, MAC address and port tables for network devices, offline or as a server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"DEVCALC_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"DEVCALC_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			log.Debug("devcalc starting", "version", version, "commit", commit, "date", date)
			return ctx, nil
		},
		Commands: append([]*cli.Command{server.Command()}, calculate.Commands()...),
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
