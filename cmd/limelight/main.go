// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command limelight drives one streaming session from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	xglog "github.com/ManuGH/limelight/internal/log"
	"github.com/ManuGH/limelight/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	// Safe defaults until the config is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: "limelight", Version: version.Version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "limelight",
		Short:         "Game-streaming client",
		Long:          "limelight connects to a streaming host and reports bring-up progress stage by stage.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "path to config file (YAML)")
	root.AddCommand(newConnectCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
