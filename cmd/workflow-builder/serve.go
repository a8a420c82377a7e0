// Copyright Tadafuq Labs, 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tadafuq/workflow-builder/internal/logging"
	"github.com/tadafuq/workflow-builder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	Long: `Serve runs the dashboard API: task and workflow CRUD plus execution
endpoints, with per-IP rate limiting. The server shuts down gracefully
on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			viper.Set("server.addr", addr)
		}

		cfg := appConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := buildEngine(cfg, st)
		srv := server.New(e, st, cfg.Server, logging.Base())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
