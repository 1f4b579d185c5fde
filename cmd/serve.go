package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/collabops/brief-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the brief API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(env.Service, env.Converter, server.Options{
			Port:            port,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
