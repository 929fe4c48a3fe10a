package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/api"
	"github.com/TFMV/vectorgen/logger"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP generation service",
		Long: `Serve starts an HTTP server exposing schema validation and dataset
generation endpoints. The server shuts down gracefully on SIGINT or
SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := cfg.Server.Port
			if port != 0 {
				p = port
			}
			server := api.NewServer(logger.GetLogger())
			return server.Start(cmd.Context(), fmt.Sprintf(":%d", p))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")

	return cmd
}
