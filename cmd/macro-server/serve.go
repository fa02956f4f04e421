package main

import (
	"github.com/spf13/cobra"

	"github.com/rsned/crafting-macro-server/internal/crafting/httpapi"
	"github.com/rsned/crafting-macro-server/internal/crafting/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the optimizer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			eng, closeEngine, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeEngine()

			// Load the catalog up front so a broken registry fails at start.
			if _, err := eng.Catalog(ctx); err != nil {
				return err
			}

			a.logger.Info("starting HTTP server",
				"db", a.cfg.Database.Path,
				"strategy", a.cfg.Search.Strategy,
				"time_limit", a.cfg.Search.TimeLimit)
			return httpapi.NewServer(eng, a.cfg.Server, a.logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the optimizer as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, closeEngine, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeEngine()

			a.logger.Info("starting MCP server", "db", a.cfg.Database.Path)
			if err := mcp.NewServer(eng, version, a.logger).Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
