package main

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/flemzord/chatlist/internal/mcptools"
	"github.com/flemzord/chatlist/pkg/app"
)

func mcpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve conversation tools over MCP on stdio",
		Long: "Runs an MCP server on stdin/stdout exposing list, append, remove and\n" +
			"clear tools. Logs go to stderr. The HTTP gateway is not started.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := flags.params()
			params.LogOutput = cmd.ErrOrStderr()
			params.Skip = []string{"gateway.http"}

			rt, err := app.Load(cmd.Context(), params)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Shutdown(cmd.Context()) }()
			if err := rt.App.Start(); err != nil {
				return err
			}

			mgr, ok := rt.Manager()
			if !ok {
				return errors.New("mcp: conversation.lists is not configured")
			}
			rt.Logger.Info("serving MCP on stdio")
			return server.ServeStdio(mcptools.NewServer(mgr, version))
		},
	}
}
