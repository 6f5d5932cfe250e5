package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flemzord/chatlist/internal/render"
	"github.com/flemzord/chatlist/pkg/app"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "render [conversation...]",
		Short: "Print stored conversations as chat bubbles",
		Long: "Loads the configured store and prints each conversation with its time\n" +
			"headers and sender names. Without arguments every conversation is printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
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
				return errors.New("render: conversation.lists is not configured")
			}
			ids := args
			if len(ids) == 0 {
				ids = mgr.IDs()
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations.")
				return nil
			}

			out := cmd.OutOrStdout()
			r := render.New(out, render.Options{Width: width})
			for i, id := range ids {
				list, err := mgr.Get(id)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, r.Conversation(id, list))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 60, "Line width")
	return cmd
}
