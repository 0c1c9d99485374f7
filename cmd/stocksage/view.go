package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"stocksage/internal/shareapi"
	"stocksage/internal/viewer"
)

var errViewFailed = errors.New("shared conversation unavailable")

func newViewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view <share-id|share-url>",
		Short: "Print a shared conversation (read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			id := viewer.ParseShareID(args[0])
			if err := viewer.Render(cmd.ErrOrStderr(), viewer.Loading(), time.Local); err != nil {
				return err
			}
			state := viewer.Load(cmd.Context(), shareapi.NewClient(cfg.Client.ShareServerURL), id)
			if err := viewer.Render(cmd.OutOrStdout(), state, time.Local); err != nil {
				return err
			}
			if state.Phase == viewer.PhaseFailed {
				return errViewFailed
			}
			return nil
		},
	}
}
