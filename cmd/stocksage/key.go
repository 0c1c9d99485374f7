package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stocksage/internal/chat"
)

func newKeyCmd(opts *rootOptions) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored OpenAI API key",
	}

	setCmd := &cobra.Command{
		Use:   "set [api-key]",
		Short: "Store the API key (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return chat.ErrCredentialEmpty
				}
				key = line
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return chat.ErrCredentialEmpty
			}

			if err := chat.NewFileCredentialStore(cfg.Client.CredentialFile).Save(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", cfg.Client.CredentialFile)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := chat.NewFileCredentialStore(cfg.Client.CredentialFile).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
			return nil
		},
	}

	keyCmd.AddCommand(setCmd, clearCmd)
	return keyCmd
}
