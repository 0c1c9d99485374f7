package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"stocksage/internal/ai"
	"stocksage/internal/chat"
	"stocksage/internal/shareapi"
	"stocksage/internal/tui"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive analysis session (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportDir != "" {
				return runChatIn(cmd, opts, exportDir)
			}
			return runChat(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory for /export (default is the working directory)")
	return cmd
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return runChatIn(cmd, opts, cwd)
}

func runChatIn(cmd *cobra.Command, opts *rootOptions, exportDir string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	completer := ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLMTimeout(),
	})
	client, err := chat.New(completer, chat.NewFileCredentialStore(cfg.Client.CredentialFile), cfg.LLM.SystemPrompt)
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}

	log.Info().Str("model", cfg.LLM.Model).Str("share_server", cfg.Client.ShareServerURL).Msg("chat session started")

	model := tui.NewModel(client, tui.Options{
		Sharer:    shareapi.NewClient(cfg.Client.ShareServerURL),
		Clipboard: clipboard.WriteAll,
		ExportDir: exportDir,
		Logger:    log,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
