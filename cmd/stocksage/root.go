package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stocksage/internal/config"
	"stocksage/internal/logger"
)

type rootOptions struct {
	cfgFile   string
	serverURL string
	model     string
	baseURL   string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stocksage",
		Short: "StockSage AI, a stock market analysis chat in your terminal",
		Long: `stocksage opens an interactive chat with the StockSage AI market analyst.
Your OpenAI API key is stored locally and conversations can be exported,
copied to the clipboard or shared through a StockSage share server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $CONFIG_FILE or configs/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "share server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.model, "model", "", "completion model")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level for the client log file")

	rootCmd.AddCommand(
		newChatCmd(opts),
		newViewCmd(opts),
		newKeyCmd(opts),
	)
	return rootCmd
}

// loadConfig reads the config file and applies flags over it.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgFile != "" {
		cfg, err = config.LoadFile(o.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if o.serverURL != "" {
		cfg.Client.ShareServerURL = o.serverURL
	}
	if o.model != "" {
		cfg.LLM.Model = o.model
	}
	if o.baseURL != "" {
		cfg.LLM.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// fileLogger writes to the client log file so that the terminal stays clean
// for the UI.
func fileLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	path := cfg.Client.LogFile
	if strings.TrimSpace(path) == "" {
		return zerolog.Nop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log, err := logger.NewWithWriter(f, cfg.Log.Level, "json")
	if err != nil {
		_ = f.Close()
		return zerolog.Nop(), nil, fmt.Errorf("build logger: %w", err)
	}
	return log, func() { _ = f.Close() }, nil
}
