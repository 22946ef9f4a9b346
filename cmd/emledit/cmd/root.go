// Package cmd holds the emledit commands.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/emledit/internal/config"
	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/translate"
)

// app holds the state shared by the commands of one run.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand returns the emledit command with all of its subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "emledit",
		Short:             "Edit the body, headers, and attachments of .eml files",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, or error")

	rootCmd.AddCommand(
		a.serveCmd(),
		a.extractCmd(),
		a.previewCmd(),
		a.rebuildCmd(),
		a.roundtripCmd(),
	)

	return rootCmd
}

// Execute runs the emledit command and exits on error.
func Execute() {
	err := NewRootCommand().Execute()
	cobra.CheckErr(err)
}

// setup loads the configuration and sets up logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(a.logLevel)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = newLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	return nil
}

// loadConfig loads configuration from the specified path (YAML + env
// override) or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newLogger returns a logger writing JSON at the given level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// readMessage parses the message in the named file. A path of "-" reads
// standard input.
func (a *app) readMessage(cmd *cobra.Command, path string) (message.Part, []byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read message: %w", err)
	}

	msg, err := message.Parse(bytes.NewReader(data), a.cfg.ParseOptions()...)
	if err != nil {
		return nil, data, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	a.logger.Debug("parsed message", "path", path, "size", len(data))

	return msg, data, nil
}

// translateService builds the translate.Service the configuration asks for.
func (a *app) translateService(ctx context.Context) (*translate.Service, error) {
	tc := a.cfg.Translate
	svc := &translate.Service{
		Detector:   &translate.WhatlangDetector{},
		Translator: translate.NopTranslator{},
		Target:     tc.Target,
		SampleSize: tc.SampleSize,
		Timeout:    tc.Timeout,
	}

	if tc.Provider == config.ProviderAWS {
		tr, err := translate.New(ctx, translate.AWSConfig{
			Region:          tc.Region,
			AccessKeyID:     tc.AccessKeyID,
			SecretAccessKey: tc.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		svc.Translator = tr
	}

	return svc, nil
}
