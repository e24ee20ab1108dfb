package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/config"
	"github.com/Prashu2024/form-builder-backend/internal/logging"
	"github.com/Prashu2024/form-builder-backend/internal/schema"
)

var (
	configPath string

	cfg         *config.Config
	logger      *zap.Logger
	flushLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "formsapi",
	Short: "Form schema and submissions API",
	Long: `formsapi serves a declarative form schema, validates submissions
against it and stores the accepted ones.

Configuration comes from an optional YAML file (--config) and FORMS_*
environment variables, which take precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, flushLogger, err = logging.New(logging.Options{
			Level:    cfg.LogLevel,
			Format:   cfg.LogFormat,
			GelfAddr: cfg.GelfAddr,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadForm returns the schema file named in the config, or the built-in
// employee onboarding form.
func loadForm(cfg *config.Config) (*schema.Form, error) {
	if cfg.SchemaFile == "" {
		return schema.Default(), nil
	}
	form, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return form, nil
}
