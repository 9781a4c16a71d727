// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the exam-engine CLI.
// It splits exam question documents into questions, extracts stems,
// options, answers and explanations, flags suspect extractions, and merges
// separately numbered answer documents into one reviewable artifact.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/logging"
	"github.com/pdiddy/exam-engine/internal/merge"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "exam-engine/0.1"

// logger is built in PersistentPreRunE from the log.* settings. Commands
// write results to stdout and diagnostics through logger to stderr.
var logger = zerolog.Nop()

// rootCmd is the base command for the exam-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "exam-engine",
	Short: "Parse and merge legal exam question documents",
	Long: `exam-engine turns exam documents (.docx, .txt, .md) into structured
questions: stem, lettered options, answer, and explanation. Extraction
problems are reported per question instead of aborting the batch.

Question documents tag identifiers as 【N】; answer documents number them
"N." at line start. The merge command pairs the two by identifier and writes
one Markdown artifact. Parsed sets can be stored in a local SQLite database
for search and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetCount("verbose")
		level := logging.Verbosity(viper.GetString("log.level"), verbose)
		logger = logging.Setup(level, viper.GetString("log.format"), os.Stderr)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("path", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./exam-engine.yaml or ~/.config/exam-engine/exam-engine.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "pretty", "log format: pretty or json")
	pf.CountP("verbose", "v", "enable debug logging")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))

	setDefaults()
}

// setDefaults registers every configuration key so env overrides reach
// viper.Unmarshal even without a config file.
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "pretty")

	viper.SetDefault("parse.expected_options", types.MaxOptions)
	viper.SetDefault("parse.bleed_keywords", []string{})
	viper.SetDefault("parse.categories", []types.CategoryRange{})
	viper.SetDefault("parse.convention", "bracket")
	viper.SetDefault("parse.answer_convention", "dotted")
	viper.SetDefault("parse.timeout", 60*time.Second)

	viper.SetDefault("merge.placeholder", merge.DefaultPlaceholder)
	viper.SetDefault("merge.output_path", "")

	viper.SetDefault("store.dir", "exam-store")
	viper.SetDefault("store.max_results", 20)

	viper.SetDefault("probe.endpoint", "")
	viper.SetDefault("probe.model", "")
	viper.SetDefault("probe.max_retries", 3)
	viper.SetDefault("probe.timeout", 30*time.Second)
	viper.SetDefault("probe.user_agent", defaultUserAgent)

	viper.SetDefault("sandbox.image", "exam-engine:latest")
	viper.SetDefault("sandbox.timeout", 60*time.Second)
}

func initConfig() {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("exam-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "exam-engine"))
		}
	}

	viper.SetEnvPrefix("EXAM_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "warning: reading config file:", err)
	}
}

// loadConfig decodes the merged config file, env, and bound flags.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// execute runs the root command and returns the process exit status.
func execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute())
}
