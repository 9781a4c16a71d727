// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/probe"
	"github.com/pdiddy/exam-engine/internal/secrets"
)

const (
	secretsDir   = ".secrets"
	apiKeyEnvVar = "EXAM_ENGINE_EMBEDDING_API_KEY"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check connectivity to the configured embedding API",
	Long: `Probe sends one small embedding request to probe.endpoint and reports
the HTTP status, latency, and embedding dimensions. Rate-limited (429) and
unavailable (503) responses are retried up to probe.max_retries times.

The API key is read from .secrets/embedding-api-key, falling back to the
EXAM_ENGINE_EMBEDDING_API_KEY environment variable.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().String("endpoint", "", "embedding endpoint URL")
	probeCmd.Flags().String("model", "", "model name sent with the request")
	probeCmd.Flags().Bool("json", false, "print the result as JSON")

	viper.BindPFlag("probe.endpoint", probeCmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("probe.model", probeCmd.Flags().Lookup("model"))

	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Probe.Endpoint == "" {
		return fmt.Errorf("probe.endpoint is not set (use --endpoint or EXAM_ENGINE_PROBE_ENDPOINT)")
	}

	apiKey, err := secrets.Resolve(secretsDir, secrets.EmbeddingAPIKey, apiKeyEnvVar, logger)
	if err != nil {
		return err
	}
	if apiKey == "" {
		logger.Warn().Msg("no embedding API key found; probing without authorization")
	}

	client := &http.Client{Timeout: cfg.Probe.Timeout}
	ctx := logger.WithContext(cmd.Context())
	res := probe.Probe(ctx, client, cfg.Probe, apiKey)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := emit.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	} else if res.OK {
		fmt.Fprintf(os.Stdout, "%s: ok (HTTP %d, %s, %d dimensions)\n",
			res.Endpoint, res.Status, res.Latency.Round(time.Millisecond), res.Dimensions)
	} else {
		fmt.Fprintf(os.Stdout, "%s: failed (HTTP %d): %s\n", res.Endpoint, res.Status, res.Error)
	}

	if !res.OK {
		return fmt.Errorf("probe failed: %s", res.Error)
	}
	return nil
}
