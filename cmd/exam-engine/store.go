// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/merge"
	"github.com/pdiddy/exam-engine/internal/store"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the question store (ingest, retrieve, export, runs)",
	Long: `Store manages a local SQLite database of merged questions. Use
subcommands to ingest a question/answer document pair, search stored
questions, export them, or list past ingests.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest <questions> <answers> <subject>",
	Short: "Parse, merge, and store a question/answer document pair",
	Long: `Ingest parses both documents, merges them by identifier, and upserts
every merged question under the subject. Re-ingesting a subject replaces
the stored questions and their issues; each ingest is recorded as a run.`,
	Args: cobra.ExactArgs(3),
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	subject := args[2]

	ctx, cancel := contextWithParseTimeout(cmd, cfg.Parse)
	defer cancel()
	pair, err := parsePair(ctx, cfg.Parse, args[0], args[1])
	if err != nil {
		return err
	}
	report := merge.MergeWith(pair.Questions.Index(), pair.Answers.Index(), merge.Options{
		Placeholder: cfg.Merge.Placeholder,
	})
	logReport(report)
	if len(report.Orphans) > 0 {
		logger.Warn().Int("count", len(report.Orphans)).Msg("orphan answer records are not stored")
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(cmd.Context(), subject, args[0], report.Questions, pair.Questions.Issues())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %d inserted, %d updated, %d missing answers (run %s)\n",
		subject, summary.Inserted, summary.Updated, report.MissingAnswerCount(), summary.RunID)
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search stored questions",
	Long: `Retrieve searches stored questions by text (question, options, and
explanation) and by structured filters: subject, issue kind, or missing
answer. Queries shorter than three characters use a substring scan.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --subject, --issue, or --missing-answer")
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []store.QueryResult{}
		}
		return emit.WriteJSON(os.Stdout, results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %6s  %-6s  %-40s  %s\n", "Subject", "ID", "Answer", "Question", "Issues")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range results {
		answer := r.Answer
		if r.SourceFlags.MissingAnswer {
			answer = "-"
		}
		issues := make([]string, len(r.Issues))
		for i, k := range r.Issues {
			issues[i] = string(k)
		}
		fmt.Fprintf(os.Stdout, "%-12s  %6d  %-6s  %-40s  %s\n",
			truncate(r.Subject, 12), r.ID, answer, truncate(r.QuestionText, 40), strings.Join(issues, ","))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored questions to YAML or JSON",
	Long: `Export writes all stored questions (or a filtered subset) to
export.yaml or export.json in the store directory. Supports the same
filter flags as retrieve.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- runs subcommand ---

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded ingests, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreRuns,
}

func runStoreRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if runs == nil {
			runs = []store.Run{}
		}
		return emit.WriteJSON(os.Stdout, runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%s  %s  %-12s  %4d questions  %4d missing  %s\n",
			r.ID, r.IngestedAt.Format("2006-01-02 15:04"), truncate(r.Subject, 12),
			r.Questions, r.MissingAnswers, r.Source)
	}
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	subject, _ := cmd.Flags().GetString("subject")
	issue, _ := cmd.Flags().GetString("issue")
	missing, _ := cmd.Flags().GetBool("missing-answer")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:         queryText,
		Subject:       subject,
		Issue:         types.IssueKind(issue),
		MissingAnswer: missing,
		MaxResults:    limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "text search over question, options, and explanation")
	cmd.Flags().String("subject", "", "filter by subject")
	cmd.Flags().String("issue", "", "filter by issue kind (e.g. OptionBleed)")
	cmd.Flags().Bool("missing-answer", false, "only questions merged without an answer record")
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "directory holding exam.db and exports (default exam-store)")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results")
	viper.BindPFlag("store.dir", storeCmd.PersistentFlags().Lookup("store-dir"))
	viper.BindPFlag("store.max_results", storeCmd.PersistentFlags().Lookup("max-results"))

	addFilterFlags(storeRetrieveCmd)
	storeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().Int("limit", 0, "maximum questions to export (0 = all)")

	storeRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeRunsCmd)

	rootCmd.AddCommand(storeCmd)
}
