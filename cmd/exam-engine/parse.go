// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/category"
	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/pipeline"
	"github.com/pdiddy/exam-engine/internal/sandbox"
	"github.com/pdiddy/exam-engine/internal/segment"
	"github.com/pdiddy/exam-engine/internal/source"
	"github.com/pdiddy/exam-engine/internal/validate"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file> <subject>",
	Short: "Parse a question document into structured questions",
	Long: `Parse reads a question document (.docx, .txt, .md, or - for stdin),
splits it at identifier markers, and extracts each question's stem, options,
answer, and explanation. Questions that look wrong (missing parts, option
text bleeding into explanations, unexpected option counts) are listed under
format_issues; they never stop the run.

With --json the result is printed as one JSON document. Exit status is 1
only when the document cannot be read or arguments are missing.

With --isolate the document is parsed inside a docker or podman container
running this binary, for documents from untrusted sources.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("json", false, "print the result as JSON")
	parseCmd.Flags().Bool("isolate", false, "parse inside a container (docker or podman)")
	parseCmd.Flags().String("convention", "", "identifier style: bracket or dotted (default from config)")
	parseCmd.Flags().Int("expected-options", 0, "expected option count; -1 disables the check (default from config)")
	parseCmd.Flags().String("categories", "", "YAML file mapping identifier ranges to categories")
	parseCmd.Flags().StringSlice("bleed-keywords", nil, "words that must not appear in option text (default built-in list)")
	parseCmd.Flags().Duration("timeout", 0, "time limit for one parse (default 60s)")

	viper.BindPFlag("parse.convention", parseCmd.Flags().Lookup("convention"))
	viper.BindPFlag("parse.expected_options", parseCmd.Flags().Lookup("expected-options"))
	viper.BindPFlag("parse.bleed_keywords", parseCmd.Flags().Lookup("bleed-keywords"))
	viper.BindPFlag("parse.timeout", parseCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var subject string
	if len(args) > 1 {
		subject = args[1]
	}
	fail := func(err error) error {
		if jsonOutput {
			if werr := emit.WriteJSON(cmd.OutOrStdout(), emit.Failure(subject, err)); werr != nil {
				logger.Error().Err(werr).Msg("writing failure document")
			}
		}
		return err
	}

	if len(args) != 2 {
		return fail(fmt.Errorf("usage: exam-engine parse <file> <subject>"))
	}
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	opts, err := questionOptions(cfg.Parse)
	if err != nil {
		return fail(err)
	}
	cats, err := categoryTable(cmd, cfg.Parse, subject)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := contextWithParseTimeout(cmd, cfg.Parse)
	defer cancel()

	var out emit.ParseOutput
	isolate, _ := cmd.Flags().GetBool("isolate")
	if isolate {
		out, err = parseIsolated(ctx, cfg, path, subject)
		if err == nil && out.Success {
			out.GroupCategories(cats)
		}
	} else {
		out, err = withTimeout(ctx, func() (emit.ParseOutput, error) {
			text, err := source.ReadText(path)
			if err != nil {
				return emit.ParseOutput{}, err
			}
			set := pipeline.ParseQuestions(text, opts)
			return emit.NewParseOutput(subject, set, cats), nil
		})
	}
	if err != nil {
		return fail(err)
	}

	if jsonOutput {
		if err := emit.WriteJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else if err := emit.Summary(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("%s", out.Error)
	}
	return nil
}

// parseIsolated runs the parse in a container. The child gets the
// resolved parse settings on its command line; categories are applied by
// the caller on the host.
func parseIsolated(ctx context.Context, cfg types.Config, path, subject string) (emit.ParseOutput, error) {
	rt, err := sandbox.DetectRuntime(ctx)
	if err != nil {
		return emit.ParseOutput{}, err
	}
	runner := sandbox.NewRunner(rt, cfg.Sandbox, logger)
	if err := runner.Check(ctx); err != nil {
		return emit.ParseOutput{}, err
	}

	doc := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return emit.ParseOutput{}, fmt.Errorf("%w: %v", source.ErrContainerUnreadable, err)
		}
		defer f.Close()
		doc = f
	}
	logger.Info().Str("runtime", rt.Name()).Str("image", runner.Image).Msg("parsing in container")
	return runner.Parse(ctx, doc, sandbox.ParseRequest{
		Subject:         subject,
		Convention:      cfg.Parse.Convention,
		ExpectedOptions: cfg.Parse.ExpectedOptions,
		BleedKeywords:   cfg.Parse.BleedKeywords,
	})
}

// --- shared helpers ---

// questionOptions builds pipeline options for question documents.
func questionOptions(cfg types.ParseConfig) (pipeline.Options, error) {
	conv, err := segment.ParseConvention(cfg.Convention)
	if err != nil {
		return pipeline.Options{}, err
	}
	rules := validate.RulesFromConfig(cfg)
	return pipeline.Options{Logger: logger, Rules: &rules, Convention: conv}, nil
}

// answerOptions builds pipeline options for answer documents, which
// default to dotted numerals.
func answerOptions(cfg types.ParseConfig) (pipeline.Options, error) {
	name := cfg.AnswerConvention
	if name == "" {
		name = segment.DottedNumeral.String()
	}
	conv, err := segment.ParseConvention(name)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Logger: logger, Convention: conv}, nil
}

// categoryTable loads categories from --categories when given, else from
// configuration. It returns nil when neither defines any.
func categoryTable(cmd *cobra.Command, cfg types.ParseConfig, subject string) (*category.Table, error) {
	if path, _ := cmd.Flags().GetString("categories"); path != "" {
		return category.Load(path, subject)
	}
	if len(cfg.Categories) == 0 {
		return nil, nil
	}
	return category.New(cfg.Categories, subject)
}

// contextWithParseTimeout bounds a command's parse work by parse.timeout.
func contextWithParseTimeout(cmd *cobra.Command, cfg types.ParseConfig) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), parseTimeout(cfg))
}

// truncate shortens s to at most n runes for table output.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func parseTimeout(cfg types.ParseConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 60 * time.Second
	}
	return cfg.Timeout
}

// withTimeout runs fn and gives up when ctx ends first. The engine itself
// is synchronous; fn keeps running in the background until it returns.
func withTimeout[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("parse timed out: %w", ctx.Err())
	}
}
