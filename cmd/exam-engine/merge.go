// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/merge"
	"github.com/pdiddy/exam-engine/internal/pipeline"
	"github.com/pdiddy/exam-engine/internal/source"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <questions> <answers> [subject]",
	Short: "Merge a question document with its answer document",
	Long: `Merge parses a question document and a separately numbered answer
document, pairs them by identifier, and writes one Markdown artifact with
each question followed by its correct answer and explanation.

Questions without an answer record keep their stem and options and get
the configured placeholder as explanation. Answer records without a
question are logged and listed in the --report file.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "write the Markdown artifact here (default stdout)")
	mergeCmd.Flags().String("report", "", "also write the full merge report as YAML to this path")
	mergeCmd.Flags().String("placeholder", "", "explanation for questions without an answer record")

	viper.BindPFlag("merge.output_path", mergeCmd.Flags().Lookup("output"))
	viper.BindPFlag("merge.placeholder", mergeCmd.Flags().Lookup("placeholder"))

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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

	var w io.Writer = os.Stdout
	if cfg.Merge.OutputPath != "" {
		f, err := os.Create(cfg.Merge.OutputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := emit.WriteMarkdown(w, report); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := writeReport(path, report); err != nil {
			return err
		}
	}

	subject := "document"
	if len(args) == 3 {
		subject = args[2]
	}
	logger.Info().
		Str("subject", subject).
		Int("questions", len(report.Questions)).
		Int("missing_answers", report.MissingAnswerCount()).
		Int("orphans", len(report.Orphans)).
		Msg("merge finished")
	return nil
}

// docPair holds a parsed question document and its answer document.
type docPair struct {
	Questions pipeline.QuestionSet
	Answers   pipeline.AnswerSet
}

// parsePair reads and parses both documents of a merge under ctx.
func parsePair(ctx context.Context, cfg types.ParseConfig, questionsPath, answersPath string) (docPair, error) {
	qopts, err := questionOptions(cfg)
	if err != nil {
		return docPair{}, err
	}
	aopts, err := answerOptions(cfg)
	if err != nil {
		return docPair{}, err
	}
	if questionsPath == "-" && answersPath == "-" {
		return docPair{}, fmt.Errorf("only one document can be read from stdin")
	}

	return withTimeout(ctx, func() (docPair, error) {
		qtext, err := source.ReadText(questionsPath)
		if err != nil {
			return docPair{}, fmt.Errorf("questions: %w", err)
		}
		atext, err := source.ReadText(answersPath)
		if err != nil {
			return docPair{}, fmt.Errorf("answers: %w", err)
		}
		return docPair{
			Questions: pipeline.ParseQuestions(qtext, qopts),
			Answers:   pipeline.ParseAnswers(atext, aopts),
		}, nil
	})
}

func logReport(r merge.Report) {
	if len(r.UnmatchedQuestions) > 0 {
		logger.Warn().Ints("ids", r.UnmatchedQuestions).Msg("questions without answer record")
	}
	if len(r.UnmatchedAnswers) > 0 {
		logger.Warn().Ints("ids", r.UnmatchedAnswers).Msg("answer records without question")
	}
}

func writeReport(path string, r merge.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if err := emit.WriteYAML(f, r); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Debug().Str("path", path).Msg("wrote merge report")
	return nil
}
