// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/pipeline"
	"github.com/pdiddy/exam-engine/internal/source"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var answersCmd = &cobra.Command{
	Use:   "answers <file>",
	Short: "Parse an answer document into answer records",
	Long: `Answers reads a separately numbered answer document ("1. 正确答案：B"
followed by the explanation) and prints one record per identifier. Records
without a recognizable answer or explanation are listed under issues.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswers,
}

func init() {
	answersCmd.Flags().Bool("json", false, "print the records as JSON")
	answersCmd.Flags().String("answer-convention", "", "identifier style: dotted or bracket (default from config)")

	viper.BindPFlag("parse.answer_convention", answersCmd.Flags().Lookup("answer-convention"))

	rootCmd.AddCommand(answersCmd)
}

// answersOutput is the JSON document printed by "answers --json".
type answersOutput struct {
	Records   []types.AnswerRecord       `json:"records"`
	Issues    map[int][]types.IssueKind  `json:"issues"`
	Conflicts []types.IdentifierConflict `json:"conflicts,omitempty"`
}

func runAnswers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := answerOptions(cfg.Parse)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithParseTimeout(cmd, cfg.Parse)
	defer cancel()

	set, err := withTimeout(ctx, func() (pipeline.AnswerSet, error) {
		text, err := source.ReadText(args[0])
		if err != nil {
			return pipeline.AnswerSet{}, err
		}
		return pipeline.ParseAnswers(text, opts), nil
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return emit.WriteJSON(os.Stdout, answersOutput{
			Records:   set.Records,
			Issues:    set.Issues,
			Conflicts: set.Conflicts,
		})
	}

	fmt.Fprintf(os.Stdout, "%d answer records, %d with issues, %d conflicts\n",
		len(set.Records), len(set.Issues), len(set.Conflicts))
	for _, r := range set.Records {
		answer := r.Answer
		if answer == "" {
			answer = "-"
		}
		fmt.Fprintf(os.Stdout, "%6d  %-4s  %s\n", r.ID, answer, truncate(r.Explanation, 40))
	}
	for _, id := range types.SortedIDs(set.Issues) {
		fmt.Fprintf(os.Stdout, "  %d: %v\n", id, set.Issues[id])
	}
	return nil
}
