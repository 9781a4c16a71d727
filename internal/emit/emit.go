// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit renders parse and merge results: the JSON parse contract
// read by callers and the sandbox, YAML merge reports, and the combined
// Markdown artifact of a merge.
package emit

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/internal/category"
	"github.com/pdiddy/exam-engine/internal/pipeline"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// QuestionOutput is one entry of ParseOutput.Questions.
type QuestionOutput struct {
	ID           int           `json:"question_id" yaml:"question_id"`
	QuestionText string        `json:"question_text" yaml:"question_text"`
	Options      types.Options `json:"options" yaml:"options"`
	Answer       string        `json:"answer" yaml:"answer"`
	Explanation  string        `json:"explanation" yaml:"explanation"`
}

// ParseOutput is the JSON document printed by "parse --json".
// ParsedQuestions counts questions that came through with no issues.
type ParseOutput struct {
	Success         bool                       `json:"success" yaml:"success"`
	Subject         string                     `json:"subject,omitempty" yaml:"subject,omitempty"`
	TotalQuestions  int                        `json:"total_questions" yaml:"total_questions"`
	ParsedQuestions int                        `json:"parsed_questions" yaml:"parsed_questions"`
	FormatIssues    map[int][]types.IssueKind  `json:"format_issues" yaml:"format_issues"`
	Questions       []QuestionOutput           `json:"questions" yaml:"questions"`
	Conflicts       []types.IdentifierConflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Categories      map[string][]int           `json:"categories,omitempty" yaml:"categories,omitempty"`
	Error           string                     `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewParseOutput builds the successful parse document for set. When cats
// is non-nil the question identifiers are grouped by category.
func NewParseOutput(subject string, set pipeline.QuestionSet, cats *category.Table) ParseOutput {
	out := ParseOutput{
		Success:         true,
		Subject:         subject,
		TotalQuestions:  len(set.Questions),
		ParsedQuestions: set.Clean(),
		FormatIssues:    set.Issues(),
		Questions:       make([]QuestionOutput, len(set.Questions)),
		Conflicts:       set.Conflicts,
	}
	for i, q := range set.Questions {
		out.Questions[i] = QuestionOutput{
			ID:           q.ID,
			QuestionText: q.Stem,
			Options:      q.Options,
			Answer:       q.Answer,
			Explanation:  q.Explanation,
		}
	}
	out.GroupCategories(cats)
	return out
}

// GroupCategories fills Categories from the question identifiers. A nil
// table or an output without questions leaves it empty.
func (o *ParseOutput) GroupCategories(cats *category.Table) {
	if cats == nil || len(o.Questions) == 0 {
		return
	}
	ids := make([]int, len(o.Questions))
	for i, q := range o.Questions {
		ids[i] = q.ID
	}
	o.Categories = cats.Group(ids)
}

// Failure builds the parse document for a fatal error.
func Failure(subject string, err error) ParseOutput {
	return ParseOutput{
		Subject:      subject,
		FormatIssues: map[int][]types.IssueKind{},
		Questions:    []QuestionOutput{},
		Error:        err.Error(),
	}
}

// WriteJSON writes v as indented JSON followed by a newline. Non-ASCII
// text is written as-is.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// Summary writes a short human-readable account of a parse.
func Summary(w io.Writer, out ParseOutput) error {
	if !out.Success {
		_, err := fmt.Fprintf(w, "parse failed: %s\n", out.Error)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s: %d questions, %d clean, %d with issues, %d conflicts\n",
		displaySubject(out.Subject), out.TotalQuestions, out.ParsedQuestions,
		len(out.FormatIssues), len(out.Conflicts)); err != nil {
		return err
	}
	for _, id := range types.SortedIDs(out.FormatIssues) {
		if _, err := fmt.Fprintf(w, "  %d: %v\n", id, out.FormatIssues[id]); err != nil {
			return err
		}
	}
	for _, c := range out.Conflicts {
		if _, err := fmt.Fprintf(w, "  %d: repeated %d times with differing text\n", c.ID, len(c.RawTexts)); err != nil {
			return err
		}
	}
	return nil
}

func displaySubject(s string) string {
	if s == "" {
		return "document"
	}
	return s
}
