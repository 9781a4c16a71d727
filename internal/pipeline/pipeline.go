// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the parse stages over one document's text:
// segment, extract, validate, and identifier-conflict detection. It is
// the in-process entry point the CLI, the merge command, and the sandbox
// child process all call.
package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/pdiddy/exam-engine/internal/extract"
	"github.com/pdiddy/exam-engine/internal/segment"
	"github.com/pdiddy/exam-engine/internal/validate"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// Options configures a parse run. The zero value parses bracket-tagged
// question documents with the default rules and logs nothing.
type Options struct {
	// Logger receives one debug line per block and an info summary.
	Logger zerolog.Logger

	// Rules overrides validate.DefaultRules when non-nil.
	Rules *validate.Rules

	// Convention selects the identifier marker style. Answer documents
	// are normally dotted; question documents bracket-tagged.
	Convention segment.Convention
}

func (o Options) rules() validate.Rules {
	if o.Rules != nil {
		return *o.Rules
	}
	return validate.DefaultRules()
}

// QuestionSet is the result of parsing a question document.
type QuestionSet struct {
	// Blocks is the number of blocks the segmenter produced, duplicates
	// included.
	Blocks int

	// Questions holds one record per identifier in document order. Where
	// an identifier repeats, the first occurrence is kept.
	Questions []types.ParsedQuestion

	// Conflicts lists identifiers repeated with differing text.
	Conflicts []types.IdentifierConflict
}

// Index maps identifiers to questions.
func (s QuestionSet) Index() map[int]types.ParsedQuestion {
	idx := make(map[int]types.ParsedQuestion, len(s.Questions))
	for _, q := range s.Questions {
		if _, ok := idx[q.ID]; !ok {
			idx[q.ID] = q
		}
	}
	return idx
}

// Issues maps identifiers with at least one issue to their issue list.
func (s QuestionSet) Issues() map[int][]types.IssueKind {
	issues := make(map[int][]types.IssueKind)
	for _, q := range s.Questions {
		if len(q.Issues) > 0 {
			issues[q.ID] = q.Issues
		}
	}
	return issues
}

// Clean counts questions with no issues.
func (s QuestionSet) Clean() int {
	n := 0
	for _, q := range s.Questions {
		if len(q.Issues) == 0 {
			n++
		}
	}
	return n
}

// ParseQuestions parses the joined paragraph text of a question document.
func ParseQuestions(text string, opts Options) QuestionSet {
	log := opts.Logger
	rules := opts.rules()

	blocks := segment.Collect(segment.Segment(text, opts.Convention))
	set := QuestionSet{
		Blocks:    len(blocks),
		Conflicts: segment.Conflicts(blocks),
	}

	seen := make(map[int]bool, len(blocks))
	for _, b := range blocks {
		if seen[b.ID] {
			log.Debug().Int("question_id", b.ID).Msg("skipping repeated identifier")
			continue
		}
		seen[b.ID] = true

		q := extract.Extract(b)
		q.Issues = validate.Merge(q.Issues, validate.Validate(q, rules)...)
		log.Debug().
			Int("question_id", q.ID).
			Int("options", len(q.Options)).
			Str("answer", q.Answer).
			Strs("issues", issueStrings(q.Issues)).
			Msg("extracted question")
		set.Questions = append(set.Questions, q)
	}

	for _, c := range set.Conflicts {
		log.Warn().Int("question_id", c.ID).Int("occurrences", len(c.RawTexts)).
			Msg("identifier repeated with differing text")
	}
	log.Info().
		Int("blocks", set.Blocks).
		Int("questions", len(set.Questions)).
		Int("clean", set.Clean()).
		Int("conflicts", len(set.Conflicts)).
		Msg("parsed question document")
	return set
}

// AnswerSet is the result of parsing an answer document.
type AnswerSet struct {
	Blocks int

	// Records holds one record per identifier in document order, first
	// occurrence kept.
	Records []types.AnswerRecord

	// Issues maps identifiers to the problems found extracting them.
	Issues map[int][]types.IssueKind

	Conflicts []types.IdentifierConflict
}

// Index maps identifiers to answer records.
func (s AnswerSet) Index() map[int]types.AnswerRecord {
	idx := make(map[int]types.AnswerRecord, len(s.Records))
	for _, r := range s.Records {
		if _, ok := idx[r.ID]; !ok {
			idx[r.ID] = r
		}
	}
	return idx
}

// ParseAnswers parses the joined paragraph text of an answer document.
func ParseAnswers(text string, opts Options) AnswerSet {
	log := opts.Logger

	blocks := segment.Collect(segment.Segment(text, opts.Convention))
	set := AnswerSet{
		Blocks:    len(blocks),
		Issues:    make(map[int][]types.IssueKind),
		Conflicts: segment.Conflicts(blocks),
	}

	seen := make(map[int]bool, len(blocks))
	for _, b := range blocks {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true

		rec, issues := extract.ExtractAnswer(b)
		if len(issues) > 0 {
			set.Issues[rec.ID] = issues
		}
		log.Debug().Int("question_id", rec.ID).Str("answer", rec.Answer).Msg("extracted answer")
		set.Records = append(set.Records, rec)
	}

	log.Info().
		Int("blocks", set.Blocks).
		Int("records", len(set.Records)).
		Int("with_issues", len(set.Issues)).
		Int("conflicts", len(set.Conflicts)).
		Msg("parsed answer document")
	return set
}

func issueStrings(issues []types.IssueKind) []string {
	out := make([]string, len(issues))
	for i, k := range issues {
		out[i] = string(k)
	}
	return out
}
