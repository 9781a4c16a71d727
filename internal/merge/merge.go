// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge pairs questions from a question document with answer
// records from a separately numbered answer document.
//
// The question document enumerates the output: every question identifier
// yields exactly one merged record, in ascending identifier order. Answer
// records without a question are reported as orphans and never merged.
package merge

import (
	"github.com/pdiddy/exam-engine/pkg/types"
)

// DefaultPlaceholder is the explanation of a question whose answer record
// is missing.
const DefaultPlaceholder = "answer missing"

// Report is the outcome of one merge.
type Report struct {
	// Questions holds one record per question identifier, ascending.
	Questions []types.MergedQuestion `json:"questions" yaml:"questions"`

	// Orphans holds answer records with no matching question, ascending.
	// Each carries SourceFlags.MissingQuestion.
	Orphans []types.MergedQuestion `json:"orphans,omitempty" yaml:"orphans,omitempty"`

	// UnmatchedQuestions lists question identifiers without an answer record.
	UnmatchedQuestions []int `json:"unmatched_questions,omitempty" yaml:"unmatched_questions,omitempty"`

	// UnmatchedAnswers lists answer identifiers without a question.
	UnmatchedAnswers []int `json:"unmatched_answers,omitempty" yaml:"unmatched_answers,omitempty"`
}

// Options tune a merge.
type Options struct {
	// Placeholder replaces the explanation of unanswered questions.
	// Empty uses DefaultPlaceholder.
	Placeholder string
}

// Merge combines questions and answers by identifier with default options.
func Merge(questions map[int]types.ParsedQuestion, answers map[int]types.AnswerRecord) Report {
	return MergeWith(questions, answers, Options{})
}

// MergeWith combines questions and answers by identifier.
//
// When both sides carry an identifier, the answer and explanation come
// from the answer record; the question's own answer is used only when the
// record's answer is empty. When the answer record is missing, the record
// is flagged and its explanation is the placeholder. The result is a pure
// function of the two maps.
func MergeWith(questions map[int]types.ParsedQuestion, answers map[int]types.AnswerRecord, opts Options) Report {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	var r Report
	for _, id := range types.SortedIDs(questions) {
		q := questions[id]
		m := types.MergedQuestion{
			ID:           id,
			QuestionText: q.Stem,
			Options:      q.Options,
			Answer:       q.Answer,
		}

		rec, ok := answers[id]
		if ok {
			if rec.Answer != "" {
				m.Answer = rec.Answer
			}
			m.Explanation = rec.Explanation
		} else {
			m.Explanation = placeholder
			m.SourceFlags.MissingAnswer = true
			r.UnmatchedQuestions = append(r.UnmatchedQuestions, id)
		}
		r.Questions = append(r.Questions, m)
	}

	for _, id := range types.SortedIDs(answers) {
		if _, ok := questions[id]; ok {
			continue
		}
		rec := answers[id]
		r.Orphans = append(r.Orphans, types.MergedQuestion{
			ID:          id,
			Answer:      rec.Answer,
			Explanation: rec.Explanation,
			SourceFlags: types.SourceFlags{MissingQuestion: true},
		})
		r.UnmatchedAnswers = append(r.UnmatchedAnswers, id)
	}

	return r
}

// MissingAnswerCount returns the number of merged questions without an
// answer record.
func (r Report) MissingAnswerCount() int {
	return len(r.UnmatchedQuestions)
}
