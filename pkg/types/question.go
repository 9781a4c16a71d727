// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records exchanged between the segmentation,
// extraction, validation, and merge stages, plus their configuration.
package types

import "sort"

// IssueKind names a recoverable extraction problem attached to one
// question identifier. Issues never abort a batch.
type IssueKind string

const (
	IssueMissingExplanation    IssueKind = "MissingExplanation"
	IssueMissingAnswer         IssueKind = "MissingAnswer"
	IssueNoOptionsFound        IssueKind = "NoOptionsFound"
	IssueEmptyStem             IssueKind = "EmptyStem"
	IssueNonSequentialOptions  IssueKind = "NonSequentialOptions"
	IssueOptionBleed           IssueKind = "OptionBleed"
	IssueUnexpectedOptionCount IssueKind = "UnexpectedOptionCount"
)

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// QuestionBlock is the contiguous slice of source text attributed to one
// identifier marker.
type QuestionBlock struct {
	ID      int    `json:"id" yaml:"id"`
	RawText string `json:"raw_text" yaml:"raw_text"`
	Span    Span   `json:"span" yaml:"span"`

	// MarkerEnd is the offset into RawText of the first byte after the
	// identifier marker. Text before it is the marker itself plus any
	// preamble attached to the first block of a document.
	MarkerEnd int `json:"marker_end" yaml:"marker_end"`
}

// Body returns the block text following the identifier marker.
func (b QuestionBlock) Body() string {
	if b.MarkerEnd < 0 || b.MarkerEnd > len(b.RawText) {
		return b.RawText
	}
	return b.RawText[b.MarkerEnd:]
}

// ParsedQuestion is the output of field extraction for one block.
// If Issues contains IssueOptionBleed the option texts are not authoritative.
type ParsedQuestion struct {
	ID          int         `json:"id" yaml:"id"`
	Stem        string      `json:"stem" yaml:"stem"`
	Options     Options     `json:"options" yaml:"options"`
	Answer      string      `json:"answer,omitempty" yaml:"answer,omitempty"`
	Explanation string      `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Issues      []IssueKind `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// HasIssue reports whether kind is among the question's issues.
func (q ParsedQuestion) HasIssue(kind IssueKind) bool {
	for _, k := range q.Issues {
		if k == kind {
			return true
		}
	}
	return false
}

// AnswerRecord is one entry of a separately numbered answer document
// ("N. 正确答案: X" followed by the explanation).
type AnswerRecord struct {
	ID          int    `json:"id" yaml:"id"`
	Answer      string `json:"answer" yaml:"answer"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// SourceFlags records which side of a merge was missing for an identifier.
type SourceFlags struct {
	MissingQuestion bool `json:"missing_question" yaml:"missing_question"`
	MissingAnswer   bool `json:"missing_answer" yaml:"missing_answer"`
}

// MergedQuestion pairs a question with its answer record.
type MergedQuestion struct {
	ID           int         `json:"question_id" yaml:"question_id"`
	QuestionText string      `json:"question_text" yaml:"question_text"`
	Options      Options     `json:"options" yaml:"options"`
	Answer       string      `json:"answer" yaml:"answer"`
	Explanation  string      `json:"explanation" yaml:"explanation"`
	SourceFlags  SourceFlags `json:"source_flags" yaml:"source_flags"`
}

// IdentifierConflict reports an identifier that occurs more than once in one
// document with differing text. RawTexts holds every occurrence in
// document order.
type IdentifierConflict struct {
	ID       int      `json:"id" yaml:"id"`
	RawTexts []string `json:"raw_texts" yaml:"raw_texts"`
}

// SortedIDs returns the keys of an identifier-keyed map in ascending order.
func SortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
