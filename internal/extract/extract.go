// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns one question block into a typed record: stem,
// lettered options, answer, and explanation.
//
// Extraction never fails. Malformed blocks produce a partial record whose
// Issues name what could not be found; the validate package adds the
// plausibility checks on top.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Extract parses a question-document block.
//
// The block body is split at the explanation marker into head and
// explanation. The option region is the head up to the first answer
// clause; the stem is the option region up to the first accepted option
// marker, and each option runs to the next accepted marker or the end of
// the option region. The answer is taken from the whole body.
func Extract(block types.QuestionBlock) types.ParsedQuestion {
	q := types.ParsedQuestion{ID: block.ID}
	body := block.Body()

	head, explanation, found := strings.Cut(body, explanationMarker)
	if !found {
		q.Issues = append(q.Issues, types.IssueMissingExplanation)
	}

	region := head
	if loc := answerClauseRe.FindStringIndex(head); loc != nil {
		region = head[:loc[0]]
	}

	run := bestRun(region)
	if len(run) == 0 {
		q.Stem = strings.TrimSpace(region)
		q.Issues = append(q.Issues, types.IssueNoOptionsFound)
	} else {
		q.Stem = strings.TrimSpace(region[:run[0].start])
		q.Options = optionsFromRun(region, run)
	}

	m, ok := findAnswer(body)
	if ok {
		q.Answer = m.letters
	} else {
		q.Issues = append(q.Issues, types.IssueMissingAnswer)
	}

	// The matched clause is cut when it sits in the explanation; tagged
	// clauses are always cut.
	if ok && m.clause && found {
		off := len(head) + len(explanationMarker)
		if m.start >= off {
			explanation = explanation[:m.start-off] + explanation[m.end-off:]
		}
	}
	q.Explanation = strings.TrimSpace(taggedAnswerRe.ReplaceAllString(explanation, ""))
	return q
}

// ExtractAnswer parses an answer-document block ("N. 正确答案: X" followed
// by the explanation). The explanation is the text after the answer
// clause with any leading explanation label removed.
func ExtractAnswer(block types.QuestionBlock) (types.AnswerRecord, []types.IssueKind) {
	rec := types.AnswerRecord{ID: block.ID}
	body := block.Body()

	var issues []types.IssueKind
	m, ok := findAnswer(body)
	rest := body
	if ok {
		rec.Answer = m.letters
		if m.clause {
			rest = body[m.end:]
		}
	} else {
		issues = append(issues, types.IssueMissingAnswer)
	}

	rest = explanationLabelRe.ReplaceAllString(rest, "")
	rec.Explanation = strings.TrimSpace(rest)
	if rec.Explanation == "" {
		issues = append(issues, types.IssueMissingExplanation)
	}
	return rec, issues
}

// answerMatch is the winning answer-table match in a block.
type answerMatch struct {
	letters    string
	start, end int  // span of the whole match
	clause     bool // an explicit answer statement, not an implicit phrase
}

// findAnswer applies the answer table to text and reports whether any
// pattern matched.
func findAnswer(text string) (answerMatch, bool) {
	for _, p := range answerPatterns {
		loc := firstBounded(p.re, text)
		if loc == nil {
			continue
		}
		return answerMatch{
			letters: text[loc[2]:loc[3]],
			start:   loc[0],
			end:     loc[1],
			clause:  p.clause,
		}, true
	}
	return answerMatch{}, false
}

// firstBounded returns the submatch indices of the first match whose
// group 1 is not glued to a preceding Latin letter ("USA." is not option A).
func firstBounded(re *regexp.Regexp, text string) []int {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if !afterLatinLetter(text, loc[2]) {
			return loc
		}
	}
	return nil
}

func afterLatinLetter(text string, pos int) bool {
	if pos == 0 {
		return false
	}
	c := text[pos-1]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
