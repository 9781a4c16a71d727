// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate flags parsed questions whose extraction looks wrong.
// Every rule is checked independently and all findings are reported; the
// results are diagnostics for review and never stop a batch.
package validate

import (
	"strings"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// DefaultBleedKeywords are words that belong to explanations, not options.
var DefaultBleedKeywords = []string{"错误", "正确", "【答案】", "故选", "理由"}

// Rules parameterizes validation.
type Rules struct {
	// ExpectedOptions is the option count every question should have.
	// Zero disables the check (true/false or free-answer sets).
	ExpectedOptions int

	// BleedKeywords trigger OptionBleed when found in option text.
	BleedKeywords []string
}

// DefaultRules expects four options and uses DefaultBleedKeywords.
func DefaultRules() Rules {
	return Rules{
		ExpectedOptions: types.MaxOptions,
		BleedKeywords:   DefaultBleedKeywords,
	}
}

// RulesFromConfig builds rules from parse settings, falling back to the
// defaults for unset fields. A negative ExpectedOptions disables the count
// check; zero means "use the default".
func RulesFromConfig(cfg types.ParseConfig) Rules {
	r := DefaultRules()
	switch {
	case cfg.ExpectedOptions > 0:
		r.ExpectedOptions = cfg.ExpectedOptions
	case cfg.ExpectedOptions < 0:
		r.ExpectedOptions = 0
	}
	if len(cfg.BleedKeywords) > 0 {
		r.BleedKeywords = cfg.BleedKeywords
	}
	return r
}

// Validate applies every rule to q and returns the issues found, in rule
// order. It does not modify q.
func Validate(q types.ParsedQuestion, rules Rules) []types.IssueKind {
	var issues []types.IssueKind

	if rules.ExpectedOptions > 0 && len(q.Options) != rules.ExpectedOptions {
		issues = append(issues, types.IssueUnexpectedOptionCount)
	}
	if hasBleed(q.Options, rules.BleedKeywords) {
		issues = append(issues, types.IssueOptionBleed)
	}
	if strings.TrimSpace(q.Stem) == "" {
		issues = append(issues, types.IssueEmptyStem)
	}
	if !sequential(q.Options) {
		issues = append(issues, types.IssueNonSequentialOptions)
	}
	return issues
}

func hasBleed(opts types.Options, keywords []string) bool {
	for _, opt := range opts {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(opt.Text, kw) {
				return true
			}
		}
	}
	return false
}

// sequential reports whether option letters run A, B, C... without gaps.
// No options counts as sequential; NoOptionsFound covers that case.
func sequential(opts types.Options) bool {
	for i, opt := range opts {
		if opt.Key != string(rune('A'+i)) {
			return false
		}
	}
	return true
}

// Merge appends the kinds in extra that are not already in issues,
// preserving first-seen order.
func Merge(issues []types.IssueKind, extra ...types.IssueKind) []types.IssueKind {
	for _, k := range extra {
		found := false
		for _, have := range issues {
			if have == k {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, k)
		}
	}
	return issues
}
