// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

const (
	// explanationMarker separates the stem/options head from the explanation.
	explanationMarker = "【解析】"
)

// optionPattern is one row of the option-delimiter table. Each regexp
// matches an option letter plus its delimiter; group 1 is the letter.
type optionPattern struct {
	name string
	re   *regexp.Regexp

	// strict patterns accept only a run contiguous from A. The loose row
	// accepts any strictly increasing letters, leaving gaps for the
	// validator to report.
	strict bool
}

// optionPatterns is tried in order. A complete A-D run ends the search;
// otherwise the longest run wins and ties go to the earlier row.
var optionPatterns = []optionPattern{
	{name: "dot", re: regexp.MustCompile(`([A-D])[ \t]*[.．]`), strict: true},
	{name: "enumeration-comma", re: regexp.MustCompile(`([A-D])[ \t]*、`), strict: true},
	{name: "colon", re: regexp.MustCompile(`([A-D])[ \t]*[:：]`), strict: true},
	{name: "mixed", re: regexp.MustCompile(`([A-D])[ \t]*[.．、:：]`), strict: true},
	{name: "loose", re: regexp.MustCompile(`([A-D])[ \t]*[.．、:：]`), strict: false},
}

// answerPatterns is tried in priority order; the first match wins.
// Group 1 is the answer letters.
var answerPatterns = []struct {
	name string
	re   *regexp.Regexp
	// clause patterns are explicit answer statements; the text after them
	// in an answer document is the explanation.
	clause bool
}{
	{name: "tagged", re: regexp.MustCompile(`【答案】\s*[:：]?\s*([A-D]+)`), clause: true},
	{name: "labelled", re: regexp.MustCompile(`(?:正确)?答案\s*[:：]\s*([A-D]+)`), clause: true},
	{name: "conclusion", re: regexp.MustCompile(`故选\s*([A-D]+)`), clause: true},
	{name: "implicit", re: regexp.MustCompile(`([A-D])\s*项?[是为]?正确`), clause: false},
}

var (
	// answerClauseRe finds where an answer statement begins inside the
	// head; option text never extends past it.
	answerClauseRe = regexp.MustCompile(`【答案】|(?:正确)?答案\s*[:：]|故选`)

	// taggedAnswerRe is removed from explanations once recognized.
	taggedAnswerRe = regexp.MustCompile(`【答案】\s*[:：]?\s*[A-D]+`)

	// explanationLabelRe strips a leading explanation label in answer documents.
	explanationLabelRe = regexp.MustCompile(`^\s*(?:【解析】|解析\s*[:：])`)
)
