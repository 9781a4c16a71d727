// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits document text into question blocks keyed by a
// numeric identifier marker.
//
// A block runs from one marker to the byte before the next marker, or to
// end of text for the last one. Markers are assumed never to occur inside
// question bodies as ordinary text; when they do, the block is cut there.
package segment

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Convention selects the identifier marker syntax of a document.
type Convention int

const (
	// BracketTag matches full-width bracketed numbers such as 【20230101】.
	// Question documents use this convention.
	BracketTag Convention = iota

	// DottedNumeral matches a number followed by "." or "．" at the start of
	// a line. Answer documents use this convention.
	DottedNumeral
)

var (
	bracketRe = regexp.MustCompile(`【\s*([0-9０-９]+)\s*】`)
	dottedRe  = regexp.MustCompile(`(?m)^[ \t\x{3000}]*([0-9０-９]+)[ \t]*[.．]`)
)

func (c Convention) String() string {
	switch c {
	case BracketTag:
		return "bracket"
	case DottedNumeral:
		return "dotted"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// ParseConvention maps a configuration name to a Convention.
func ParseConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bracket", "":
		return BracketTag, nil
	case "dotted":
		return DottedNumeral, nil
	default:
		return 0, fmt.Errorf("unknown identifier convention %q: use bracket or dotted", name)
	}
}

// marker is one identifier occurrence in the text.
type marker struct {
	id         int
	start, end int
}

// Segment returns the question blocks of text in document order. The
// sequence is lazy and restartable: every range over it rescans text.
// Empty text, or text with no marker, yields nothing.
//
// Text preceding the first marker is attached to the first block, so the
// spans of all yielded blocks are contiguous and cover the whole input.
func Segment(text string, conv Convention) iter.Seq[types.QuestionBlock] {
	return func(yield func(types.QuestionBlock) bool) {
		markers := findMarkers(text, conv)
		for i, m := range markers {
			start := m.start
			if i == 0 {
				start = 0
			}
			end := len(text)
			if i+1 < len(markers) {
				end = markers[i+1].start
			}
			block := types.QuestionBlock{
				ID:        m.id,
				RawText:   text[start:end],
				Span:      types.Span{Start: start, End: end},
				MarkerEnd: m.end - start,
			}
			if !yield(block) {
				return
			}
		}
	}
}

// Collect materializes a block sequence.
func Collect(seq iter.Seq[types.QuestionBlock]) []types.QuestionBlock {
	var blocks []types.QuestionBlock
	for b := range seq {
		blocks = append(blocks, b)
	}
	return blocks
}

// findMarkers locates every non-overlapping identifier marker in text.
// Candidates whose number does not fit an int, or dotted numerals that are
// really decimals ("3.5"), are skipped.
func findMarkers(text string, conv Convention) []marker {
	re := bracketRe
	if conv == DottedNumeral {
		re = dottedRe
	}

	var markers []marker
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if conv == DottedNumeral && followedByDigit(text, loc[1]) {
			continue
		}
		id, ok := parseID(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		markers = append(markers, marker{id: id, start: loc[0], end: loc[1]})
	}
	return markers
}

func followedByDigit(text string, pos int) bool {
	if pos >= len(text) {
		return false
	}
	c := text[pos]
	return c >= '0' && c <= '9'
}

// parseID folds full-width digits to ASCII and parses the identifier.
func parseID(digits string) (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(digits))
	if err != nil {
		return 0, false
	}
	return n, true
}
