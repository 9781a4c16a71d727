// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// optionMark is one option-letter marker found in the option region.
type optionMark struct {
	letter     byte
	start, end int // start of the letter, end of the delimiter

	// glued marks follow a Latin letter ("USA."). They never start a run
	// and are accepted only as the letter the run expects next
	// ("A.fooB.bar").
	glued bool
}

// bestRun evaluates the option table against region and returns the
// winning run of markers, or nil when no row yields one.
func bestRun(region string) []optionMark {
	var best []optionMark
	for _, p := range optionPatterns {
		run := selectRun(findMarks(region, p), p.strict)
		if len(run) == types.MaxOptions {
			return run
		}
		if len(run) > len(best) {
			best = run
		}
	}
	return best
}

// findMarks returns every marker the pattern matches in region.
func findMarks(region string, p optionPattern) []optionMark {
	var marks []optionMark
	for _, loc := range p.re.FindAllStringSubmatchIndex(region, -1) {
		marks = append(marks, optionMark{
			letter: region[loc[2]],
			start:  loc[0],
			end:    loc[1],
			glued:  afterLatinLetter(region, loc[2]),
		})
	}
	return marks
}

// selectRun picks the markers that delimit options. A strict run starts at
// A and accepts only the next letter in sequence; a loose run accepts any
// strictly increasing letters. Markers that do not fit are treated as
// ordinary option text.
func selectRun(marks []optionMark, strict bool) []optionMark {
	var run []optionMark
	next := byte('A')
	for _, m := range marks {
		if m.glued && (len(run) == 0 || m.letter != run[len(run)-1].letter+1) {
			continue
		}
		switch {
		case strict && m.letter == next:
			run = append(run, m)
			next++
		case !strict && (len(run) == 0 || m.letter > run[len(run)-1].letter):
			run = append(run, m)
		}
	}
	return run
}

// optionsFromRun cuts region into option texts. Each option ends where the
// next accepted marker starts; the last one ends with the region.
func optionsFromRun(region string, run []optionMark) types.Options {
	opts := make(types.Options, 0, len(run))
	for i, m := range run {
		end := len(region)
		if i+1 < len(run) {
			end = run[i+1].start
		}
		opts = append(opts, types.Option{
			Key:  string(m.letter),
			Text: strings.TrimSpace(region[m.end:end]),
		})
	}
	return opts
}
