// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/exam-engine/internal/merge"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// answerLabel prefixes the bold first line of an answer block.
const answerLabel = "正确答案："

const divider = "\n---\n\n"

// WriteMarkdown renders the merged artifact: for each question in
// ascending identifier order, the question text and options, then either
// the answer block (bold answer line, then explanation) or the placeholder
// alone when the answer record is missing. Entries are separated by "---".
func WriteMarkdown(w io.Writer, r merge.Report) error {
	var b strings.Builder
	for i, q := range r.Questions {
		if i > 0 {
			b.WriteString(divider)
		}
		writeQuestion(&b, q)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeQuestion(b *strings.Builder, q types.MergedQuestion) {
	fmt.Fprintf(b, "%d. %s\n", q.ID, q.QuestionText)
	if len(q.Options) > 0 {
		b.WriteByte('\n')
		for _, opt := range q.Options {
			fmt.Fprintf(b, "%s. %s\n", opt.Key, opt.Text)
		}
	}
	b.WriteByte('\n')

	if q.SourceFlags.MissingAnswer {
		b.WriteString(q.Explanation)
		b.WriteByte('\n')
		return
	}

	answer := q.Answer
	if answer == "" {
		answer = "?"
	}
	fmt.Fprintf(b, "**%s%s**\n", answerLabel, answer)
	if q.Explanation != "" {
		b.WriteByte('\n')
		b.WriteString(q.Explanation)
		b.WriteByte('\n')
	}
}
