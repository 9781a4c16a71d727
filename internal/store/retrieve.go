// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// minFTSQuery is the shortest query, in runes, the trigram index can
// answer. Shorter queries fall back to a substring scan.
const minFTSQuery = 3

// QueryOptions holds parameters for question queries.
type QueryOptions struct {
	// Query is matched against question text, options, and explanation.
	Query string

	// Subject filters by subject.
	Subject string

	// Issue filters to questions carrying this issue kind.
	Issue types.IssueKind

	// MissingAnswer filters to questions merged without an answer record.
	MissingAnswer bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Subject == "" && q.Issue == "" && !q.MissingAnswer
}

// QueryResult is a stored question with its subject, run, and issues.
type QueryResult struct {
	types.MergedQuestion `yaml:",inline"`
	Subject              string            `json:"subject" yaml:"subject"`
	RunID                string            `json:"run_id" yaml:"run_id"`
	Issues               []types.IssueKind `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Retrieve queries stored questions. Full-text results are ranked by
// relevance; everything else is ordered by subject and identifier.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = utf8.RuneCountInString(opts.Query) >= minFTSQuery
	)

	const columns = `q.subject, q.question_id, q.run_id, q.question_text, q.options,
		COALESCE(q.answer, ''), COALESCE(q.explanation, ''), q.missing_answer`

	if useFTS {
		qb.WriteString(`SELECT ` + columns + `
			FROM questions_fts
			JOIN questions q ON q.rowid = questions_fts.rowid
			WHERE questions_fts MATCH ?`)
		args = append(args, ftsPhrase(opts.Query))
	} else {
		qb.WriteString(`SELECT ` + columns + ` FROM questions q WHERE 1=1`)
		if opts.Query != "" {
			qb.WriteString(` AND (instr(q.question_text, ?) > 0 OR instr(q.options_text, ?) > 0 OR instr(q.explanation, ?) > 0)`)
			args = append(args, opts.Query, opts.Query, opts.Query)
		}
	}

	if opts.Subject != "" {
		qb.WriteString(` AND q.subject = ?`)
		args = append(args, opts.Subject)
	}
	if opts.Issue != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM issues i
			WHERE i.subject = q.subject AND i.question_id = q.question_id AND i.kind = ?)`)
		args = append(args, string(opts.Issue))
	}
	if opts.MissingAnswer {
		qb.WriteString(` AND q.missing_answer = 1`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY questions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY q.subject, q.question_id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr          QueryResult
			optionsJSON string
		)
		if err := rows.Scan(
			&qr.Subject, &qr.ID, &qr.RunID, &qr.QuestionText, &optionsJSON,
			&qr.Answer, &qr.Explanation, &qr.SourceFlags.MissingAnswer,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &qr.Options); err != nil {
			return nil, fmt.Errorf("decoding options of question %d: %w", qr.ID, err)
		}
		results = append(results, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range results {
		kinds, err := s.issuesOf(ctx, results[i].Subject, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Issues = kinds
	}
	return results, nil
}

func (s *Store) issuesOf(ctx context.Context, subject string, id int) ([]types.IssueKind, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind FROM issues WHERE subject = ? AND question_id = ? ORDER BY kind`, subject, id)
	if err != nil {
		return nil, fmt.Errorf("loading issues of question %d: %w", id, err)
	}
	defer rows.Close()

	var kinds []types.IssueKind
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		kinds = append(kinds, types.IssueKind(k))
	}
	return kinds, rows.Err()
}

// ftsPhrase quotes q as a single FTS5 phrase so punctuation in exam text
// is not read as query syntax.
func ftsPhrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}
