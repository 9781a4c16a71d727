// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists merged questions in SQLite so reviewed sets can
// be searched and exported across runs. Each ingest is recorded as a run
// with a UUID; questions are keyed by (subject, question_id) and replaced
// on re-ingest.
//
// Full-text search needs go-sqlite3 built with the sqlite_fts5 tag.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

const dbFile = "exam.db"

const defaultMaxResults = 20

// Store manages the question database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates cfg.Dir/exam.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("store directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
		now:        time.Now,
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			source TEXT,
			ingested_at TEXT NOT NULL,
			questions INTEGER NOT NULL,
			missing_answers INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			question_text TEXT NOT NULL,
			options TEXT NOT NULL,
			options_text TEXT NOT NULL,
			answer TEXT,
			explanation TEXT,
			missing_answer INTEGER NOT NULL DEFAULT 0,
			UNIQUE(subject, question_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject)`,
		`CREATE TABLE IF NOT EXISTS issues (
			subject TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (subject, question_id, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_kind ON issues(kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='questions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	// The trigram tokenizer matches substrings, which suits unsegmented
	// Chinese text.
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE questions_fts USING fts5(
			question_text, options_text, explanation,
			content=questions, content_rowid=rowid, tokenize='trigram')`,
		`CREATE TRIGGER questions_ai AFTER INSERT ON questions BEGIN
			INSERT INTO questions_fts(rowid, question_text, options_text, explanation)
			VALUES (new.rowid, new.question_text, new.options_text, new.explanation);
		END`,
		`CREATE TRIGGER questions_ad AFTER DELETE ON questions BEGIN
			INSERT INTO questions_fts(questions_fts, rowid, question_text, options_text, explanation)
			VALUES ('delete', old.rowid, old.question_text, old.options_text, old.explanation);
		END`,
		`CREATE TRIGGER questions_au AFTER UPDATE ON questions BEGIN
			INSERT INTO questions_fts(questions_fts, rowid, question_text, options_text, explanation)
			VALUES ('delete', old.rowid, old.question_text, old.options_text, old.explanation);
			INSERT INTO questions_fts(rowid, question_text, options_text, explanation)
			VALUES (new.rowid, new.question_text, new.options_text, new.explanation);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds the counts of one ingest run.
type IngestSummary struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Inserted int    `json:"inserted" yaml:"inserted"`
	Updated  int    `json:"updated" yaml:"updated"`
}

// Total returns the number of questions written.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Updated
}

// Ingest records a run for subject and upserts every merged question.
// issues replaces the stored issue kinds of each ingested identifier.
// source names the input documents and is informational.
func (s *Store) Ingest(ctx context.Context, subject, source string, merged []types.MergedQuestion, issues map[int][]types.IssueKind) (IngestSummary, error) {
	if subject == "" {
		return IngestSummary{}, fmt.Errorf("subject is required")
	}

	summary := IngestSummary{RunID: uuid.NewString()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	missing := 0
	for _, m := range merged {
		if m.SourceFlags.MissingAnswer {
			missing++
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, subject, source, ingested_at, questions, missing_answers)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, subject, source, s.now().UTC().Format(time.RFC3339Nano), len(merged), missing,
	)
	if err != nil {
		return summary, fmt.Errorf("recording run: %w", err)
	}

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (subject, question_id, run_id, question_text, options, options_text, answer, explanation, missing_answer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(subject, question_id) DO UPDATE SET
			run_id=excluded.run_id, question_text=excluded.question_text,
			options=excluded.options, options_text=excluded.options_text,
			answer=excluded.answer, explanation=excluded.explanation,
			missing_answer=excluded.missing_answer`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for _, m := range merged {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM questions WHERE subject = ? AND question_id = ?`, subject, m.ID,
		).Scan(&exists)
		if err != nil {
			return summary, fmt.Errorf("checking question %d: %w", m.ID, err)
		}

		optionsJSON, err := json.Marshal(m.Options)
		if err != nil {
			return summary, fmt.Errorf("encoding options of question %d: %w", m.ID, err)
		}
		_, err = upsert.ExecContext(ctx,
			subject, m.ID, summary.RunID, m.QuestionText, string(optionsJSON), optionsText(m.Options),
			m.Answer, m.Explanation, m.SourceFlags.MissingAnswer,
		)
		if err != nil {
			return summary, fmt.Errorf("upserting question %d: %w", m.ID, err)
		}

		if err := replaceIssues(ctx, tx, subject, m.ID, issues[m.ID]); err != nil {
			return summary, err
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing run: %w", err)
	}
	return summary, nil
}

func replaceIssues(ctx context.Context, tx *sql.Tx, subject string, id int, kinds []types.IssueKind) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM issues WHERE subject = ? AND question_id = ?`, subject, id,
	); err != nil {
		return fmt.Errorf("clearing issues of question %d: %w", id, err)
	}
	for _, k := range kinds {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO issues (subject, question_id, kind) VALUES (?, ?, ?)`,
			subject, id, string(k),
		); err != nil {
			return fmt.Errorf("recording issue %s of question %d: %w", k, id, err)
		}
	}
	return nil
}

// optionsText flattens options into the searchable "A. text" lines.
func optionsText(opts types.Options) string {
	lines := make([]string, len(opts))
	for i, o := range opts {
		lines[i] = o.Key + ". " + o.Text
	}
	return strings.Join(lines, "\n")
}

// Run is one recorded ingest.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	Subject        string    `json:"subject" yaml:"subject"`
	Source         string    `json:"source" yaml:"source"`
	IngestedAt     time.Time `json:"ingested_at" yaml:"ingested_at"`
	Questions      int       `json:"questions" yaml:"questions"`
	MissingAnswers int       `json:"missing_answers" yaml:"missing_answers"`
}

// Runs lists recorded ingests, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, COALESCE(source, ''), ingested_at, questions, missing_answers
		 FROM runs ORDER BY ingested_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			at string
		)
		if err := rows.Scan(&r.ID, &r.Subject, &r.Source, &at, &r.Questions, &r.MissingAnswers); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.IngestedAt, _ = time.Parse(time.RFC3339Nano, at)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
