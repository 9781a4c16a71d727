// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoQuestionDoc = `【1】甲公司与乙公司签订买卖合同，该合同效力如何？
A. 有效
B. 无效
C. 可撤销
D. 效力待定
【解析】依法成立的合同自成立时生效。
【答案】A
【2】下列哪项属于物权？
A. 所有权
B. 债权
【解析】所有权是物权。
【答案】A
`

// runCLI executes the root command with args and returns the exit status
// and everything written to stdout.
func runCLI(t *testing.T, args ...string) (int, []byte) {
	t.Helper()
	resetFlags(parseCmd)
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(parseCmd)
	})
	return execute(), out.Bytes()
}

// resetFlags restores cmd's flags to their defaults; cobra keeps flag
// values between Execute calls in one process.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeOutput(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), string(data))
	return doc
}

func TestParseCommandFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no arguments", []string{"parse", "--json"}, "usage"},
		{"missing subject", []string{"parse", writeDoc(t, "q.txt", twoQuestionDoc), "--json"}, "usage"},
		{"missing file", []string{"parse", filepath.Join(dir, "absent.docx"), "民法", "--json"}, "container unreadable"},
		{"unsupported format", []string{"parse", writeDoc(t, "q.pdf", "%PDF-1.4"), "民法", "--json"}, "container unreadable"},
		{"corrupt docx", []string{"parse", writeDoc(t, "q.docx", "not a zip"), "民法", "--json"}, "container unreadable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)

			doc := decodeOutput(t, out)
			assert.Equal(t, false, doc["success"])
			assert.Contains(t, doc["error"], tt.wantErr)
			assert.Equal(t, map[string]any{}, doc["format_issues"])
			assert.Equal(t, []any{}, doc["questions"])
		})
	}
}

func TestParseCommandSuccessShape(t *testing.T) {
	path := writeDoc(t, "q.txt", twoQuestionDoc)

	code, out := runCLI(t, "parse", path, "民法", "--json")
	require.Equal(t, 0, code, string(out))

	doc := decodeOutput(t, out)
	for _, key := range []string{"success", "total_questions", "parsed_questions", "format_issues", "questions"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "民法", doc["subject"])
	assert.Equal(t, float64(2), doc["total_questions"])
	assert.Equal(t, float64(1), doc["parsed_questions"])
	assert.Equal(t, map[string]any{"2": []any{"UnexpectedOptionCount"}}, doc["format_issues"])
	assert.NotContains(t, doc, "error")

	questions, ok := doc["questions"].([]any)
	require.True(t, ok)
	require.Len(t, questions, 2)
	first := questions[0].(map[string]any)
	assert.Equal(t, float64(1), first["question_id"])
	assert.Equal(t, "A", first["answer"])
	assert.Equal(t, "依法成立的合同自成立时生效。", first["explanation"])
	assert.Len(t, first["options"], 4)
}

func TestParseCommandHonorsFlags(t *testing.T) {
	path := writeDoc(t, "q.txt", twoQuestionDoc)

	code, out := runCLI(t, "parse", path, "民法", "--json", "--expected-options", "-1")
	require.Equal(t, 0, code, string(out))
	doc := decodeOutput(t, out)
	assert.Equal(t, float64(2), doc["parsed_questions"])
	assert.Equal(t, map[string]any{}, doc["format_issues"])

	// Flags from the previous run must not leak into this one.
	code, out = runCLI(t, "parse", path, "民法", "--json")
	require.Equal(t, 0, code, string(out))
	assert.Equal(t, float64(1), decodeOutput(t, out)["parsed_questions"])
}

func TestParseCommandSummary(t *testing.T) {
	path := writeDoc(t, "q.txt", twoQuestionDoc)

	code, out := runCLI(t, "parse", path, "民法")
	assert.Equal(t, 0, code)
	assert.Contains(t, string(out), "2 questions, 1 clean, 1 with issues")
}
