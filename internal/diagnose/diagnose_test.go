// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package diagnose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exam-engine/internal/segment"
)

func TestCheckTextDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	require.NoError(t, os.WriteFile(path, []byte("【1】a A.x\n【2】b A.y\n"), 0o600))

	r := Check(path)
	assert.True(t, r.OK(), "problems: %v", r.Problems)
	assert.Empty(t, r.Problems)
	assert.Equal(t, "-rw-------", r.Mode)
	assert.Equal(t, 2, r.Paragraphs)
	assert.Equal(t, 2, r.Markers["bracket"])
	assert.Equal(t, 0, r.Markers["dotted"])

	conv, ok := r.Suggested()
	assert.True(t, ok)
	assert.Equal(t, segment.BracketTag, conv)

	require.NotNil(t, r.Hashes)
	assert.Len(t, r.Hashes.SHA256, 64)
	assert.Len(t, r.Hashes.BLAKE3, 64)
}

func TestCheckSuggestsDotted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("1. A\n2. B\n3. C\n"), 0o644))

	r := Check(path)
	conv, ok := r.Suggested()
	assert.True(t, ok)
	assert.Equal(t, segment.DottedNumeral, conv)
}

func TestCheckFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("no markers at all"), 0o644))

	tests := []struct {
		name    string
		path    string
		ok      bool
		problem string
	}{
		{"missing", filepath.Join(dir, "missing.docx"), false, "stat"},
		{"directory", dir, false, "not a regular file"},
		{"undecodable", bad, false, "container unreadable"},
		{"no markers", plain, true, "no identifier markers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.path)
			assert.Equal(t, tt.ok, r.OK())
			require.NotEmpty(t, r.Problems)
			assert.Contains(t, r.Problems[len(r.Problems)-1], tt.problem)
		})
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.SHA256)
	assert.Equal(t, "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85", h.BLAKE3)
}
