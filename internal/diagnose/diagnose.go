// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diagnose inspects a document before parsing: whether it exists
// and can be read, its checksums, whether the container decodes, and how
// many identifier markers of each convention it holds.
package diagnose

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/pdiddy/exam-engine/internal/segment"
	"github.com/pdiddy/exam-engine/internal/source"
)

// HashResult holds both checksums of the document bytes.
type HashResult struct {
	SHA256 string `json:"sha256" yaml:"sha256"`
	BLAKE3 string `json:"blake3" yaml:"blake3"`
}

// Report is the outcome of Check.
type Report struct {
	Path       string         `json:"path" yaml:"path"`
	Exists     bool           `json:"exists" yaml:"exists"`
	Regular    bool           `json:"regular" yaml:"regular"`
	Size       int64          `json:"size" yaml:"size"`
	Mode       string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	Readable   bool           `json:"readable" yaml:"readable"`
	Hashes     *HashResult    `json:"hashes,omitempty" yaml:"hashes,omitempty"`
	Decodes    bool           `json:"decodes" yaml:"decodes"`
	Paragraphs int            `json:"paragraphs" yaml:"paragraphs"`
	Markers    map[string]int `json:"markers,omitempty" yaml:"markers,omitempty"`
	Problems   []string       `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// OK reports whether the document can be parsed.
func (r Report) OK() bool {
	return r.Exists && r.Regular && r.Readable && r.Decodes
}

// Suggested returns the convention with the most markers, bracket first on
// a tie, and false when the document has none.
func (r Report) Suggested() (segment.Convention, bool) {
	b := r.Markers[segment.BracketTag.String()]
	d := r.Markers[segment.DottedNumeral.String()]
	switch {
	case b == 0 && d == 0:
		return segment.BracketTag, false
	case d > b:
		return segment.DottedNumeral, true
	default:
		return segment.BracketTag, true
	}
}

// Check runs every inspection it can on path. Later steps are skipped
// once an earlier one fails; each failure is recorded in Problems.
func Check(path string) Report {
	r := Report{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("stat: %v", err))
		return r
	}
	r.Exists = true
	r.Size = info.Size()
	r.Mode = info.Mode().Perm().String()
	if !info.Mode().IsRegular() {
		r.Problems = append(r.Problems, "not a regular file")
		return r
	}
	r.Regular = true

	data, err := os.ReadFile(path)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("read: %v", err))
		return r
	}
	r.Readable = true
	r.Hashes = Hash(data)
	if len(data) == 0 {
		r.Problems = append(r.Problems, "empty file")
	}

	f, err := os.Open(path)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("open: %v", err))
		return r
	}
	defer f.Close()
	paras, err := source.ParagraphsFrom(path, f)
	if err != nil {
		r.Problems = append(r.Problems, err.Error())
		return r
	}
	r.Decodes = true
	r.Paragraphs = len(paras)

	text := source.Text(paras)
	r.Markers = make(map[string]int, 2)
	for _, conv := range []segment.Convention{segment.BracketTag, segment.DottedNumeral} {
		n := 0
		for range segment.Segment(text, conv) {
			n++
		}
		r.Markers[conv.String()] = n
	}
	if _, ok := r.Suggested(); !ok {
		r.Problems = append(r.Problems, "no identifier markers found")
	}
	return r
}

// Hash computes SHA-256 and BLAKE3 of data, hex encoded.
func Hash(data []byte) *HashResult {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return &HashResult{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
	}
}
