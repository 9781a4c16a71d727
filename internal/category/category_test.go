// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exam-engine/pkg/types"
)

func TestLookup(t *testing.T) {
	table, err := New([]types.CategoryRange{
		{Name: "民法", From: 1, To: 50},
		{Name: "刑法", From: 51, To: 100},
		{Name: "overlap", From: 40, To: 60},
	}, "法考")
	require.NoError(t, err)

	tests := []struct {
		id   int
		want string
	}{
		{1, "民法"},
		{50, "民法"},
		{51, "刑法"},
		{45, "民法"},
		{101, "法考"},
		{0, "法考"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Lookup(tt.id), "id %d", tt.id)
	}
}

func TestNewRejectsBadRanges(t *testing.T) {
	_, err := New([]types.CategoryRange{{Name: "x", From: 10, To: 1}}, "")
	assert.Error(t, err)

	_, err = New([]types.CategoryRange{{From: 1, To: 2}}, "")
	assert.Error(t, err)
}

func TestGroup(t *testing.T) {
	table, err := New([]types.CategoryRange{{Name: "民法", From: 1, To: 10}}, "其他")
	require.NoError(t, err)

	got := table.Group([]int{12, 3, 1, 11})
	assert.Equal(t, map[string][]int{
		"民法": {1, 3},
		"其他": {11, 12},
	}, got)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "categories:\n  - {name: 民法, from: 1, to: 5}\n  - {name: 刑法, from: 6, to: 9}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Load(path, "法考")
	require.NoError(t, err)
	assert.Equal(t, "刑法", table.Lookup(7))
	assert.Equal(t, "法考", table.Lookup(10))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
