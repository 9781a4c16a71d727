// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "store")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func civilLaw() []types.MergedQuestion {
	return []types.MergedQuestion{
		{
			ID:           1,
			QuestionText: "关于合同的效力，下列说法正确的是：",
			Options: types.Options{
				{Key: "A", Text: "限制行为能力人订立的合同无效"},
				{Key: "B", Text: "恶意串通损害他人利益的合同无效"},
			},
			Answer:      "B",
			Explanation: "恶意串通条款",
		},
		{
			ID:           2,
			QuestionText: "关于诉讼时效，下列说法正确的是：",
			Options:      types.Options{{Key: "A", Text: "三年"}},
			Explanation:  "answer missing",
			SourceFlags:  types.SourceFlags{MissingAnswer: true},
		},
	}
}

func criminalLaw() []types.MergedQuestion {
	return []types.MergedQuestion{
		{ID: 1, QuestionText: "关于正当防卫，下列说法正确的是：", Answer: "C", Explanation: "防卫过当"},
	}
}

// --- tests ---

func TestNewStoreRequiresDir(t *testing.T) {
	_, err := NewStore(types.StoreConfig{})
	assert.Error(t, err)
}

func TestIngestAndRetrieve(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sum, err := s.Ingest(ctx, "民法", "q.docx+a.docx", civilLaw(),
		map[int][]types.IssueKind{1: {types.IssueOptionBleed, types.IssueUnexpectedOptionCount}})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Inserted)
	assert.Zero(t, sum.Updated)
	_, err = uuid.Parse(sum.RunID)
	assert.NoError(t, err)

	_, err = s.Ingest(ctx, "刑法", "", criminalLaw(), nil)
	require.NoError(t, err)

	all, err := s.Retrieve(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "刑法", all[0].Subject)
	assert.Equal(t, "民法", all[1].Subject)
	assert.Equal(t, 1, all[1].ID)
	assert.Equal(t, 2, all[2].ID)

	first := all[1]
	assert.Equal(t, sum.RunID, first.RunID)
	assert.Equal(t, []string{"A", "B"}, first.Options.Keys())
	assert.Equal(t, []types.IssueKind{types.IssueOptionBleed, types.IssueUnexpectedOptionCount}, first.Issues)
	assert.True(t, all[2].SourceFlags.MissingAnswer)
}

func TestIngestRequiresSubject(t *testing.T) {
	s := testStore(t)
	_, err := s.Ingest(context.Background(), "", "", civilLaw(), nil)
	assert.Error(t, err)
}

func TestReingestReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, "民法", "v1", civilLaw(), map[int][]types.IssueKind{2: {types.IssueMissingAnswer}})
	require.NoError(t, err)

	updated := civilLaw()
	updated[1].Answer = "A"
	updated[1].Explanation = "三年时效"
	updated[1].SourceFlags.MissingAnswer = false
	sum, err := s.Ingest(ctx, "民法", "v2", updated, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Updated)
	assert.Zero(t, sum.Inserted)

	got, err := s.Retrieve(ctx, QueryOptions{Subject: "民法"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[1].Answer)
	assert.False(t, got[1].SourceFlags.MissingAnswer)
	assert.Empty(t, got[1].Issues, "issues replaced on re-ingest")

	ft, err := s.Retrieve(ctx, QueryOptions{Query: "三年时效"})
	require.NoError(t, err)
	require.Len(t, ft, 1, "FTS index follows updates")

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "v2", runs[0].Source)
	assert.Equal(t, 1, runs[1].MissingAnswers)
	assert.True(t, runs[0].IngestedAt.After(runs[1].IngestedAt))
}

func TestRetrieveFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Ingest(ctx, "民法", "", civilLaw(), map[int][]types.IssueKind{1: {types.IssueOptionBleed}})
	require.NoError(t, err)
	_, err = s.Ingest(ctx, "刑法", "", criminalLaw(), nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts QueryOptions
		want []int
		subj []string
	}{
		{"full text in stem", QueryOptions{Query: "诉讼时效"}, []int{2}, []string{"民法"}},
		{"full text in option", QueryOptions{Query: "恶意串通"}, []int{1}, []string{"民法"}},
		{"full text in explanation", QueryOptions{Query: "防卫过当"}, []int{1}, []string{"刑法"}},
		{"short query falls back to substring", QueryOptions{Query: "合同"}, []int{1}, []string{"民法"}},
		{"shared phrase across subjects", QueryOptions{Query: "下列说法", Subject: "刑法"}, []int{1}, []string{"刑法"}},
		{"issue kind", QueryOptions{Issue: types.IssueOptionBleed}, []int{1}, []string{"民法"}},
		{"missing answer", QueryOptions{MissingAnswer: true}, []int{2}, []string{"民法"}},
		{"no match", QueryOptions{Query: "不存在的词语"}, nil, nil},
		{"limit", QueryOptions{MaxResults: 1}, []int{1}, []string{"刑法"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Retrieve(ctx, tt.opts)
			require.NoError(t, err)
			var ids []int
			var subjects []string
			for _, r := range got {
				ids = append(ids, r.ID)
				subjects = append(subjects, r.Subject)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, tt.subj, subjects)
		})
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{MissingAnswer: true}.IsEmpty())
	assert.False(t, QueryOptions{Issue: types.IssueEmptyStem}.IsEmpty())
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Ingest(ctx, "民法", "", civilLaw(), nil)
	require.NoError(t, err)

	jsonPath, err := s.ExportJSON(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "export.json"), jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []QueryResult
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 2)
	assert.Equal(t, "民法", fromJSON[0].Subject)
	assert.Equal(t, civilLaw()[0].Options, fromJSON[0].Options)

	yamlPath, err := s.ExportYAML(ctx, QueryOptions{MissingAnswer: true})
	require.NoError(t, err)
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []QueryResult
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, 2, fromYAML[0].ID)
	assert.True(t, fromYAML[0].SourceFlags.MissingAnswer)
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)
	path, err := s.ExportJSON(context.Background(), QueryOptions{})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
