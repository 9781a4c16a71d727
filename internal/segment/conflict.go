// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Conflicts reports identifiers that occur more than once in blocks with
// differing bodies. Exact duplicates (same trimmed body) are not conflicts.
// Every occurrence of a conflicting identifier is kept, in document order,
// and the result is ordered by first occurrence.
func Conflicts(blocks []types.QuestionBlock) []types.IdentifierConflict {
	byID := make(map[int][]types.QuestionBlock)
	var order []int
	for _, b := range blocks {
		if _, seen := byID[b.ID]; !seen {
			order = append(order, b.ID)
		}
		byID[b.ID] = append(byID[b.ID], b)
	}

	var conflicts []types.IdentifierConflict
	for _, id := range order {
		group := byID[id]
		if len(group) < 2 || sameBodies(group) {
			continue
		}
		texts := make([]string, len(group))
		for i, b := range group {
			texts[i] = b.RawText
		}
		conflicts = append(conflicts, types.IdentifierConflict{ID: id, RawTexts: texts})
	}
	return conflicts
}

func sameBodies(group []types.QuestionBlock) bool {
	first := strings.TrimSpace(group[0].Body())
	for _, b := range group[1:] {
		if strings.TrimSpace(b.Body()) != first {
			return false
		}
	}
	return true
}
