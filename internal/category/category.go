// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package category maps question identifiers to subject categories so that
// output can be grouped. Ranges come from configuration or a YAML file;
// identifiers outside every range fall back to the subject label given on
// the command line.
package category

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Table looks up the category of an identifier.
type Table struct {
	ranges   []types.CategoryRange
	fallback string
}

// New builds a table. Ranges are checked in the order given, so an earlier
// range wins where two overlap.
func New(ranges []types.CategoryRange, fallback string) (*Table, error) {
	for _, r := range ranges {
		if r.Name == "" {
			return nil, fmt.Errorf("category range %d-%d has no name", r.From, r.To)
		}
		if r.From > r.To {
			return nil, fmt.Errorf("category %q: from %d is after to %d", r.Name, r.From, r.To)
		}
	}
	return &Table{ranges: ranges, fallback: fallback}, nil
}

// fileFormat is the layout of a category YAML file.
type fileFormat struct {
	Categories []types.CategoryRange `yaml:"categories"`
}

// Load reads category ranges from a YAML file of the form
//
//	categories:
//	  - {name: 民法, from: 1, to: 50}
func Load(path, fallback string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category file %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category file %s: %w", path, err)
	}
	return New(f.Categories, fallback)
}

// Lookup returns the category for id.
func (t *Table) Lookup(id int) string {
	for _, r := range t.ranges {
		if id >= r.From && id <= r.To {
			return r.Name
		}
	}
	return t.fallback
}

// Group buckets ids by category. Each bucket is sorted ascending.
func (t *Table) Group(ids []int) map[string][]int {
	groups := make(map[string][]int)
	for _, id := range ids {
		c := t.Lookup(id)
		groups[c] = append(groups[c], id)
	}
	for _, g := range groups {
		sort.Ints(g)
	}
	return groups
}
