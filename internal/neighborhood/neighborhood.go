// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package neighborhood narrows a term collection to the best-matching term
// and its direct relations.
package neighborhood

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/termgraph/pkg/types"
)

// Filter returns the neighborhood of the first label containing query
// (case-insensitive substring): the matched record followed by the records
// its relations resolve to. An empty query or a query matching nothing
// returns records unchanged.
func Filter(records []types.TermRecord, query string) []types.TermRecord {
	return FilterWith(records, query, types.PolicyFirst)
}

// FilterWith is Filter with an explicit match policy.
func FilterWith(records []types.TermRecord, query string, policy types.FilterPolicy) []types.TermRecord {
	q := fold(query)
	if q == "" {
		return records
	}

	idx := newIndex(records)

	var match int
	switch policy {
	case types.PolicyBest:
		match = idx.best(q)
	default:
		match = idx.first(q)
	}
	if match < 0 {
		return records
	}

	center := records[match]
	out := []types.TermRecord{center}
	taken := map[string]bool{center.Label: true}

	for _, rel := range center.Relations {
		i, ok := idx.byFold[strings.ToLower(rel)]
		if !ok {
			continue
		}
		r := records[i]
		if taken[r.Label] {
			continue
		}
		taken[r.Label] = true
		out = append(out, r)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// index maps folded labels to record positions, preserving insertion order.
// When two labels fold to the same key the first one wins.
type index struct {
	keys   []string
	pos    []int
	byFold map[string]int
}

func newIndex(records []types.TermRecord) index {
	idx := index{byFold: make(map[string]int, len(records))}
	for i, r := range records {
		k := strings.ToLower(r.Label)
		if _, dup := idx.byFold[k]; dup {
			continue
		}
		idx.byFold[k] = i
		idx.keys = append(idx.keys, k)
		idx.pos = append(idx.pos, i)
	}
	return idx
}

func (idx index) first(q string) int {
	for n, k := range idx.keys {
		if strings.Contains(k, q) {
			return idx.pos[n]
		}
	}
	return -1
}

func (idx index) best(q string) int {
	if i, ok := idx.byFold[q]; ok {
		return i
	}
	bestN := -1
	for n, k := range idx.keys {
		if !strings.Contains(k, q) {
			continue
		}
		if bestN < 0 {
			bestN = n
			continue
		}
		kl, bl := utf8.RuneCountInString(k), utf8.RuneCountInString(idx.keys[bestN])
		if kl < bl || (kl == bl && k < idx.keys[bestN]) {
			bestN = n
		}
	}
	if bestN < 0 {
		return -1
	}
	return idx.pos[bestN]
}
