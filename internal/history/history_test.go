// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/termgraph/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{
		Enabled:    true,
		Dir:        filepath.Join(t.TempDir(), "history"),
		MaxResults: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func result(summary string, labels ...string) *types.SearchResult {
	res := &types.SearchResult{Report: types.Report{Summary: summary, Findings: []string{"f1"}}}
	for _, l := range labels {
		res.Records = append(res.Records, types.TermRecord{Label: l})
	}
	return res
}

func record(t *testing.T, s *Store, q string, res *types.SearchResult) Exchange {
	t.Helper()
	ex, err := s.Record(context.Background(), q, res)
	if err != nil {
		t.Fatal(err)
	}
	return ex
}

// --- tests ---

func TestRecordAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	res := result("Bone loss in orbit", "Microgravity", "Osteoclast")
	res.Records[0].Relations = []string{"Osteoclast"}
	res.Records[0].Articles = []types.ArticleRef{{Title: "A", Link: "https://x.example/a"}}
	ex := record(t, s, "bone loss", res)

	if ex.ID == "" {
		t.Fatal("expected an ID")
	}
	got, err := s.Get(ctx, ex.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Question != "bone loss" {
		t.Errorf("question = %q", got.Question)
	}
	if !got.CreatedAt.Equal(ex.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, ex.CreatedAt)
	}
	if len(got.Result.Records) != 2 || got.Result.Records[0].Articles[0].Link != "https://x.example/a" {
		t.Errorf("records not round-tripped: %+v", got.Result.Records)
	}
	if got.Result.Records[0].Relations[0] != "Osteoclast" {
		t.Errorf("relations not round-tripped: %+v", got.Result.Records[0])
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRecordNil(t *testing.T) {
	s := testStore(t)
	if _, err := s.Record(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestLatestFoldsQuestion(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	record(t, s, "Microgravity", result("first"))
	record(t, s, "other", result("unrelated"))
	record(t, s, "  microgravity ", result("second"))

	ex, err := s.Latest(ctx, "MICROGRAVITY")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Result.Report.Summary != "second" {
		t.Errorf("Latest summary = %q, want second", ex.Result.Report.Summary)
	}

	if _, err := s.Latest(ctx, "nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest(nothing) error = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	for _, q := range []string{"a", "b", "c"} {
		record(t, s, q, result(q))
	}

	got, err := s.List(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Question != "c" || got[1].Question != "b" {
		t.Errorf("List = %+v", got)
	}
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	record(t, s, "bone density", result("Microgravity reduces bone mass", "Osteoclast"))
	record(t, s, "plant growth", result("Roots orient without gravity", "Arabidopsis"))

	tests := []struct {
		query string
		want  []string
	}{
		{"bone", []string{"bone density"}},
		{"arabidopsis", []string{"plant growth"}},
		{"gravity", []string{"plant growth"}},
		{"microgravity OR roots", []string{"plant growth", "bone density"}},
		{"zebrafish", nil},
		{"", []string{"plant growth", "bone density"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query, 0)
			if err != nil {
				t.Fatal(err)
			}
			var qs []string
			for _, ex := range got {
				qs = append(qs, ex.Question)
			}
			if len(qs) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, qs, tt.want)
			}
			for i := range qs {
				if qs[i] != tt.want[i] {
					t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, qs[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, q := range []string{"old", "mid", "new"} {
		record(t, s, q, result(q+" summary"))
	}

	n, err := s.Prune(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	got, _ := s.List(ctx, 0)
	if len(got) != 1 || got[0].Question != "new" {
		t.Errorf("after prune = %+v", got)
	}
	if found, _ := s.Search(ctx, "old", 0); len(found) != 0 {
		t.Errorf("pruned exchange still indexed: %+v", found)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "h")
	cfg := types.HistoryConfig{Enabled: true, Dir: dir}

	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(context.Background(), "q", result("kept")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ex, err := s.Latest(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Result.Report.Summary != "kept" {
		t.Errorf("summary = %q", ex.Result.Report.Summary)
	}
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	record(t, s, "bone density", result("Bone", "Osteoclast"))
	record(t, s, "plants", result("Roots", "Arabidopsis"))

	var js bytes.Buffer
	if err := s.ExportJSON(ctx, "", &js); err != nil {
		t.Fatal(err)
	}
	var fromJSON []Exchange
	if err := json.Unmarshal(js.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 2 || fromJSON[0].Question != "plants" {
		t.Errorf("JSON export = %+v", fromJSON)
	}

	var y bytes.Buffer
	if err := s.ExportYAML(ctx, "osteoclast", &y); err != nil {
		t.Fatal(err)
	}
	var fromYAML []map[string]any
	if err := yaml.Unmarshal(y.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 1 || fromYAML[0]["question"] != "bone density" {
		t.Errorf("YAML export = %v", fromYAML)
	}

	var empty bytes.Buffer
	if err := s.ExportJSON(ctx, "zebrafish", &empty); err != nil {
		t.Fatal(err)
	}
	if got := bytes.TrimSpace(empty.Bytes()); string(got) != "[]" {
		t.Errorf("empty export = %s", got)
	}
}
