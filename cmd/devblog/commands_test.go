// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/devblog/internal/recommend"
)

const testPosts = `
posts:
  - id: 1
    title: Goroutines and channels in Go
    content: Goroutines communicate over channels. Buffered channels decouple goroutines and select waits on channels.
    author_id: 7
    author_name: Tom
    categories: [Go]
    tags: [concurrency, channels]
    created_at: 2026-03-01T09:00:00Z
    share_count: 40
    published: true
    featured: true
  - id: 2
    title: Select statements and channels
    content: Select multiplexes channels so goroutines can wait on several channels at once.
    author_id: 7
    author_name: Tom
    categories: [Go]
    tags: [concurrency, channels]
    created_at: 2026-03-03T09:00:00Z
    share_count: 10
    published: true
  - id: 3
    title: Baking sourdough bread
    content: Flour water salt and patience produce a good loaf with a crisp crust.
    author_id: 7
    author_name: Tom
    categories: [Kitchen]
    tags: [bread]
    created_at: 2025-06-01T09:00:00Z
    published: true
  - id: 4
    title: Unfinished notes on channels
    content: Channels channels channels.
    author_id: 8
    categories: [Go]
    tags: [channels]
    created_at: 2026-03-02T09:00:00Z
    published: false
`

// commandEnv is a config file plus import file in a temp directory.
type commandEnv struct {
	config string
	posts  string
}

func newCommandEnv(t *testing.T) commandEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`logging:
  level: disabled
database:
  path: %s
  threads: 1
cache:
  backend: memory
warm:
  rate_per_second: 1000
server:
  enabled: false
`, filepath.Join(dir, "devblog.duckdb"))

	return commandEnv{
		config: writeFile(t, dir, "devblog.yaml", cfg),
		posts:  writeFile(t, dir, "posts.yaml", testPosts),
	}
}

// run executes the root command with args against env and returns stdout.
func (env commandEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables survive between Execute calls.
	configPath = ""
	queryCount = 0
	queryLayout = recommend.DefaultLayout
	queryNoCache = false
	warmLimit = 0
	invalidateAll = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", env.config}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (env commandEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := env.run(t, args...)
	if err != nil {
		t.Fatalf("devblog %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func relatedIDs(t *testing.T, posts []recommend.RelatedPost) []int64 {
	t.Helper()
	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	return ids
}

func decodeList(t *testing.T, out string) []int64 {
	t.Helper()
	var posts []recommend.RelatedPost
	if err := json.Unmarshal([]byte(out), &posts); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	ids := relatedIDs(t, posts)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func decodeResult(t *testing.T, out string) recommend.Result {
	t.Helper()
	var result recommend.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return result
}

func TestCommands_ImportAndQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI workflow test in short mode")
	}
	env := newCommandEnv(t)

	if out := env.mustRun(t, "import", env.posts); !strings.Contains(out, "imported 4 posts") {
		t.Errorf("import output = %q", out)
	}

	result := decodeResult(t, env.mustRun(t, "related", "1", "--count", "2"))
	if result.SourceID != 1 || result.LayoutType != recommend.DefaultLayout {
		t.Errorf("result header = source %d layout %q", result.SourceID, result.LayoutType)
	}
	if len(result.Posts) == 0 || len(result.Posts) > 2 {
		t.Fatalf("related posts = %v, want 1 or 2 entries", relatedIDs(t, result.Posts))
	}
	if result.Posts[0].ID != 2 {
		t.Errorf("best related post = %d, want 2", result.Posts[0].ID)
	}
	for _, p := range result.Posts {
		if p.ID == 1 || p.ID == 4 {
			t.Errorf("related posts contain %d (source or draft)", p.ID)
		}
	}

	if got := decodeList(t, env.mustRun(t, "by-author", "1")); fmt.Sprint(got) != "[2 3]" {
		t.Errorf("by-author 1 = %v, want [2 3]", got)
	}
	if got := decodeList(t, env.mustRun(t, "by-category", "1", "--no-cache")); fmt.Sprint(got) != "[2]" {
		t.Errorf("by-category 1 = %v, want [2]", got)
	}

	if out := env.mustRun(t, "warm"); !strings.Contains(out, "warmed 1 posts") {
		t.Errorf("warm output = %q, want one featured post warmed", out)
	}
}

func TestCommands_PostChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI workflow test in short mode")
	}
	env := newCommandEnv(t)
	env.mustRun(t, "import", env.posts)

	env.mustRun(t, "unpublish", "2")
	if got := decodeList(t, env.mustRun(t, "by-author", "1")); fmt.Sprint(got) != "[3]" {
		t.Errorf("by-author after unpublish = %v, want [3]", got)
	}

	env.mustRun(t, "publish", "4")
	if got := decodeList(t, env.mustRun(t, "by-category", "1")); fmt.Sprint(got) != "[4]" {
		t.Errorf("by-category after publish = %v, want [4]", got)
	}

	env.mustRun(t, "delete", "3")
	if got := decodeList(t, env.mustRun(t, "by-author", "1")); len(got) != 0 {
		t.Errorf("by-author after delete = %v, want none", got)
	}

	if _, err := env.run(t, "delete", "3"); err == nil {
		t.Error("deleting a missing post should fail")
	}
}

func TestCommands_Invalidate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI workflow test in short mode")
	}
	env := newCommandEnv(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "one post", args: []string{"invalidate", "2"}, want: "invalidated related posts for post 2"},
		{name: "all", args: []string{"invalidate", "--all"}, want: "invalidated all related posts"},
		{name: "neither", args: []string{"invalidate"}, wantErr: true},
		{name: "both", args: []string{"invalidate", "2", "--all"}, wantErr: true},
		{name: "bad id", args: []string{"invalidate", "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestCommands_QueryErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI workflow test in short mode")
	}
	env := newCommandEnv(t)
	env.mustRun(t, "import", env.posts)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing post", args: []string{"related", "99"}},
		{name: "draft source", args: []string{"related", "4"}},
		{name: "invalid id", args: []string{"by-author", "abc"}},
		{name: "negative count", args: []string{"related", "1", "--count", "-1"}},
		{name: "no argument", args: []string{"by-category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.run(t, tt.args...); err == nil {
				t.Errorf("devblog %s: expected error", strings.Join(tt.args, " "))
			}
		})
	}
}

func TestCommands_ReimportAsDraft(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI workflow test in short mode")
	}
	env := newCommandEnv(t)
	env.mustRun(t, "import", env.posts)

	drafts := writeFile(t, t.TempDir(), "drafts.yaml", `
posts:
  - id: 2
    title: Select statements and channels
    author_id: 7
    categories: [Go]
    published: false
`)
	if out := env.mustRun(t, "import", drafts); !strings.Contains(out, "imported 1 posts") {
		t.Errorf("import output = %q", out)
	}
	if got := decodeList(t, env.mustRun(t, "by-author", "1")); fmt.Sprint(got) != "[3]" {
		t.Errorf("by-author after draft import = %v, want [3]", got)
	}
}
