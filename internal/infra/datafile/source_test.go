package datafile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oftheday_display/internal/domain/ofday"
)

const wordJSON = `{
  "1":   {"title": "Aplomb", "subtitle": "noun", "description": "self-confidence under pressure"},
  "200": {"title": "Petrichor", "description": "the smell of rain on dry earth"},
  "366": {"title": "Leap", "subtitle": "verb"},
  "367": {"title": "Overflow"},
  "12":  {"subtitle": "no title here"}
}`

const verseYAML = `
"10":
  title: John 1:1
  subtitle: In the beginning was the Word
  description: and the Word was with God
"11":
  title: Psalm 23:1
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileSource_JSON(t *testing.T) {
	t.Parallel()

	src := NewFileSource("word", write(t, "word.json", wordJSON), nil)
	yearly, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(yearly) != 3 {
		t.Fatalf("expected 3 usable days, got %d: %v", len(yearly), yearly)
	}
	if rec := yearly.Lookup(200); rec.Title != "Petrichor" || rec.Subtitle != "" {
		t.Fatalf("day 200 = %+v", rec)
	}
	if !yearly.Lookup(12).IsEmpty() {
		t.Fatalf("record without title must be dropped")
	}
	if !yearly.Lookup(367).IsEmpty() {
		t.Fatalf("out-of-range day must be dropped")
	}
}

func TestFileSource_YAML(t *testing.T) {
	t.Parallel()

	src := NewFileSource("verse", write(t, "verse.yml", verseYAML), nil)
	yearly, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec := yearly.Lookup(10); rec.Subtitle != "In the beginning was the Word" {
		t.Fatalf("day 10 = %+v", rec)
	}
	if rec := yearly.Lookup(11); rec.Title != "Psalm 23:1" || rec.Description != "" {
		t.Fatalf("day 11 = %+v", rec)
	}
}

func TestFileSource_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"array top level", "a.json", `[{"title": "x"}]`},
		{"non numeric key", "b.json", `{"monday": {"title": "x"}}`},
		{"record not an object", "c.json", `{"1": "just a string"}`},
		{"broken json", "d.json", `{"1": {`},
		{"yaml list", "e.yaml", "- title: x\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFileSource("cat", write(t, tc.file, tc.body), nil).Load(context.Background())
			var dsErr *ofday.DataSourceError
			if !errors.As(err, &dsErr) || dsErr.Category != "cat" {
				t.Fatalf("expected DataSourceError, got %v", err)
			}
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileSource("cat", filepath.Join(t.TempDir(), "nope.json"), nil).Load(context.Background())
	if !errors.Is(err, ofday.ErrDataSource) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist data source error, got %v", err)
	}
}

func TestParseWarnings(t *testing.T) {
	t.Parallel()

	_, warnings, err := Parse([]byte(wordJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	if got := ResolvePath("/etc/display/config.yaml", "data/word.json"); got != "/etc/display/data/word.json" {
		t.Fatalf("relative path: %s", got)
	}
	if got := ResolvePath("/etc/display/config.yaml", "/srv/word.json"); got != "/srv/word.json" {
		t.Fatalf("absolute path: %s", got)
	}
}
