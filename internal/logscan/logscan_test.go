package logscan

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assistantLine(ts time.Time, input, output int, cwd string) string {
	return fmt.Sprintf(
		`{"type":"assistant","timestamp":%q,"cwd":%q,"message":{"usage":{"input_tokens":%d,"output_tokens":%d,"cache_read_input_tokens":0,"cache_creation_input_tokens":0}}}`,
		ts.UTC().Format(time.RFC3339), cwd, input, output,
	)
}

func TestScanSkipsNonUsageLines(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	content := "not json at all\n" +
		`{"type":"user","timestamp":"` + now.UTC().Format(time.RFC3339) + `"}` + "\n" +
		`{"type":"assistant","timestamp":"garbage","message":{"usage":{"input_tokens":5}}}` + "\n" +
		`{"type":"assistant","timestamp":"` + now.UTC().Format(time.RFC3339) + `"}` + "\n" +
		assistantLine(now, 100, 50, "/home/u/proj") + "\n"
	writeLog(t, filepath.Join(root, "-home-u-proj"), "session.jsonl", content)

	var events []Event
	New(root).Scan(time.Time{}, func(e Event) { events = append(events, e) })

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Usage.InputTokens != 100 || events[0].Usage.OutputTokens != 50 {
		t.Errorf("unexpected usage: %+v", events[0].Usage)
	}
	if events[0].CWD != "/home/u/proj" {
		t.Errorf("unexpected cwd: %q", events[0].CWD)
	}
}

func TestScanCutoffDropsOldEvents(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	content := assistantLine(now.Add(-2*time.Hour), 10, 0, "") + "\n" +
		assistantLine(now.Add(-48*time.Hour), 20, 0, "") + "\n"
	writeLog(t, filepath.Join(root, "projA"), "a.jsonl", content)

	var count int
	New(root).Scan(now.Add(-24*time.Hour), func(Event) { count++ })

	if count != 1 {
		t.Errorf("expected 1 event within cutoff, got %d", count)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))
	called := false
	s.Scan(time.Time{}, func(Event) { called = true })
	if called {
		t.Error("expected no events for missing root")
	}
	if s.Files() != nil {
		t.Error("expected nil file list for missing root")
	}
}

func TestScanSinceSkipsUntouchedFiles(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	oldDir := filepath.Join(root, "old-project")
	oldFile := writeLog(t, oldDir, "old.jsonl", assistantLine(now, 1000, 0, "")+"\n")
	stale := now.Add(-90 * 24 * time.Hour)
	if err := os.Chtimes(oldFile, stale, stale); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(oldDir, stale, stale); err != nil {
		t.Fatal(err)
	}

	writeLog(t, filepath.Join(root, "fresh-project"), "fresh.jsonl", assistantLine(now, 42, 0, "")+"\n")

	var events []Event
	New(root).ScanSince(now.Add(-30*24*time.Hour), func(e Event) { events = append(events, e) })

	if len(events) != 1 {
		t.Fatalf("expected untouched dir to be skipped, got %d events", len(events))
	}
	if events[0].Usage.InputTokens != 42 {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestScanDirCountsSessions(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "proj")
	now := time.Now()
	writeLog(t, dir, "s1.jsonl", assistantLine(now, 1, 0, "")+"\n")
	writeLog(t, dir, "s2.jsonl", assistantLine(now, 2, 0, "")+"\n")
	writeLog(t, dir, "notes.txt", "ignored")

	sessions := New(root).ScanDir(dir, time.Time{}, func(Event) {})
	if sessions != 2 {
		t.Errorf("expected 2 sessions, got %d", sessions)
	}
}

func TestUpdatedWithin(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	path := writeLog(t, filepath.Join(root, "proj"), "s.jsonl", assistantLine(now, 1, 0, "")+"\n")

	s := New(root)
	if !s.UpdatedWithin(5 * time.Minute) {
		t.Error("expected fresh file to count as recent activity")
	}

	old := now.Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	if s.UpdatedWithin(5 * time.Minute) {
		t.Error("expected hour-old file to not count as recent activity")
	}
}

func TestDirMatchesWorkspace(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "obscure-dir-name")
	now := time.Now()
	content := "bad line\n" + assistantLine(now, 1, 0, "/home/u/workspace") + "\n"
	writeLog(t, dir, "s.jsonl", content)

	if !DirMatchesWorkspace(dir, "/home/u/workspace") {
		t.Error("expected cwd match")
	}
	if DirMatchesWorkspace(dir, "/home/u/other") {
		t.Error("expected no match for different workspace")
	}
	if DirMatchesWorkspace(filepath.Join(root, "missing"), "/home/u/workspace") {
		t.Error("expected no match for missing dir")
	}
}

func TestParseTimestampFormats(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"2026-08-28T10:00:00Z", true},
		{"2026-08-28T10:00:00.123Z", true},
		{"2026-08-28T10:00:00.000Z", true},
		{"2026-08-28T10:00:00+02:00", true},
		{"", false},
		{"yesterday", false},
		{"2026-08-28", false},
	}
	for _, tt := range tests {
		ts, ok := parseTimestamp(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && ts.IsZero() {
			t.Errorf("parseTimestamp(%q) returned zero time", tt.raw)
		}
	}
}
