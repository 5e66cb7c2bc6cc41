// Package logscan discovers and parses the per-project JSONL conversation
// logs written by the Claude Code CLI under ~/.claude/projects. Each log
// line is an independent JSON record; only "assistant" records carry token
// usage. Malformed lines and unreadable files are skipped, never fatal.
package logscan

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claudewatch/claudewatch/internal/pricing"
)

// Event is one parsed assistant response from a conversation log.
type Event struct {
	Timestamp time.Time
	Usage     pricing.TokenUsage
	Dir       string // project log directory the event was read from
	File      string // log file the event was read from
	CWD       string // workspace path recorded on the log line, if any
}

// Usage data lives at message.usage, not at the top level, and costUSD is
// never present in the logs; it is always recomputed from token counts.
type logEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	CWD       string      `json:"cwd,omitempty"`
	Message   *logMessage `json:"message,omitempty"`
}

type logMessage struct {
	Usage *pricing.TokenUsage `json:"usage,omitempty"`
}

// Scanner reads conversation logs below a single root directory. The zero
// value is not usable; construct with New.
type Scanner struct {
	root string
}

func New(root string) *Scanner {
	return &Scanner{root: root}
}

func (s *Scanner) Root() string { return s.root }

// DefaultRoot returns the conventional log location, ~/.claude/projects.
func DefaultRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// ProjectDirs lists the per-project subdirectories of the root. A missing
// or unreadable root yields an empty list.
func (s *Scanner) ProjectDirs() []string {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(s.root, e.Name()))
		}
	}
	return dirs
}

// Files lists every .jsonl log file below the root.
func (s *Scanner) Files() []string {
	var files []string
	for _, dir := range s.ProjectDirs() {
		files = append(files, listLogFiles(dir)...)
	}
	return files
}

func listLogFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files
}

// Scan streams every parseable event below the root to fn. Events older
// than cutoff are dropped; pass the zero time to receive everything.
// Files are read one at a time, so a failure in one file only loses that
// file's events.
func (s *Scanner) Scan(cutoff time.Time, fn func(Event)) {
	for _, dir := range s.ProjectDirs() {
		s.ScanDir(dir, cutoff, fn)
	}
}

// ScanSince behaves like Scan but skips directories and files whose
// modification time predates the cutoff. A file untouched since the cutoff
// cannot contain qualifying events, so this bounds I/O on wide windows;
// it is an optimization, not a correctness requirement.
func (s *Scanner) ScanSince(cutoff time.Time, fn func(Event)) {
	for _, dir := range s.ProjectDirs() {
		if info, err := os.Stat(dir); err != nil || info.ModTime().Before(cutoff) {
			continue
		}
		for _, file := range listLogFiles(dir) {
			if info, err := os.Stat(file); err != nil || info.ModTime().Before(cutoff) {
				continue
			}
			scanFile(file, dir, cutoff, fn)
		}
	}
}

// ScanDir streams events from a single project directory and reports how
// many log files it touched (one file per recorded session).
func (s *Scanner) ScanDir(dir string, cutoff time.Time, fn func(Event)) (sessions int) {
	for _, file := range listLogFiles(dir) {
		sessions++
		scanFile(file, dir, cutoff, fn)
	}
	return sessions
}

func scanFile(path, dir string, cutoff time.Time, fn func(Event)) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[logscan] skipping unreadable file %s: %v", path, err)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 256*1024)
	sc.Buffer(buf, 10*1024*1024) // conversation lines can be large

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry logEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // skip malformed lines
		}
		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Usage == nil {
			continue
		}
		ts, ok := parseTimestamp(entry.Timestamp)
		if !ok {
			continue
		}
		if !cutoff.IsZero() && ts.Before(cutoff) {
			continue
		}
		fn(Event{
			Timestamp: ts,
			Usage:     *entry.Message.Usage,
			Dir:       dir,
			File:      path,
			CWD:       entry.CWD,
		})
	}
}

// parseTimestamp accepts RFC3339 with or without fractional seconds,
// which covers every timestamp format the logs emit.
func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// UpdatedWithin reports whether any log file was modified in the last d.
// The manager uses this as an activity gate before spending a remote call.
func (s *Scanner) UpdatedWithin(d time.Duration) bool {
	threshold := time.Now().Add(-d)
	for _, file := range s.Files() {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if !info.ModTime().Before(threshold) {
			return true
		}
	}
	return false
}

// DirMatchesWorkspace reports whether the first log file in dir records
// workspacePath as its working directory. Only the first 30 lines are
// inspected; the cwd field appears on every record, so that is plenty.
func DirMatchesWorkspace(dir, workspacePath string) bool {
	files := listLogFiles(dir)
	if len(files) == 0 {
		return false
	}

	f, err := os.Open(files[0])
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 256*1024)
	sc.Buffer(buf, 10*1024*1024)

	for lines := 0; sc.Scan() && lines < 30; lines++ {
		var entry struct {
			CWD string `json:"cwd"`
		}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if entry.CWD == workspacePath {
			return true
		}
	}
	return false
}
