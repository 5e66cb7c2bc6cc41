package usage

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/claudewatch/claudewatch/internal/logscan"
	"github.com/claudewatch/claudewatch/internal/pricing"
)

// ProjectCost is the per-workspace cost breakdown, recomputed on demand by
// scanning that workspace's log directory.
type ProjectCost struct {
	ProjectName  string    `json:"project_name"`
	ProjectPath  string    `json:"project_path"`
	CostToday    float64   `json:"cost_today"`
	Cost7d       float64   `json:"cost_7d"`
	Cost30d      float64   `json:"cost_30d"`
	SessionCount int       `json:"session_count"`
	LastActive   time.Time `json:"last_active"`
}

// HashPath maps a workspace path to its log directory name the way the
// CLI does: every character outside [A-Za-z0-9] becomes '-'.
// e.g. /home/user/sb_git/my-app -> -home-user-sb-git-my-app
func HashPath(workspacePath string) string {
	out := make([]byte, 0, len(workspacePath))
	for _, c := range workspacePath {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, byte(c))
		} else {
			out = append(out, '-')
		}
	}
	return string(out)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ResolveProjectDir finds the log directory for a workspace. The hashed
// path is tried first; if that directory does not exist, every log
// directory is probed for a recorded cwd equal to the workspace path.
// Returns false when no directory matches.
func ResolveProjectDir(s *logscan.Scanner, workspacePath string) (string, bool) {
	candidate := filepath.Join(s.Root(), HashPath(workspacePath))
	if dirExists(candidate) {
		return candidate, true
	}

	for _, dir := range s.ProjectDirs() {
		if logscan.DirMatchesWorkspace(dir, workspacePath) {
			return dir, true
		}
	}
	return "", false
}

// ProjectCostFor computes the cost breakdown for one workspace. The
// second return is false when the workspace has no log directory at all.
func ProjectCostFor(s *logscan.Scanner, workspacePath string, now time.Time) (ProjectCost, bool) {
	dir, ok := ResolveProjectDir(s, workspacePath)
	if !ok {
		return ProjectCost{}, false
	}

	pc := ProjectCost{
		ProjectName: filepath.Base(workspacePath),
		ProjectPath: dir,
		LastActive:  time.Unix(0, 0).UTC(),
	}

	cutoff7d := now.Add(-7 * 24 * time.Hour)
	cutoff30d := now.Add(-30 * 24 * time.Hour)
	dayStart := startOfDay(now)

	pc.SessionCount = s.ScanDir(dir, time.Time{}, func(e logscan.Event) {
		cost := pricing.Cost(e.Usage)
		if e.Timestamp.After(cutoff30d) {
			pc.Cost30d += cost
		}
		if e.Timestamp.After(cutoff7d) {
			pc.Cost7d += cost
		}
		if !e.Timestamp.Before(dayStart) {
			pc.CostToday += cost
		}
		if e.Timestamp.After(pc.LastActive) {
			pc.LastActive = e.Timestamp
		}
	})

	return pc, true
}

// AllProjectCosts resolves every given workspace, dropping the ones with
// no log data, and returns the rest sorted by today's spend, highest
// first.
func AllProjectCosts(s *logscan.Scanner, workspaces []string, now time.Time) []ProjectCost {
	var out []ProjectCost
	for _, ws := range workspaces {
		if pc, ok := ProjectCostFor(s, ws, now); ok {
			out = append(out, pc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostToday > out[j].CostToday })
	return out
}
