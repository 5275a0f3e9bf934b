package analysis

import (
	"strings"
	"testing"
)

func contains(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}

func containsSubstring(items []string, want string) bool {
	for _, s := range items {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func TestMateInOneShowsUpInChecksAndIdeas(t *testing.T) {
	pos := mustPosition(t, "6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")

	report := ScanTactics(pos)

	if !contains(report.Checks, "Re8#") {
		t.Errorf("Re8# missing from checks %v", report.Checks)
	}
	if !contains(report.Ideas, "Checkmate with Re8#") {
		t.Errorf("mate idea missing from %v", report.Ideas)
	}
	if !contains(report.Ideas, "Enemy king on back rank - look for mate patterns") {
		t.Errorf("back-rank idea missing from %v", report.Ideas)
	}
	if !contains(report.Moves, "Re8#") {
		t.Errorf("Re8# missing from tactical moves %v", report.Moves)
	}
}

func TestCapturesAndUndefendedSignal(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")

	report := ScanTactics(pos)

	if !contains(report.Captures, "exd5") {
		t.Errorf("exd5 missing from captures %v", report.Captures)
	}
	if !containsSubstring(report.Signals, "Undefended Pawn on d5") {
		t.Errorf("undefended-piece signal missing from %v", report.Signals)
	}
}

func TestThreatCreatingMovesCapped(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")

	report := ScanTactics(pos)
	if len(report.ThreatMoves) > 5 {
		t.Errorf("threat-creating moves %v exceed the display cap", report.ThreatMoves)
	}
}

func TestTacticalListsDeduplicated(t *testing.T) {
	pos := mustPosition(t, "6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")

	report := ScanTactics(pos)
	for _, list := range [][]string{report.Ideas, report.Moves} {
		seen := make(map[string]bool)
		for _, s := range list {
			if seen[s] {
				t.Errorf("duplicate entry %q", s)
			}
			seen[s] = true
		}
	}
}
