package analysis

import (
	"strings"
	"testing"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
)

func TestOpeningAdviceForStartPosition(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")

	report := AdviseStrategy(pos)
	if report.Phase != domain.PhaseOpening {
		t.Fatalf("phase = %s, want Opening", report.Phase)
	}
	if !contains(report.Ideas, "You have developed 0/4 minor pieces") {
		t.Errorf("development count missing from %v", report.Ideas)
	}
	if !contains(report.Moves, "Nf3") || !contains(report.Moves, "Nc3") {
		t.Errorf("central knight development missing from %v", report.Moves)
	}
	if contains(report.Moves, "Nh3") {
		t.Errorf("edge development Nh3 should not be proposed: %v", report.Moves)
	}
	if !contains(report.Ideas, "Consider castling to secure king safety") {
		t.Errorf("castling idea missing from %v", report.Ideas)
	}
	if !contains(report.Moves, "e4") {
		t.Errorf("center-improving pawn push missing from %v", report.Moves)
	}
}

func TestNoCastlingProposedWithoutRights(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")

	report := AdviseStrategy(pos)
	if contains(report.Ideas, "Consider castling to secure king safety") {
		t.Error("castling idea proposed with no castling rights")
	}
	for _, san := range report.Moves {
		if strings.HasPrefix(san, "O-O") {
			t.Errorf("castling move %q proposed with no castling rights", san)
		}
	}
}

func TestEndgameKingCentralizationAndPassedPawn(t *testing.T) {
	pos := mustPosition(t, "8/8/8/4k3/8/8/P7/K7 w - - 0 1")

	report := AdviseStrategy(pos)
	if report.Phase != domain.PhaseEndgame {
		t.Fatalf("phase = %s, want Endgame", report.Phase)
	}
	if !contains(report.Ideas, "Activate your king in the endgame") {
		t.Errorf("king-activity idea missing from %v", report.Ideas)
	}
	if !contains(report.Moves, "Kb2") {
		t.Errorf("centralizing Kb2 missing from %v", report.Moves)
	}
	if !containsSubstring(report.Ideas, "Passed pawn on a2") {
		t.Errorf("passed-pawn idea missing from %v", report.Ideas)
	}
	if !contains(report.Moves, "a4") {
		t.Errorf("pawn advance a4 missing from %v", report.Moves)
	}
}

func TestMiddlegamePhaseByPieceCount(t *testing.T) {
	// 27 pieces: too few for the opening, too many for the endgame.
	pos := mustPosition(t, "r3k2r/pppp1ppp/2n2n2/4p3/4P3/3P1N2/PPP2PPP/RN2KB1R w KQkq - 0 10")

	if phase := GamePhase(pos); phase != domain.PhaseMiddlegame {
		t.Errorf("phase = %s, want Middlegame", phase)
	}
}
