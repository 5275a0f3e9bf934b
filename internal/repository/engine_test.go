package repository

import (
	"testing"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
)

func TestParseInfoLineCentipawns(t *testing.T) {
	score, pv, ok := parseInfoLine("info depth 18 seldepth 24 score cp 34 nodes 1200345 nps 900000 pv e2e4 e7e5 g1f3")
	if !ok {
		t.Fatal("expected a parsable info line")
	}
	if score.Mate || score.Centipawns != 34 {
		t.Errorf("score = %+v, want 34 centipawns", score)
	}
	if len(pv) != 3 || pv[0] != "e2e4" || pv[2] != "g1f3" {
		t.Errorf("pv = %v, want [e2e4 e7e5 g1f3]", pv)
	}
}

func TestParseInfoLineMate(t *testing.T) {
	score, pv, ok := parseInfoLine("info depth 12 score mate 3 pv e1e8")
	if !ok {
		t.Fatal("expected a parsable info line")
	}
	if !score.Mate || score.Centipawns != 3*domain.MateSentinel {
		t.Errorf("score = %+v, want mate in 3", score)
	}
	if score.String() != "M3" {
		t.Errorf("score renders as %q, want M3", score.String())
	}
	if len(pv) != 1 || pv[0] != "e1e8" {
		t.Errorf("pv = %v, want [e1e8]", pv)
	}
}

func TestParseInfoLineNegativeMate(t *testing.T) {
	score, _, ok := parseInfoLine("info depth 10 score mate -2")
	if !ok {
		t.Fatal("expected a parsable info line")
	}
	if !score.Mate || score.Centipawns != -2*domain.MateSentinel {
		t.Errorf("score = %+v, want mate in -2", score)
	}
}

func TestParseInfoLineWithoutScore(t *testing.T) {
	if _, _, ok := parseInfoLine("info string NNUE evaluation enabled"); ok {
		t.Error("info line without score should not parse")
	}
	if _, _, ok := parseInfoLine("info depth 5 currmove e2e4 currmovenumber 1"); ok {
		t.Error("currmove line should not parse")
	}
}

func TestScoreFlip(t *testing.T) {
	score := domain.CentipawnScore(150)
	if flipped := score.Flip(); flipped.Centipawns != -150 {
		t.Errorf("Flip() = %+v, want -150", flipped)
	}
	mate := domain.MateScore(2)
	if flipped := mate.Flip(); flipped.Centipawns != -2*domain.MateSentinel || !flipped.Mate {
		t.Errorf("Flip() = %+v, want mate for the other side", flipped)
	}
}
