package analyzer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// fakeEngine serves scripted verdicts keyed by FEN.
type fakeEngine struct {
	evals   map[string]repository.EngineAnalysis
	running bool
}

func (f *fakeEngine) Evaluate(ctx context.Context, fen string, depth int) (repository.EngineAnalysis, error) {
	if analysis, ok := f.evals[fen]; ok {
		return analysis, nil
	}
	return repository.EngineAnalysis{}, nil
}

func (f *fakeEngine) Running() bool { return f.running }

func testConfig() *bootstrap.Config {
	return &bootstrap.Config{
		EngineDepthRoot:    18,
		EngineDepthShallow: 12,
		EngineDepthPlayed:  15,
		LinePlyCap:         5,
		PVPlyCap:           10,
	}
}

func newTestService(engine *fakeEngine) *Service {
	log := zap.NewNop().Sugar()
	return NewService(testConfig(), log, engine, repository.NewEvalCache(nil, log))
}

func childFEN(t *testing.T, fen, san string) string {
	t.Helper()
	pos, err := rules.PositionFromFEN(fen)
	if err != nil {
		t.Fatalf("PositionFromFEN: %v", err)
	}
	move, err := rules.DecodeSAN(pos, san)
	if err != nil {
		t.Fatalf("DecodeSAN(%s): %v", san, err)
	}
	return pos.Update(move).String()
}

func TestVerifyPartitionsCandidates(t *testing.T) {
	engine := &fakeEngine{
		running: true,
		evals: map[string]repository.EngineAnalysis{
			startFEN: {
				Score:    domain.CentipawnScore(30),
				PV:       []string{"e2e4", "e7e5"},
				BestMove: "e2e4",
			},
			childFEN(t, startFEN, "e4"): {
				Score: domain.CentipawnScore(-30),
				PV:    []string{"e7e5"},
			},
			childFEN(t, startFEN, "a4"): {
				Score: domain.CentipawnScore(250),
			},
		},
	}
	s := newTestService(engine)
	pos, _ := rules.PositionFromFEN(startFEN)

	candidates := []domain.CandidateMove{{SAN: "e4"}, {SAN: "a4"}}
	v := s.verify(context.Background(), pos, candidates, "", domain.DefaultOptions())

	if v.RootScore.Centipawns != 30 {
		t.Errorf("root score = %d, want 30", v.RootScore.Centipawns)
	}
	if v.Verdict != "equal" {
		t.Errorf("verdict = %q, want equal", v.Verdict)
	}

	if len(v.Promising) != 1 || v.Promising[0].SAN != "e4" {
		t.Fatalf("promising = %+v, want just e4", v.Promising)
	}
	// Child score is sign-flipped to the root mover's perspective.
	if v.Promising[0].Score.Centipawns != 30 {
		t.Errorf("candidate score = %d, want 30", v.Promising[0].Score.Centipawns)
	}
	if v.Promising[0].Line == nil || v.Promising[0].Line.Plies[0].SAN != "e4" {
		t.Errorf("calculation line must start with its candidate: %+v", v.Promising[0].Line)
	}

	if len(v.Eliminated) != 1 || v.Eliminated[0].SAN != "a4" {
		t.Fatalf("eliminated = %+v, want just a4", v.Eliminated)
	}
	if v.Eliminated[0].Line != nil {
		t.Error("eliminated candidates should not carry continuation lines")
	}
	if v.Eliminated[0].Score.Centipawns >= v.Promising[0].Score.Centipawns-200 {
		t.Error("eliminated candidate should be below the margin")
	}
}

func TestVerifySkipsIllegalCandidate(t *testing.T) {
	engine := &fakeEngine{
		running: true,
		evals: map[string]repository.EngineAnalysis{
			startFEN: {Score: domain.CentipawnScore(10), BestMove: "e2e4"},
		},
	}
	s := newTestService(engine)
	pos, _ := rules.PositionFromFEN(startFEN)

	v := s.verify(context.Background(), pos, []domain.CandidateMove{{SAN: "Qh5"}}, "", domain.DefaultOptions())

	if len(v.Promising) != 0 || len(v.Eliminated) != 0 {
		t.Errorf("illegal candidate should be skipped, got %+v / %+v", v.Promising, v.Eliminated)
	}
	if len(v.Status) == 0 {
		t.Error("skipping a candidate should leave a status diagnostic")
	}
}

func TestPlayedMoveBlunderClassification(t *testing.T) {
	engine := &fakeEngine{
		running: true,
		evals: map[string]repository.EngineAnalysis{
			startFEN: {
				Score:    domain.CentipawnScore(100),
				PV:       []string{"e2e4"},
				BestMove: "e2e4",
			},
			// After a4 the opponent is up 250 from their side; flipped this
			// is -250 for the mover, a 350 point gap.
			childFEN(t, startFEN, "a4"): {
				Score: domain.CentipawnScore(250),
			},
		},
	}
	s := newTestService(engine)
	pos, _ := rules.PositionFromFEN(startFEN)

	v := s.verify(context.Background(), pos, nil, "a4", domain.DefaultOptions())
	if v.Played == nil {
		t.Fatal("played-move verdict missing")
	}
	if v.Played.Verdict != "blunder" {
		t.Errorf("verdict = %q, want blunder", v.Played.Verdict)
	}
	if v.Played.GapCP != 350 {
		t.Errorf("gap = %d, want 350", v.Played.GapCP)
	}
	if v.Played.BestMove != "e4" {
		t.Errorf("best move = %q, want e4", v.Played.BestMove)
	}
}

func TestStaleVerificationDropped(t *testing.T) {
	engine := &fakeEngine{
		running: true,
		evals: map[string]repository.EngineAnalysis{
			startFEN: {Score: domain.CentipawnScore(10), BestMove: "e2e4"},
		},
	}
	s := newTestService(engine)
	pos, _ := rules.PositionFromFEN(startFEN)

	updates, cancel := s.Subscribe()
	defer cancel()

	s.setCurrentToken("current")
	s.runVerification("stale", pos, nil, "", domain.DefaultOptions())

	select {
	case v := <-updates:
		t.Fatalf("stale verification %q should have been dropped", v.Token)
	default:
	}

	s.runVerification("current", pos, nil, "", domain.DefaultOptions())
	select {
	case v := <-updates:
		if v.Token != "current" {
			t.Errorf("token = %q, want current", v.Token)
		}
	default:
		t.Fatal("fresh verification should have been published")
	}
}

func TestAnalyzeWithoutEngineDegrades(t *testing.T) {
	s := newTestService(&fakeEngine{running: false})

	report, err := s.Analyze(context.Background(), startFEN, "", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Token == "" {
		t.Error("report should carry a generation token")
	}
	found := false
	for _, status := range report.Status {
		if status == "engine not running; verification skipped" {
			found = true
		}
	}
	if !found {
		t.Errorf("degradation status missing from %v", report.Status)
	}
}

func TestAnalyzeRejectsIllegalPlayedMove(t *testing.T) {
	s := newTestService(&fakeEngine{running: false})

	report, err := s.Analyze(context.Background(), startFEN, "Qh5", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Played != "" {
		t.Errorf("illegal played move should be ignored, got %q", report.Played)
	}
}

func TestAnalyzeGamePly(t *testing.T) {
	s := newTestService(&fakeEngine{running: false})

	g, err := repository.ParseGame("[Event \"Casual Game\"]\n\n1. e4 e5 2. Nf3 Nc6 1-0")
	if err != nil {
		t.Fatalf("ParseGame: %v", err)
	}

	report, err := s.AnalyzeGamePly(context.Background(), g, 2, nil)
	if err != nil {
		t.Fatalf("AnalyzeGamePly: %v", err)
	}
	if report.FEN != g.Moves[0].FEN {
		t.Errorf("analyzed FEN = %q, want position after e4", report.FEN)
	}
	if report.Played != "e5" {
		t.Errorf("played = %q, want e5", report.Played)
	}

	if _, err := s.AnalyzeGamePly(context.Background(), g, 5, nil); err == nil {
		t.Error("ply past the end of the game should be rejected")
	}
	if _, err := s.AnalyzeGamePly(context.Background(), g, 0, nil); err == nil {
		t.Error("ply 0 should be rejected")
	}
}

func TestAnalyzeEmptyFEN(t *testing.T) {
	s := newTestService(&fakeEngine{running: false})

	report, err := s.Analyze(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Candidates) != 0 || len(report.Status) == 0 {
		t.Errorf("missing position should yield an empty report with status, got %+v", report)
	}
}
