package analysis

import (
	"testing"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
)

func TestAggregatePriorityAndDedup(t *testing.T) {
	responses := &domain.ResponseSet{
		CaptureAttacker: []string{"Qxc6+"},
		MoveAttacked:    []string{"Qd8"},
	}
	tactics := domain.TacticalReport{
		Checks:   []string{"Qxc6+", "Qg8+"},
		Captures: []string{"Qxc6+"},
		Moves:    []string{"Qg8+", "Nf5"},
	}
	strategy := &domain.StrategicReport{
		Moves: []string{"Nf5", "Kd2"},
	}

	candidates := AggregateCandidates(responses, tactics, strategy)

	seen := make(map[string]domain.CandidateSource)
	for _, cand := range candidates {
		if _, dup := seen[cand.SAN]; dup {
			t.Errorf("duplicate candidate %q", cand.SAN)
		}
		seen[cand.SAN] = cand.Source
	}

	wantSources := map[string]domain.CandidateSource{
		"Qxc6+": domain.SourceThreatResponse,
		"Qd8":   domain.SourceThreatResponse,
		"Qg8+":  domain.SourceCheck,
		"Nf5":   domain.SourceTactical,
		"Kd2":   domain.SourceStrategic,
	}
	if len(candidates) != len(wantSources) {
		t.Fatalf("got %d candidates, want %d: %+v", len(candidates), len(wantSources), candidates)
	}
	for san, want := range wantSources {
		if got, ok := seen[san]; !ok || got != want {
			t.Errorf("candidate %q has source %v, want %v", san, seen[san], want)
		}
	}
}

func TestAggregateWithoutResponsesOrStrategy(t *testing.T) {
	tactics := domain.TacticalReport{Checks: []string{"Qg8+"}}

	candidates := AggregateCandidates(nil, tactics, nil)
	if len(candidates) != 1 || candidates[0].SAN != "Qg8+" || candidates[0].Source != domain.SourceCheck {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestAnalyzePipelineOnStartPosition(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")

	report := Analyze(pos, domain.DefaultOptions())

	if len(report.Threats) != 0 {
		t.Errorf("start position has threats: %+v", report.Threats)
	}
	if report.Responses != nil {
		t.Error("no responses expected without threats")
	}
	if report.PhaseHeader != string(domain.PhaseOpening) {
		t.Errorf("phase header = %q, want Opening", report.PhaseHeader)
	}
	if report.Strategy == nil {
		t.Fatal("strategic advice expected without threats")
	}
	if len(report.Candidates) == 0 {
		t.Error("expected development candidates")
	}
	for i, cand := range report.Candidates {
		for _, other := range report.Candidates[i+1:] {
			if cand.SAN == other.SAN {
				t.Errorf("duplicate candidate %q in report", cand.SAN)
			}
		}
	}
}

func TestAnalyzeSimplifySkipsStrategyUnderThreat(t *testing.T) {
	pos := mustPosition(t, "4k3/8/2p5/3Q4/8/8/8/4K3 w - - 0 1")

	opts := domain.DefaultOptions()
	opts.SimplifyOnThreats = true
	report := Analyze(pos, opts)

	if len(report.Threats) == 0 {
		t.Fatal("queen under attack should produce threats")
	}
	if report.Strategy != nil {
		t.Error("strategy should be skipped in simplify mode under threat")
	}

	opts.SimplifyOnThreats = false
	report = Analyze(pos, opts)
	if report.Strategy == nil {
		t.Error("strategy should run when simplify mode is off")
	}
}

func TestAnalyzeNilPosition(t *testing.T) {
	report := Analyze(nil, domain.DefaultOptions())
	if len(report.Candidates) != 0 || len(report.Status) == 0 {
		t.Errorf("nil position should produce an empty report with status, got %+v", report)
	}
}
