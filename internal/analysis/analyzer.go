package analysis

import (
	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

// Analyze runs the synchronous thought-process pipeline: threat detection,
// responses, the tactical sweep, conditional strategic advice, and candidate
// aggregation. Engine verification is a separate, asynchronous stage.
func Analyze(pos *chess.Position, opts domain.Options) domain.Report {
	if pos == nil {
		return domain.Report{Status: []string{"no position supplied; analysis skipped"}}
	}

	report := domain.Report{
		FEN:  pos.String(),
		Turn: pos.Turn().Name(),
	}

	report.Threats = DetectThreats(pos)

	if len(report.Threats) > 0 {
		responses := GenerateResponses(pos, report.Threats)
		report.Responses = &responses
		if responses.Empty() {
			report.Status = append(report.Status, "no responses to the detected threats exist")
		}
	} else {
		report.PhaseHeader = string(looseGamePhase(pos))
	}

	report.Tactics = ScanTactics(pos)

	if len(report.Threats) > 0 && opts.SimplifyOnThreats {
		report.Status = append(report.Status, "strategic analysis skipped due to detected threats")
	} else {
		strategy := AdviseStrategy(pos)
		report.Strategy = &strategy
	}

	report.Candidates = AggregateCandidates(report.Responses, report.Tactics, report.Strategy)
	if len(report.Candidates) == 0 {
		report.Status = append(report.Status, "no candidate moves identified; consider general principles")
	}

	return report
}

// looseGamePhase is the header-only phase label: unlike GamePhase it also
// requires an early move number before calling the position an opening.
func looseGamePhase(pos *chess.Position) domain.Phase {
	count := rules.PieceCount(pos.Board())
	switch {
	case count > 28 && rules.MoveNumber(pos) < 10:
		return domain.PhaseOpening
	case count < 12:
		return domain.PhaseEndgame
	default:
		return domain.PhaseMiddlegame
	}
}
