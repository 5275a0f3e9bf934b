package analysis

import (
	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
)

// AggregateCandidates merges every bucket into one candidate list. Buckets
// are scanned in fixed priority order and the first occurrence of a SAN
// string wins; later duplicates are dropped.
func AggregateCandidates(responses *domain.ResponseSet, tactics domain.TacticalReport, strategy *domain.StrategicReport) []domain.CandidateMove {
	var candidates []domain.CandidateMove
	seen := make(map[string]struct{})

	add := func(source domain.CandidateSource, sans ...string) {
		for _, san := range sans {
			if _, ok := seen[san]; ok {
				continue
			}
			seen[san] = struct{}{}
			candidates = append(candidates, domain.CandidateMove{SAN: san, Source: source})
		}
	}

	if responses != nil {
		add(domain.SourceThreatResponse, responses.CaptureAttacker...)
		add(domain.SourceThreatResponse, responses.BlockThreat...)
		add(domain.SourceThreatResponse, responses.MoveAttacked...)
		add(domain.SourceThreatResponse, responses.Counterattack...)
	}
	add(domain.SourceCheck, tactics.Checks...)
	add(domain.SourceCapture, tactics.Captures...)
	add(domain.SourceThreat, tactics.ThreatMoves...)
	add(domain.SourceTactical, tactics.Moves...)
	if strategy != nil {
		add(domain.SourceStrategic, strategy.Moves...)
	}

	return candidates
}
