package analysis

import (
	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

const responsesPerBucket = 5

// GenerateResponses proposes ways out of the detected threats, sorted into
// the four thought-process buckets. Each bucket is deduplicated and capped.
func GenerateResponses(pos *chess.Position, threats []domain.ThreatRecord) domain.ResponseSet {
	var set domain.ResponseSet
	legal := pos.ValidMoves()

	for _, threat := range threats {
		switch threat.Category {
		case domain.ThreatCheck:
			respondToCheck(pos, legal, &set)
		case domain.ThreatHangingPiece, domain.ThreatUnderdefended, domain.ThreatLowValueAttacker:
			respondToAttack(pos, legal, threat.Square, &set)
		case domain.ThreatKnightFork:
			respondToFork(pos, legal, threat.Square, &set)
		}
	}

	set.CaptureAttacker = dedupCap(set.CaptureAttacker, responsesPerBucket)
	set.BlockThreat = dedupCap(set.BlockThreat, responsesPerBucket)
	set.MoveAttacked = dedupCap(set.MoveAttacked, responsesPerBucket)
	set.Counterattack = dedupCap(set.Counterattack, responsesPerBucket)
	return set
}

func respondToCheck(pos *chess.Position, legal []*chess.Move, set *domain.ResponseSet) {
	board := pos.Board()
	us := pos.Turn()
	ksq := rules.KingSquare(board, us)
	checkers := rules.Attackers(board, ksq, us.Other())

	for _, move := range legal {
		after := pos.Update(move)
		if rules.IsAttacked(after.Board(), rules.KingSquare(after.Board(), us), us.Other()) {
			continue
		}
		san := rules.EncodeSAN(pos, move)

		switch {
		case rules.IsCapture(move):
			capturedChecker := false
			for _, sq := range checkers {
				if move.S2() == sq {
					capturedChecker = true
					break
				}
			}
			if capturedChecker {
				set.CaptureAttacker = append(set.CaptureAttacker, san)
			} else {
				set.Counterattack = append(set.Counterattack, san)
			}
		case board.Piece(move.S1()).Type() == chess.King:
			set.MoveAttacked = append(set.MoveAttacked, san)
		default:
			set.BlockThreat = append(set.BlockThreat, san)
		}
	}
}

func respondToAttack(pos *chess.Position, legal []*chess.Move, threatened chess.Square, set *domain.ResponseSet) {
	board := pos.Board()
	us := pos.Turn()
	them := us.Other()
	attackers := rules.Attackers(board, threatened, them)
	defendersBefore := len(rules.Defenders(board, threatened, us))
	threatenedValue := rules.PieceValue(board.Piece(threatened).Type())

	for _, move := range legal {
		san := rules.EncodeSAN(pos, move)

		if move.S1() == threatened {
			set.MoveAttacked = append(set.MoveAttacked, san)
			continue
		}

		if rules.IsCapture(move) {
			capturesAttacker := false
			for _, sq := range attackers {
				if move.S2() == sq {
					capturesAttacker = true
					break
				}
			}
			if capturesAttacker {
				set.CaptureAttacker = append(set.CaptureAttacker, san)
			} else {
				set.Counterattack = append(set.Counterattack, san)
			}
			continue
		}

		after := pos.Update(move)
		if len(rules.Defenders(after.Board(), threatened, us)) > defendersBefore {
			set.BlockThreat = append(set.BlockThreat, san)
		}

		if rules.GivesCheck(move) {
			set.Counterattack = append(set.Counterattack, san)
			continue
		}
		for _, target := range rules.AttackSquares(after.Board(), move.S2()) {
			victim := after.Board().Piece(target)
			if victim == chess.NoPiece || victim.Color() != them {
				continue
			}
			if rules.PieceValue(victim.Type()) >= threatenedValue {
				set.Counterattack = append(set.Counterattack, san)
				break
			}
		}
	}
}

func respondToFork(pos *chess.Position, legal []*chess.Move, forker chess.Square, set *domain.ResponseSet) {
	board := pos.Board()
	forkTargets := rules.AttackSquares(board, forker)

	for _, move := range legal {
		san := rules.EncodeSAN(pos, move)

		if move.S2() == forker {
			set.CaptureAttacker = append(set.CaptureAttacker, san)
		}
		for _, sq := range forkTargets {
			if move.S1() == sq {
				set.MoveAttacked = append(set.MoveAttacked, san)
				break
			}
		}
		if rules.GivesCheck(move) {
			set.Counterattack = append(set.Counterattack, san)
		}
	}
}

func dedupCap(moves []string, limit int) []string {
	if len(moves) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(moves))
	out := make([]string, 0, len(moves))
	for _, san := range moves {
		if _, ok := seen[san]; ok {
			continue
		}
		seen[san] = struct{}{}
		out = append(out, san)
		if len(out) == limit {
			break
		}
	}
	return out
}
