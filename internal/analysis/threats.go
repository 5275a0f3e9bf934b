package analysis

import (
	"fmt"

	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

// DetectThreats walks the position for dangers against the side to move:
// checks, hanging and underdefended pieces, knight forks, skewers, then the
// bounded forced-mate and forced-material searches. Records come back in
// detection order.
func DetectThreats(pos *chess.Position) []domain.ThreatRecord {
	var threats []domain.ThreatRecord
	board := pos.Board()
	us := pos.Turn()
	them := us.Other()

	if rules.IsInCheck(pos) {
		ksq := rules.KingSquare(board, us)
		checkers := rules.Attackers(board, ksq, them)
		if len(checkers) > 0 {
			checker := checkers[0]
			piece := board.Piece(checker)
			text := fmt.Sprintf("You are in check by %s from %s",
				rules.PieceName(piece.Type()), checker.String())
			mayMate := canLeadToCheckmate(pos)
			if mayMate {
				text += " (could lead to checkmate)"
			}
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatCheck,
				Square:   checker,
				Target:   ksq,
				MayMate:  mayMate,
				Text:     text,
			})
		} else {
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatCheck,
				Square:   chess.NoSquare,
				Text:     "You are in check",
			})
		}
	}

	threats = append(threats, hangingPieceThreats(board, us)...)
	threats = append(threats, knightForkThreats(board, us)...)
	threats = append(threats, skewerThreats(board, us)...)

	if mate, ok := forcedMateThreat(pos); ok {
		threats = append(threats, mate)
	}
	if !mateAlreadyFound(threats) {
		threats = append(threats, forcedMaterialThreats(pos)...)
	}

	return threats
}

// canLeadToCheckmate runs the 3-ply follow-up search of the check branch. It
// explores the checked side's own mating continuations (response, opponent
// reply, next move), which is the behavior the report promises.
func canLeadToCheckmate(pos *chess.Position) bool {
	for _, response := range pos.ValidMoves() {
		afterResponse := pos.Update(response)
		if afterResponse.Status() == chess.Checkmate {
			continue
		}
		found := false
		for _, opponentMove := range afterResponse.ValidMoves() {
			afterOpponent := afterResponse.Update(opponentMove)
			for _, ours := range afterOpponent.ValidMoves() {
				if afterOpponent.Update(ours).Status() == chess.Checkmate {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

func hangingPieceThreats(board *chess.Board, us chess.Color) []domain.ThreatRecord {
	var threats []domain.ThreatRecord
	them := us.Other()

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us {
			continue
		}
		attackers := rules.Attackers(board, sq, them)
		if len(attackers) == 0 {
			continue
		}
		defenders := rules.Defenders(board, sq, us)

		name := rules.PieceName(piece.Type())
		value := rules.PieceValue(piece.Type())

		switch {
		case len(defenders) == 0:
			text := fmt.Sprintf("Undefended %s on %s is under attack", name, sq.String())
			if line := threatLine(board, sq, attackers[0], us); line != "" {
				text += " - " + line
			}
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatHangingPiece,
				Square:   sq,
				Text:     text,
			})
		case len(attackers) > len(defenders):
			text := fmt.Sprintf("Underdefended %s on %s is under attack", name, sq.String())
			if line := threatLine(board, sq, attackers[0], us); line != "" {
				text += " - " + line
			}
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatUnderdefended,
				Square:   sq,
				Text:     text,
			})
		default:
			for _, attackerSq := range attackers {
				attacker := board.Piece(attackerSq)
				if rules.PieceValue(attacker.Type()) < value {
					threats = append(threats, domain.ThreatRecord{
						Category: domain.ThreatLowValueAttacker,
						Square:   sq,
						Text:     fmt.Sprintf("%s on %s attacked by lower value piece", name, sq.String()),
					})
					break
				}
			}
		}
	}
	return threats
}

// threatLine explains how the capture on target would play out: who takes,
// whether the capture gives check, and whether it wins material outright.
func threatLine(board *chess.Board, target, attackerSq chess.Square, us chess.Color) string {
	targetPiece := board.Piece(target)
	attackerPiece := board.Piece(attackerSq)
	if targetPiece == chess.NoPiece || attackerPiece == chess.NoPiece {
		return ""
	}

	explanation := fmt.Sprintf("The %s on %s can capture the %s",
		rules.PieceName(attackerPiece.Type()), attackerSq.String(),
		rules.PieceName(targetPiece.Type()))

	ksq := rules.KingSquare(board, us)
	if ksq != chess.NoSquare && captureWouldGiveCheck(board, attackerSq, target, ksq) {
		return explanation + " with check"
	}

	targetValue := rules.PieceValue(targetPiece.Type())
	if targetValue > rules.PieceValue(attackerPiece.Type()) {
		return fmt.Sprintf("%s winning %d points of material", explanation, targetValue)
	}
	return explanation
}

// captureWouldGiveCheck tests whether the attacker, once landed on target,
// would attack kingSq. The attacker's origin counts as vacated.
func captureWouldGiveCheck(board *chess.Board, from, to, kingSq chess.Square) bool {
	piece := board.Piece(from)
	if piece == chess.NoPiece {
		return false
	}
	df := int(kingSq.File()) - int(to.File())
	dr := int(kingSq.Rank()) - int(to.Rank())

	switch piece.Type() {
	case chess.Pawn:
		fwd := 1
		if piece.Color() == chess.Black {
			fwd = -1
		}
		return dr == fwd && (df == 1 || df == -1)
	case chess.Knight:
		return (abs(df) == 1 && abs(dr) == 2) || (abs(df) == 2 && abs(dr) == 1)
	case chess.King:
		return abs(df) <= 1 && abs(dr) <= 1 && (df != 0 || dr != 0)
	}

	straight := df == 0 || dr == 0
	diag := abs(df) == abs(dr)
	switch piece.Type() {
	case chess.Rook:
		if !straight {
			return false
		}
	case chess.Bishop:
		if !diag {
			return false
		}
	case chess.Queen:
		if !straight && !diag {
			return false
		}
	}

	dir := rules.Direction{DF: sign(df), DR: sign(dr)}
	sq := to
	for {
		next, ok := rules.Step(sq, dir)
		if !ok {
			return false
		}
		if next == kingSq {
			return true
		}
		if next != from && board.Piece(next) != chess.NoPiece {
			return false
		}
		sq = next
	}
}

func knightForkThreats(board *chess.Board, us chess.Color) []domain.ThreatRecord {
	var threats []domain.ThreatRecord
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() == us || piece.Type() != chess.Knight {
			continue
		}
		targets := 0
		for _, attackSq := range rules.AttackSquares(board, sq) {
			victim := board.Piece(attackSq)
			if victim == chess.NoPiece || victim.Color() != us {
				continue
			}
			switch victim.Type() {
			case chess.King, chess.Queen, chess.Rook, chess.Bishop:
				targets++
			}
		}
		if targets >= 2 {
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatKnightFork,
				Square:   sq,
				Text:     fmt.Sprintf("Knight fork threat from %s", sq.String()),
			})
		}
	}
	return threats
}

func skewerThreats(board *chess.Board, us chess.Color) []domain.ThreatRecord {
	var threats []domain.ThreatRecord
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us {
			continue
		}
		dirs := rules.SlidingDirections(piece.Type())
		if dirs == nil {
			continue
		}
		for _, dir := range dirs {
			ray := rules.RayOccupants(board, sq, dir, 3)
			if len(ray) != 2 {
				continue
			}
			near, far := board.Piece(ray[0]), board.Piece(ray[1])
			if near.Color() == us || far.Color() == us {
				continue
			}
			if rules.PieceValue(far.Type()) > rules.PieceValue(near.Type()) {
				threats = append(threats, domain.ThreatRecord{
					Category: domain.ThreatSkewer,
					Square:   sq,
					Target:   ray[1],
					Text:     fmt.Sprintf("Potential skewer from %s to %s", sq.String(), ray[1].String()),
				})
			}
		}
	}
	return threats
}

// forcedMateThreat looks for a first check after which every opponent reply
// allows checkmate on the next move. First match wins; the scan does not
// continue looking for a shorter mate.
func forcedMateThreat(pos *chess.Position) (domain.ThreatRecord, bool) {
	for _, move1 := range pos.ValidMoves() {
		if !rules.GivesCheck(move1) {
			continue
		}
		afterMove1 := pos.Update(move1)

		noEscape := true
		for _, response := range afterMove1.ValidMoves() {
			afterResponse := afterMove1.Update(response)
			hasMate := false
			for _, move2 := range afterResponse.ValidMoves() {
				if afterResponse.Update(move2).Status() == chess.Checkmate {
					hasMate = true
					break
				}
			}
			if !hasMate {
				noEscape = false
				break
			}
		}
		if noEscape {
			san := rules.EncodeSAN(pos, move1)
			return domain.ThreatRecord{
				Category: domain.ThreatForcedMate,
				MoveSAN:  san,
				Text:     fmt.Sprintf("Potential checkmate in 3 starting with %s", san),
			}, true
		}
	}
	return domain.ThreatRecord{}, false
}

// mateAlreadyFound gates the material-win search: a forced mate, or a check
// annotated as possibly mating, makes further material scanning pointless.
func mateAlreadyFound(threats []domain.ThreatRecord) bool {
	for _, t := range threats {
		if t.Category == domain.ThreatForcedMate {
			return true
		}
		if t.Category == domain.ThreatCheck && t.MayMate {
			return true
		}
	}
	return false
}

// forcedMaterialThreats finds forcing first moves (captures or checks that do
// not hang a piece worth three or more) after which every opponent reply
// allows a capture winning at least minor-piece value.
func forcedMaterialThreats(pos *chess.Position) []domain.ThreatRecord {
	var threats []domain.ThreatRecord
	for _, move1 := range pos.ValidMoves() {
		if !rules.IsCapture(move1) && !rules.GivesCheck(move1) {
			continue
		}
		afterMove1 := pos.Update(move1)
		if leavesValuablePieceHanging(afterMove1) {
			continue
		}
		if !rules.GivesCheck(move1) {
			continue
		}

		allResponsesLosing := true
		for _, response := range afterMove1.ValidMoves() {
			afterResponse := afterMove1.Update(response)
			materialWin := false
			for _, move2 := range afterResponse.ValidMoves() {
				if !rules.IsCapture(move2) {
					continue
				}
				victim := afterResponse.Board().Piece(move2.S2())
				if victim != chess.NoPiece && rules.PieceValue(victim.Type()) >= 3 {
					materialWin = true
					break
				}
			}
			if !materialWin {
				allResponsesLosing = false
				break
			}
		}
		if allResponsesLosing {
			san := rules.EncodeSAN(pos, move1)
			threats = append(threats, domain.ThreatRecord{
				Category: domain.ThreatForcedMaterialWin,
				MoveSAN:  san,
				Text:     fmt.Sprintf("Potential winning tactic starting with %s", san),
			})
		}
	}
	return threats
}

// leavesValuablePieceHanging checks the mover's pieces after their move: a
// piece worth three or more with more enemy attackers than defenders.
func leavesValuablePieceHanging(pos *chess.Position) bool {
	board := pos.Board()
	mover := pos.Turn().Other()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != mover {
			continue
		}
		if rules.PieceValue(piece.Type()) < 3 {
			continue
		}
		attackers := rules.Attackers(board, sq, pos.Turn())
		if len(attackers) == 0 {
			continue
		}
		defenders := rules.Defenders(board, sq, mover)
		if len(attackers) > len(defenders) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
