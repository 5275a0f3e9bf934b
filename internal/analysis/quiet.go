package analysis

import (
	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

// HasImmediateThreats is the reduced-scope threat probe used when tagging
// calculation lines: hanging or cheaply-attacked pieces of the side to move,
// or an enemy knight fork in the air.
func HasImmediateThreats(pos *chess.Position) bool {
	board := pos.Board()
	us := pos.Turn()
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
		value := rules.PieceValue(piece.Type())
		for _, attackerSq := range attackers {
			if rules.PieceValue(board.Piece(attackerSq).Type()) <= value {
				return true
			}
		}
		if len(attackers) > len(rules.Defenders(board, sq, us)) {
			return true
		}
	}

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != them || piece.Type() != chess.Knight {
			continue
		}
		targets := 0
		for _, attackSq := range rules.AttackSquares(board, sq) {
			victim := board.Piece(attackSq)
			if victim == chess.NoPiece || victim.Color() != us {
				continue
			}
			switch victim.Type() {
			case chess.King, chess.Queen, chess.Rook:
				targets++
			}
		}
		if targets >= 2 {
			return true
		}
	}

	return false
}

// ClassifyPly tags the position reached after a ply: check beats capture
// beats threat beats quiet.
func ClassifyPly(pos *chess.Position) domain.LineTag {
	if rules.IsInCheck(pos) {
		return domain.TagCheck
	}
	for _, move := range pos.ValidMoves() {
		if rules.IsCapture(move) {
			return domain.TagCapture
		}
	}
	if HasImmediateThreats(pos) {
		return domain.TagThreat
	}
	return domain.TagQuiet
}
