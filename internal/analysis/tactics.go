package analysis

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

const threatMovesShown = 5

// ScanTactics runs the unconditional checks-captures-threats sweep plus the
// signal and idea detectors, and returns everything deduplicated in
// first-seen order.
func ScanTactics(pos *chess.Position) domain.TacticalReport {
	legal := pos.ValidMoves()

	report := domain.TacticalReport{
		Checks:      checkMoves(pos, legal),
		Captures:    captureMoves(pos, legal),
		ThreatMoves: threatCreatingMoves(pos, legal),
		Signals:     tacticalSignals(pos),
	}
	report.Ideas, report.Moves = tacticalIdeas(pos, legal)
	return report
}

func checkMoves(pos *chess.Position, legal []*chess.Move) []string {
	var checks []string
	for _, move := range legal {
		if rules.GivesCheck(move) {
			checks = append(checks, rules.EncodeSAN(pos, move))
		}
	}
	return checks
}

func captureMoves(pos *chess.Position, legal []*chess.Move) []string {
	var captures []string
	for _, move := range legal {
		if rules.IsCapture(move) {
			captures = append(captures, rules.EncodeSAN(pos, move))
		}
	}
	return captures
}

// threatCreatingMoves keeps non-captures whose destination square itself
// attacks an enemy piece after the move. The mover has to be the new
// attacker; threats uncovered elsewhere on the board do not count.
func threatCreatingMoves(pos *chess.Position, legal []*chess.Move) []string {
	us := pos.Turn()
	them := us.Other()

	var threats []string
	for _, move := range legal {
		if rules.IsCapture(move) {
			continue
		}
		after := pos.Update(move)
		board := after.Board()

		createsThreat := false
		for _, sq := range rules.AttackSquares(board, move.S2()) {
			target := board.Piece(sq)
			if target != chess.NoPiece && target.Color() == them {
				createsThreat = true
				break
			}
		}
		if createsThreat {
			threats = append(threats, rules.EncodeSAN(pos, move))
		}
		if len(threats) == threatMovesShown {
			break
		}
	}
	return threats
}

func tacticalSignals(pos *chess.Position) []string {
	board := pos.Board()
	us := pos.Turn()
	them := us.Other()

	var signals []string

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != them {
			continue
		}
		if len(rules.Defenders(board, sq, them)) == 0 {
			signals = append(signals, fmt.Sprintf("Undefended %s on %s",
				rules.PieceName(piece.Type()), sq.String()))
		}
	}

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
			ray := rules.RayOccupants(board, sq, dir, 2)
			if len(ray) != 2 {
				continue
			}
			if board.Piece(ray[0]).Color() != board.Piece(ray[1]).Color() {
				signals = append(signals, fmt.Sprintf(
					"Potential pin or X-ray attack with %s on %s",
					strings.ToLower(rules.PieceName(piece.Type())), sq.String()))
				break
			}
		}
	}

	kingSq := rules.KingSquare(board, them)
	if kingSq != chess.NoSquare {
		nearby := 0
		for df := -1; df <= 1; df++ {
			for dr := -1; dr <= 1; dr++ {
				if df == 0 && dr == 0 {
					continue
				}
				sq, ok := rules.SquareAt(int(kingSq.File())+df, int(kingSq.Rank())+dr)
				if !ok {
					continue
				}
				piece := board.Piece(sq)
				if piece != chess.NoPiece && piece.Color() == us {
					nearby++
				}
			}
		}
		if nearby >= 2 {
			signals = append(signals, "Enemy king has multiple pieces attacking nearby (potential tactics)")
		}

		for df := -1; df <= 1; df++ {
			file := int(kingSq.File()) + df
			if file < 0 || file > 7 {
				continue
			}
			open := true
			for rank := 0; rank < 8; rank++ {
				sq, _ := rules.SquareAt(file, rank)
				if board.Piece(sq).Type() == chess.Pawn {
					open = false
					break
				}
			}
			if open {
				signals = append(signals, fmt.Sprintf("Open file near enemy king (file %c)", 'a'+file))
			}
		}
	}

	return signals
}

func tacticalIdeas(pos *chess.Position, legal []*chess.Move) (ideas, moves []string) {
	board := pos.Board()
	us := pos.Turn()
	them := us.Other()

	// Knight fork opportunities: a knight already hitting two heavy targets,
	// plus its moves that set up a fresh fork.
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us || piece.Type() != chess.Knight {
			continue
		}
		if countForkTargets(board, sq, them) < 2 {
			continue
		}
		ideas = append(ideas, fmt.Sprintf("Knight fork opportunity from %s", sq.String()))

		for _, move := range legal {
			if move.S1() != sq {
				continue
			}
			after := pos.Update(move)
			if countForkTargets(after.Board(), move.S2(), them) >= 2 {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	// Discovered checks: the move gives check without the mover itself
	// attacking the enemy king square.
	for _, move := range legal {
		if !rules.GivesCheck(move) {
			continue
		}
		after := pos.Update(move)
		enemyKing := rules.KingSquare(after.Board(), them)
		if enemyKing == chess.NoSquare {
			continue
		}
		moverAttacks := false
		for _, sq := range rules.AttackSquares(after.Board(), move.S2()) {
			if sq == enemyKing {
				moverAttacks = true
				break
			}
		}
		if !moverAttacks {
			san := rules.EncodeSAN(pos, move)
			ideas = append(ideas, fmt.Sprintf("Potential discovered check with %s", san))
			moves = append(moves, san)
		}
	}

	if rules.IsInCheck(pos) {
		ideas = append(ideas, "Look for checkmate patterns")
	}
	for _, move := range legal {
		if pos.Update(move).Status() == chess.Checkmate {
			san := rules.EncodeSAN(pos, move)
			ideas = append(ideas, fmt.Sprintf("Checkmate with %s", san))
			moves = append(moves, san)
		}
	}

	// Back rank patterns.
	enemyKing := rules.KingSquare(board, them)
	if enemyKing != chess.NoSquare {
		backRank := 0
		if them == chess.Black {
			backRank = 7
		}
		if int(enemyKing.Rank()) == backRank {
			ideas = append(ideas, "Enemy king on back rank - look for mate patterns")
			for _, move := range legal {
				t := board.Piece(move.S1()).Type()
				if (t == chess.Rook || t == chess.Queen) && int(move.S2().Rank()) == backRank {
					moves = append(moves, rules.EncodeSAN(pos, move))
				}
			}
		}
	}

	moves = append(moves, pinCreatingMoves(pos, legal)...)
	moves = append(moves, undefendedAttackMoves(pos, legal)...)

	return dedup(ideas), dedup(moves)
}

func countForkTargets(board *chess.Board, knightSq chess.Square, them chess.Color) int {
	targets := 0
	for _, sq := range rules.AttackSquares(board, knightSq) {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != them {
			continue
		}
		switch piece.Type() {
		case chess.King, chess.Queen, chess.Rook:
			targets++
		}
	}
	return targets
}

// pinCreatingMoves finds sliders standing on a two-piece enemy ray ending in
// a heavy piece, and their moves that stay in the same ray direction.
func pinCreatingMoves(pos *chess.Position, legal []*chess.Move) []string {
	board := pos.Board()
	us := pos.Turn()

	var moves []string
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
			ray := rules.RayOccupants(board, sq, dir, 2)
			if len(ray) != 2 {
				continue
			}
			near, far := board.Piece(ray[0]), board.Piece(ray[1])
			if near.Color() == us || far.Color() == us {
				continue
			}
			switch far.Type() {
			case chess.King, chess.Queen, chess.Rook:
			default:
				continue
			}
			for _, move := range legal {
				if move.S1() != sq {
					continue
				}
				df := sign(int(move.S2().File()) - int(sq.File()))
				dr := sign(int(move.S2().Rank()) - int(sq.Rank()))
				if df == dir.DF && dr == dir.DR {
					moves = append(moves, rules.EncodeSAN(pos, move))
				}
			}
		}
	}
	return moves
}

// undefendedAttackMoves finds moves that newly attack an enemy piece nobody
// defends.
func undefendedAttackMoves(pos *chess.Position, legal []*chess.Move) []string {
	board := pos.Board()
	us := pos.Turn()
	them := us.Other()

	var moves []string
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != them {
			continue
		}
		if len(rules.Defenders(board, sq, them)) != 0 {
			continue
		}
		attackedBefore := rules.IsAttacked(board, sq, us)
		for _, move := range legal {
			after := pos.Update(move)
			if !attackedBefore && rules.IsAttacked(after.Board(), sq, us) {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}
	return moves
}

func dedup(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
