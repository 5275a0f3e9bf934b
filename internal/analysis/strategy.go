package analysis

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

var centerSquares = [4]chess.Square{chess.E4, chess.D4, chess.E5, chess.D5}

// GamePhase classifies the position by piece count alone.
func GamePhase(pos *chess.Position) domain.Phase {
	switch count := rules.PieceCount(pos.Board()); {
	case count > 28:
		return domain.PhaseOpening
	case count < 12:
		return domain.PhaseEndgame
	default:
		return domain.PhaseMiddlegame
	}
}

// AdviseStrategy produces phase-specific positional ideas and the moves that
// act on them.
func AdviseStrategy(pos *chess.Position) domain.StrategicReport {
	phase := GamePhase(pos)
	report := domain.StrategicReport{Phase: phase}

	switch phase {
	case domain.PhaseOpening:
		report.Ideas, report.Moves = openingAdvice(pos)
	case domain.PhaseMiddlegame:
		report.Ideas, report.Moves = middlegameAdvice(pos)
	default:
		report.Ideas, report.Moves = endgameAdvice(pos)
	}

	report.Moves = dedup(report.Moves)
	return report
}

func openingAdvice(pos *chess.Position) (ideas, moves []string) {
	board := pos.Board()
	us := pos.Turn()
	legal := pos.ValidMoves()

	homeRank := 0
	if us == chess.Black {
		homeRank = 7
	}

	developed := 0
	var undeveloped []chess.Square
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us {
			continue
		}
		if piece.Type() != chess.Knight && piece.Type() != chess.Bishop {
			continue
		}
		if int(sq.Rank()) != homeRank {
			developed++
		} else {
			undeveloped = append(undeveloped, sq)
		}
	}

	ideas = append(ideas, fmt.Sprintf("You have developed %d/4 minor pieces", developed))
	if developed < 4 {
		ideas = append(ideas, "Focus on developing your remaining minor pieces")
		for _, sq := range undeveloped {
			for _, move := range legal {
				if move.S1() != sq {
					continue
				}
				toRank := int(move.S2().Rank())
				toFile := int(move.S2().File())
				offBackRank := (us == chess.White && toRank > 0) || (us == chess.Black && toRank < 7)
				if offBackRank && toFile >= 2 && toFile <= 5 {
					moves = append(moves, rules.EncodeSAN(pos, move))
				}
			}
		}
	}

	rights := pos.CastleRights()
	if rights.CanCastle(us, chess.KingSide) || rights.CanCastle(us, chess.QueenSide) {
		ideas = append(ideas, "Consider castling to secure king safety")
		for _, move := range legal {
			if rules.IsCastle(move) {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	control := centerControl(board, us)
	ideas = append(ideas, fmt.Sprintf("You control %d/4 central squares", control))
	if control < 2 {
		ideas = append(ideas, "Work on improving central control")
		for _, move := range legal {
			after := pos.Update(move)
			if centerControl(after.Board(), us) > control {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	return ideas, moves
}

func centerControl(board *chess.Board, us chess.Color) int {
	control := 0
	for _, sq := range centerSquares {
		if rules.IsAttacked(board, sq, us) {
			control++
		}
	}
	return control
}

func middlegameAdvice(pos *chess.Position) (ideas, moves []string) {
	board := pos.Board()
	us := pos.Turn()
	legal := pos.ValidMoves()

	ideas = append(ideas, "Focus on piece coordination and active pieces")

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us {
			continue
		}
		mobility := len(rules.AttackSquares(board, sq))
		low := false
		switch piece.Type() {
		case chess.Knight:
			low = mobility < 4
		case chess.Bishop, chess.Rook:
			low = mobility < 7
		case chess.Queen:
			low = mobility < 14
		}
		if !low {
			continue
		}
		ideas = append(ideas, fmt.Sprintf("Improve mobility of %s at %s",
			strings.ToLower(rules.PieceName(piece.Type())), sq.String()))

		for _, move := range legal {
			if move.S1() != sq {
				continue
			}
			if rules.IsCapture(move) {
				moves = append(moves, rules.EncodeSAN(pos, move))
				continue
			}
			after := pos.Update(move)
			if len(rules.AttackSquares(after.Board(), move.S2())) > mobility {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	isolated, doubled, isolatedSquares := pawnStructure(board, us)
	if isolated > 0 {
		ideas = append(ideas, fmt.Sprintf(
			"You have %d isolated pawn(s) - consider strengthening your pawn structure", isolated))
		for _, pawnSq := range isolatedSquares {
			pawnFile := int(pawnSq.File())
			for _, move := range legal {
				if board.Piece(move.S1()).Type() == chess.Pawn {
					continue
				}
				if abs(int(move.S2().File())-pawnFile) <= 1 {
					moves = append(moves, rules.EncodeSAN(pos, move))
				}
			}
		}
	}
	if doubled > 0 {
		ideas = append(ideas, fmt.Sprintf("You have %d doubled pawn(s) - watch for weaknesses", doubled))
	}

	outpostIdeas, outpostMoves := knightOutposts(pos, legal)
	ideas = append(ideas, outpostIdeas...)
	moves = append(moves, outpostMoves...)

	return ideas, moves
}

func pawnStructure(board *chess.Board, us chess.Color) (isolated, doubled int, isolatedSquares []chess.Square) {
	pawnsByFile := [8][]chess.Square{}
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece.Type() == chess.Pawn && piece.Color() == us {
			pawnsByFile[int(sq.File())] = append(pawnsByFile[int(sq.File())], sq)
		}
	}

	for file := 0; file < 8; file++ {
		pawns := pawnsByFile[file]
		if len(pawns) == 0 {
			continue
		}
		hasNeighbor := false
		if file > 0 && len(pawnsByFile[file-1]) > 0 {
			hasNeighbor = true
		}
		if file < 7 && len(pawnsByFile[file+1]) > 0 {
			hasNeighbor = true
		}
		if !hasNeighbor {
			isolated += len(pawns)
			isolatedSquares = append(isolatedSquares, pawns...)
		}
		if len(pawns) > 1 {
			doubled += len(pawns) - 1
		}
	}
	return isolated, doubled, isolatedSquares
}

// knightOutposts looks for pawn-defendable squares in the opponent's half
// reachable by a knight.
func knightOutposts(pos *chess.Position, legal []*chess.Move) (ideas, moves []string) {
	board := pos.Board()
	us := pos.Turn()

	minRank, maxRank := 3, 5
	pawnBehind := -1
	if us == chess.Black {
		minRank, maxRank = 2, 4
		pawnBehind = 1
	}

	for sq := chess.A1; sq <= chess.H8; sq++ {
		rank := int(sq.Rank())
		if rank < minRank || rank > maxRank {
			continue
		}
		file := int(sq.File())

		protectable := false
		for _, adjFile := range [2]int{file - 1, file + 1} {
			pawnSq, ok := rules.SquareAt(adjFile, rank+pawnBehind)
			if !ok {
				continue
			}
			pawn := board.Piece(pawnSq)
			if pawn.Type() == chess.Pawn && pawn.Color() == us {
				protectable = true
				break
			}
		}
		if !protectable {
			continue
		}
		occupant := board.Piece(sq)
		if occupant != chess.NoPiece && occupant.Color() == us {
			continue
		}

		for _, move := range legal {
			if move.S2() == sq && board.Piece(move.S1()).Type() == chess.Knight {
				ideas = append(ideas, fmt.Sprintf("Knight outpost opportunity on %s", sq.String()))
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}
	return ideas, moves
}

func endgameAdvice(pos *chess.Position) (ideas, moves []string) {
	board := pos.Board()
	us := pos.Turn()
	legal := pos.ValidMoves()

	ideas = append(ideas, "Activate your king in the endgame")

	kingSq := rules.KingSquare(board, us)
	if kingSq != chess.NoSquare {
		current := centerDistance(kingSq)
		for _, move := range legal {
			if move.S1() == kingSq && centerDistance(move.S2()) < current {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece.Type() != chess.Pawn || piece.Color() != us {
			continue
		}
		if !isPassedPawn(board, sq, us) {
			continue
		}
		ideas = append(ideas, fmt.Sprintf("Passed pawn on %s - advance it with support", sq.String()))

		pawnFile := int(sq.File())
		pawnRank := int(sq.Rank())
		for _, move := range legal {
			if move.S1() == sq {
				moves = append(moves, rules.EncodeSAN(pos, move))
				continue
			}
			toFile := int(move.S2().File())
			toRank := int(move.S2().Rank())
			behind := (us == chess.White && toRank < pawnRank) || (us == chess.Black && toRank > pawnRank)
			if abs(toFile-pawnFile) <= 1 && behind {
				moves = append(moves, rules.EncodeSAN(pos, move))
			}
		}
	}

	return ideas, moves
}

// centerDistance is twice the Manhattan distance to the board center, kept
// integral.
func centerDistance(sq chess.Square) int {
	return abs(2*int(sq.File())-7) + abs(2*int(sq.Rank())-7)
}

func isPassedPawn(board *chess.Board, sq chess.Square, us chess.Color) bool {
	file := int(sq.File())
	rank := int(sq.Rank())
	advance := 1
	if us == chess.Black {
		advance = -1
	}

	for r := rank + advance; r >= 0 && r <= 7; r += advance {
		for _, f := range [3]int{file - 1, file, file + 1} {
			blockSq, ok := rules.SquareAt(f, r)
			if !ok {
				continue
			}
			piece := board.Piece(blockSq)
			if piece.Type() == chess.Pawn && piece.Color() != us {
				return false
			}
		}
	}
	return true
}
