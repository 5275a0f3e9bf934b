// Package rules layers the attack and geometry queries the analysis pipeline
// needs on top of the notnil/chess move generator. Everything here is a pure
// function of a Board or Position; nothing mutates shared state.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	pkgerrors "github.com/vasanthsarathy/process-mate/internal/errors"
)

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   100,
}

// PieceValue returns the fixed relative value of a piece type.
func PieceValue(t chess.PieceType) int {
	return pieceValues[t]
}

// PieceName returns the capitalized English name of a piece type, as used in
// threat explanations.
func PieceName(t chess.PieceType) string {
	switch t {
	case chess.Pawn:
		return "Pawn"
	case chess.Knight:
		return "Knight"
	case chess.Bishop:
		return "Bishop"
	case chess.Rook:
		return "Rook"
	case chess.Queen:
		return "Queen"
	case chess.King:
		return "King"
	}
	return "Piece"
}

// Direction is a (file, rank) step of a sliding ray.
type Direction struct {
	DF int
	DR int
}

var (
	orthogonal = []Direction{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	diagonal   = []Direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightOffsets = []Direction{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	kingOffsets = append(append([]Direction{}, orthogonal...), diagonal...)
)

// SlidingDirections returns the movement rays of a sliding piece type, or nil
// for non-sliders.
func SlidingDirections(t chess.PieceType) []Direction {
	switch t {
	case chess.Rook:
		return orthogonal
	case chess.Bishop:
		return diagonal
	case chess.Queen:
		return append(append([]Direction{}, orthogonal...), diagonal...)
	}
	return nil
}

// SquareAt builds a square from file and rank indices; ok is false when the
// coordinates fall off the board.
func SquareAt(file, rank int) (chess.Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return chess.NoSquare, false
	}
	return chess.Square(rank*8 + file), true
}

// Step moves one square along dir from sq.
func Step(sq chess.Square, dir Direction) (chess.Square, bool) {
	return SquareAt(int(sq.File())+dir.DF, int(sq.Rank())+dir.DR)
}

// KingSquare finds the king of the given color.
func KingSquare(board *chess.Board, color chess.Color) chess.Square {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := board.Piece(sq)
		if p != chess.NoPiece && p.Type() == chess.King && p.Color() == color {
			return sq
		}
	}
	return chess.NoSquare
}

// Attackers returns the squares of all pieces of color by that attack sq,
// in square order.
func Attackers(board *chess.Board, sq chess.Square, by chess.Color) []chess.Square {
	var attackers []chess.Square

	// Pawns attack diagonally toward their direction of travel, so the
	// attacking pawn sits one rank behind sq relative to that direction.
	pawnRank := -1
	if by == chess.Black {
		pawnRank = 1
	}
	for _, df := range []int{-1, 1} {
		if from, ok := SquareAt(int(sq.File())+df, int(sq.Rank())+pawnRank); ok {
			p := board.Piece(from)
			if p != chess.NoPiece && p.Type() == chess.Pawn && p.Color() == by {
				attackers = append(attackers, from)
			}
		}
	}

	for _, off := range knightOffsets {
		if from, ok := Step(sq, off); ok {
			p := board.Piece(from)
			if p != chess.NoPiece && p.Type() == chess.Knight && p.Color() == by {
				attackers = append(attackers, from)
			}
		}
	}

	for _, off := range kingOffsets {
		if from, ok := Step(sq, off); ok {
			p := board.Piece(from)
			if p != chess.NoPiece && p.Type() == chess.King && p.Color() == by {
				attackers = append(attackers, from)
			}
		}
	}

	for _, dir := range orthogonal {
		if from, p, ok := firstPieceAlong(board, sq, dir); ok {
			if p.Color() == by && (p.Type() == chess.Rook || p.Type() == chess.Queen) {
				attackers = append(attackers, from)
			}
		}
	}
	for _, dir := range diagonal {
		if from, p, ok := firstPieceAlong(board, sq, dir); ok {
			if p.Color() == by && (p.Type() == chess.Bishop || p.Type() == chess.Queen) {
				attackers = append(attackers, from)
			}
		}
	}

	return attackers
}

// Defenders returns the squares of pieces of color of that defend sq.
func Defenders(board *chess.Board, sq chess.Square, of chess.Color) []chess.Square {
	return Attackers(board, sq, of)
}

// IsAttacked reports whether any piece of color by attacks sq.
func IsAttacked(board *chess.Board, sq chess.Square, by chess.Color) bool {
	return len(Attackers(board, sq, by)) > 0
}

// IsInCheck reports whether the side to move is in check.
func IsInCheck(pos *chess.Position) bool {
	ksq := KingSquare(pos.Board(), pos.Turn())
	if ksq == chess.NoSquare {
		return false
	}
	return IsAttacked(pos.Board(), ksq, pos.Turn().Other())
}

func firstPieceAlong(board *chess.Board, from chess.Square, dir Direction) (chess.Square, chess.Piece, bool) {
	sq := from
	for {
		next, ok := Step(sq, dir)
		if !ok {
			return chess.NoSquare, chess.NoPiece, false
		}
		if p := board.Piece(next); p != chess.NoPiece {
			return next, p, true
		}
		sq = next
	}
}

// AttackSquares returns every square the piece on from attacks, occupied or
// not. Sliders stop at the first occupied square but include it.
func AttackSquares(board *chess.Board, from chess.Square) []chess.Square {
	p := board.Piece(from)
	if p == chess.NoPiece {
		return nil
	}

	var attacks []chess.Square
	switch p.Type() {
	case chess.Pawn:
		fwd := 1
		if p.Color() == chess.Black {
			fwd = -1
		}
		for _, df := range []int{-1, 1} {
			if sq, ok := SquareAt(int(from.File())+df, int(from.Rank())+fwd); ok {
				attacks = append(attacks, sq)
			}
		}
	case chess.Knight:
		for _, off := range knightOffsets {
			if sq, ok := Step(from, off); ok {
				attacks = append(attacks, sq)
			}
		}
	case chess.King:
		for _, off := range kingOffsets {
			if sq, ok := Step(from, off); ok {
				attacks = append(attacks, sq)
			}
		}
	default:
		for _, dir := range SlidingDirections(p.Type()) {
			sq := from
			for {
				next, ok := Step(sq, dir)
				if !ok {
					break
				}
				attacks = append(attacks, next)
				if board.Piece(next) != chess.NoPiece {
					break
				}
				sq = next
			}
		}
	}
	return attacks
}

// RayOccupants walks from origin along dir and returns up to max occupied
// squares in order of distance.
func RayOccupants(board *chess.Board, origin chess.Square, dir Direction, max int) []chess.Square {
	var found []chess.Square
	sq := origin
	for len(found) < max {
		next, ok := Step(sq, dir)
		if !ok {
			break
		}
		if board.Piece(next) != chess.NoPiece {
			found = append(found, next)
		}
		sq = next
	}
	return found
}

// PieceCount counts all pieces on the board.
func PieceCount(board *chess.Board) int {
	n := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		if board.Piece(sq) != chess.NoPiece {
			n++
		}
	}
	return n
}

// PositionFromFEN parses a FEN string into a position.
func PositionFromFEN(fen string) (*chess.Position, error) {
	if strings.TrimSpace(fen) == "" {
		return nil, pkgerrors.ErrPositionMissing
	}
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return pos, nil
}

// MoveNumber extracts the fullmove counter from a position.
func MoveNumber(pos *chess.Position) int {
	fields := strings.Fields(pos.String())
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// EncodeSAN renders a move in standard algebraic notation for pos.
func EncodeSAN(pos *chess.Position, move *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(pos, move)
}

// DecodeSAN parses a SAN string and verifies the move is legal in pos.
func DecodeSAN(pos *chess.Position, san string) (*chess.Move, error) {
	move, err := chess.AlgebraicNotation{}.Decode(pos, san)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrIllegalMove, san)
	}
	for _, legal := range pos.ValidMoves() {
		if legal.S1() == move.S1() && legal.S2() == move.S2() && legal.Promo() == move.Promo() {
			return legal, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", pkgerrors.ErrIllegalMove, san)
}

// DecodeUCI parses a UCI move string ("e2e4", "e7e8q") against pos and
// returns the matching legal move.
func DecodeUCI(pos *chess.Position, uci string) (*chess.Move, error) {
	move, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrIllegalMove, uci)
	}
	for _, legal := range pos.ValidMoves() {
		if legal.S1() == move.S1() && legal.S2() == move.S2() && legal.Promo() == move.Promo() {
			return legal, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", pkgerrors.ErrIllegalMove, uci)
}

// IsCapture reports whether a move takes a piece, en passant included.
func IsCapture(move *chess.Move) bool {
	return move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant)
}

// GivesCheck reports whether a legal move checks the opponent.
func GivesCheck(move *chess.Move) bool {
	return move.HasTag(chess.Check)
}

// IsCastle reports whether a move castles.
func IsCastle(move *chess.Move) bool {
	return move.HasTag(chess.KingSideCastle) || move.HasTag(chess.QueenSideCastle)
}
