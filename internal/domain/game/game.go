package game

import "time"

// MoveRecord is one half-move of a stored game, with the position reached
// after playing it.
type MoveRecord struct {
	Ply int    `json:"ply" bson:"ply"`
	SAN string `json:"san" bson:"san"`
	UCI string `json:"uci" bson:"uci"`
	FEN string `json:"fen" bson:"fen"`
}

// Game is an uploaded PGN game, split into navigable per-ply records.
type Game struct {
	ID        string            `json:"id" bson:"_id"`
	Headers   map[string]string `json:"headers" bson:"headers"`
	StartFEN  string            `json:"startFen" bson:"start_fen"`
	Moves     []MoveRecord      `json:"moves" bson:"moves"`
	PGN       string            `json:"pgn" bson:"pgn"`
	CreatedAt time.Time         `json:"createdAt" bson:"created_at"`
}

type UploadResponse struct {
	ID      string            `json:"id"`
	Headers map[string]string `json:"headers"`
	Plies   int               `json:"plies"`
}
