package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/adapters"
	"github.com/vasanthsarathy/process-mate/internal/domain/game"
	"github.com/vasanthsarathy/process-mate/internal/errors"
)

const gamesCollection = "games"

// GameRepository stores uploaded games in mongo when an adapter is wired,
// and falls back to an in-process map otherwise.
type GameRepository struct {
	log   *zap.SugaredLogger
	mongo *adapters.AdapterMongo

	mu    sync.RWMutex
	games map[string]game.Game
}

func NewGameRepository(mongoAdapter *adapters.AdapterMongo, log *zap.SugaredLogger) *GameRepository {
	return &GameRepository{
		log:   log,
		mongo: mongoAdapter,
		games: make(map[string]game.Game),
	}
}

func (r *GameRepository) collection() *mongo.Collection {
	if r.mongo == nil || r.mongo.Database == nil {
		return nil
	}
	return r.mongo.Database.Collection(gamesCollection)
}

func (r *GameRepository) Save(ctx context.Context, g game.Game) error {
	if coll := r.collection(); coll != nil {
		if _, err := coll.InsertOne(ctx, g); err != nil {
			return fmt.Errorf("mongo insert game: %w", err)
		}
		return nil
	}
	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id string) (game.Game, error) {
	if coll := r.collection(); coll != nil {
		var g game.Game
		err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
		if err == mongo.ErrNoDocuments {
			return game.Game{}, errors.ErrGameNotFound
		}
		if err != nil {
			return game.Game{}, fmt.Errorf("mongo find game: %w", err)
		}
		return g, nil
	}
	r.mu.RLock()
	g, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return game.Game{}, errors.ErrGameNotFound
	}
	return g, nil
}

// ParseGame splits a PGN text into per-ply move records with the position
// reached after each half-move.
func ParseGame(pgn string) (game.Game, error) {
	pgnOpt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errors.ErrBadPGN, err)
	}
	parsed := chess.NewGame(pgnOpt)

	headers := make(map[string]string)
	for _, pair := range parsed.TagPairs() {
		headers[pair.Key] = pair.Value
	}

	positions := parsed.Positions()
	moves := parsed.Moves()
	if len(positions) != len(moves)+1 {
		return game.Game{}, fmt.Errorf("%w: inconsistent move list", errors.ErrBadPGN)
	}

	records := make([]game.MoveRecord, 0, len(moves))
	sanNotation := chess.AlgebraicNotation{}
	uciNotation := chess.UCINotation{}
	for i, move := range moves {
		records = append(records, game.MoveRecord{
			Ply: i + 1,
			SAN: sanNotation.Encode(positions[i], move),
			UCI: uciNotation.Encode(positions[i], move),
			FEN: positions[i+1].String(),
		})
	}

	return game.Game{
		ID:        uuid.New().String(),
		Headers:   headers,
		StartFEN:  positions[0].String(),
		Moves:     records,
		PGN:       pgn,
		CreatedAt: time.Now().UTC(),
	}, nil
}
