package analyzer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/analysis"
	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	gamedomain "github.com/vasanthsarathy/process-mate/internal/domain/game"
	"github.com/vasanthsarathy/process-mate/internal/errors"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

// Evaluator is the engine surface the verifier needs. Satisfied by
// repository.EngineClient; tests substitute a scripted fake.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (repository.EngineAnalysis, error)
	Running() bool
}

// Service runs the synchronous thought-process pipeline and dispatches the
// asynchronous engine verification behind it. Every analysis gets a fresh
// generation token; a verification whose token no longer matches the current
// one is dropped instead of delivered.
type Service struct {
	cfg    *bootstrap.Config
	log    *zap.SugaredLogger
	engine Evaluator
	cache  *repository.EvalCache

	verifyMu sync.Mutex

	tokenMu      sync.Mutex
	currentToken string

	subMu sync.Mutex
	subs  map[chan domain.Verification]struct{}
}

func NewService(cfg *bootstrap.Config, log *zap.SugaredLogger, engine Evaluator, cache *repository.EvalCache) *Service {
	return &Service{
		cfg:    cfg,
		log:    log,
		engine: engine,
		cache:  cache,
		subs:   make(map[chan domain.Verification]struct{}),
	}
}

func (s *Service) options(simplify *bool) domain.Options {
	opts := domain.Options{
		SimplifyOnThreats: s.cfg.SimplifyOnThreats,
		LinePlyCap:        s.cfg.LinePlyCap,
		PVPlyCap:          s.cfg.PVPlyCap,
	}
	if opts.LinePlyCap <= 0 {
		opts.LinePlyCap = domain.DefaultOptions().LinePlyCap
	}
	if opts.PVPlyCap <= 0 {
		opts.PVPlyCap = domain.DefaultOptions().PVPlyCap
	}
	if simplify != nil {
		opts.SimplifyOnThreats = *simplify
	}
	return opts
}

// Analyze runs the full pipeline for one FEN. The played move, when given,
// is validated here and handed to the verifier for the blunder check.
func (s *Service) Analyze(ctx context.Context, fen, played string, simplify *bool) (domain.Report, error) {
	pos, err := rules.PositionFromFEN(fen)
	if err == errors.ErrPositionMissing {
		return analysis.Analyze(nil, domain.Options{}), nil
	}
	if err != nil {
		return domain.Report{}, err
	}

	opts := s.options(simplify)
	report := analysis.Analyze(pos, opts)

	playedSAN := ""
	if played != "" {
		move, err := rules.DecodeSAN(pos, played)
		if err != nil {
			s.log.Warnw("ignoring illegal played move", "move", played, "fen", fen)
			report.Status = append(report.Status, "played move "+played+" is not legal here; ignored")
		} else {
			playedSAN = rules.EncodeSAN(pos, move)
			report.Played = playedSAN
		}
	}

	token := uuid.New().String()
	report.Token = token
	s.setCurrentToken(token)

	if s.engine != nil && s.engine.Running() {
		go s.runVerification(token, pos, report.Candidates, playedSAN, opts)
	} else {
		report.Status = append(report.Status, "engine not running; verification skipped")
	}

	return report, nil
}

// AnalyzeGamePly analyzes the position a stored game had before the given
// half-move, with that half-move as the played move.
func (s *Service) AnalyzeGamePly(ctx context.Context, g gamedomain.Game, ply int, simplify *bool) (domain.Report, error) {
	if ply < 1 || ply > len(g.Moves) {
		return domain.Report{}, errors.ErrIllegalMove
	}
	fen := g.StartFEN
	if ply > 1 {
		fen = g.Moves[ply-2].FEN
	}
	return s.Analyze(ctx, fen, g.Moves[ply-1].SAN, simplify)
}

func (s *Service) setCurrentToken(token string) {
	s.tokenMu.Lock()
	s.currentToken = token
	s.tokenMu.Unlock()
}

// CurrentToken is the generation token of the most recent analysis.
func (s *Service) CurrentToken() string {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.currentToken
}

// Subscribe registers for verification updates. The caller must invoke the
// returned cancel function when done; updates to a slow subscriber are
// dropped rather than blocking the verifier.
func (s *Service) Subscribe() (<-chan domain.Verification, func()) {
	ch := make(chan domain.Verification, 4)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Service) publish(v domain.Verification) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- v:
		default:
			s.log.Warnw("dropping verification update for slow subscriber", "token", v.Token)
		}
	}
}
