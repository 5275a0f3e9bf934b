package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/notnil/chess"

	"github.com/vasanthsarathy/process-mate/internal/analysis"
	domain "github.com/vasanthsarathy/process-mate/internal/domain/analysis"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	"github.com/vasanthsarathy/process-mate/internal/rules"
)

// eliminationMargin is the centipawn gap below the best candidate at which a
// candidate stops being worth calculating.
const eliminationMargin = 200

const verificationTimeout = 5 * time.Minute

// runVerification executes one engine verification task. Verifications are
// serialized so no two address the engine process concurrently, and a result
// whose token went stale while it was computing is discarded.
func (s *Service) runVerification(token string, pos *chess.Position, candidates []domain.CandidateMove, played string, opts domain.Options) {
	s.verifyMu.Lock()
	defer s.verifyMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), verificationTimeout)
	defer cancel()

	v := s.verify(ctx, pos, candidates, played, opts)
	v.Token = token

	if s.CurrentToken() != token {
		s.log.Infow("discarding stale verification", "token", token)
		return
	}
	s.publish(v)
}

func (s *Service) verify(ctx context.Context, pos *chess.Position, candidates []domain.CandidateMove, played string, opts domain.Options) domain.Verification {
	var v domain.Verification

	root, err := s.evaluate(ctx, pos.String(), s.cfg.EngineDepthRoot)
	if err != nil {
		s.log.Errorw("root evaluation failed", "error", err)
		v.Status = append(v.Status, "engine verification unavailable: "+err.Error())
		return v
	}
	v.RootScore = root.Score
	v.Verdict = domain.PositionVerdict(root.Score)
	if line := s.buildLine(pos, nil, root.PV, opts.PVPlyCap); line != nil {
		v.BestLine = line
	}

	evaluated := s.evaluateCandidates(ctx, pos, candidates, opts, &v)

	if len(evaluated) > 0 {
		sort.SliceStable(evaluated, func(i, j int) bool {
			return evaluated[i].Score.Centipawns > evaluated[j].Score.Centipawns
		})
		threshold := evaluated[0].Score.Centipawns - eliminationMargin
		for _, cand := range evaluated {
			if cand.Score.Centipawns >= threshold {
				v.Promising = append(v.Promising, cand)
			} else {
				cand.Line = nil
				v.Eliminated = append(v.Eliminated, cand)
			}
		}
	}

	if played != "" {
		verdict := s.checkPlayedMove(ctx, pos, played, root)
		if verdict != nil {
			v.Played = verdict
		}
	}

	return v
}

func (s *Service) evaluateCandidates(ctx context.Context, pos *chess.Position, candidates []domain.CandidateMove, opts domain.Options, v *domain.Verification) []domain.EvaluatedCandidate {
	var evaluated []domain.EvaluatedCandidate
	for _, cand := range candidates {
		move, err := rules.DecodeSAN(pos, cand.SAN)
		if err != nil {
			s.log.Warnw("skipping unparsable candidate", "san", cand.SAN, "error", err)
			v.Status = append(v.Status, "skipped candidate "+cand.SAN+": not legal here")
			continue
		}
		child := pos.Update(move)

		childEval, err := s.evaluate(ctx, child.String(), s.cfg.EngineDepthShallow)
		if err != nil {
			s.log.Warnw("candidate evaluation failed", "san", cand.SAN, "error", err)
			v.Status = append(v.Status, "candidate "+cand.SAN+" unevaluated: engine call failed")
			continue
		}

		evaluated = append(evaluated, domain.EvaluatedCandidate{
			SAN:   cand.SAN,
			Score: childEval.Score.Flip(),
			Line:  s.buildLine(child, &domain.LinePly{SAN: cand.SAN, Tag: analysis.ClassifyPly(child)}, childEval.PV, opts.LinePlyCap),
		})
	}
	return evaluated
}

// buildLine follows a principal variation from pos, tagging each reached
// position, and stops at the ply cap or after two consecutive quiet plies.
// An optional head ply (the owning candidate move) is prepended.
func (s *Service) buildLine(pos *chess.Position, head *domain.LinePly, pv []string, plyCap int) *domain.CalculationLine {
	line := &domain.CalculationLine{}
	if head != nil {
		line.Plies = append(line.Plies, *head)
	}

	current := pos
	quietRun := 0
	for i, uci := range pv {
		if i >= plyCap {
			break
		}
		move, err := rules.DecodeUCI(current, uci)
		if err != nil {
			s.log.Warnw("stopping line at unplayable pv move", "uci", uci, "error", err)
			break
		}
		san := rules.EncodeSAN(current, move)
		current = current.Update(move)

		tag := analysis.ClassifyPly(current)
		if tag == domain.TagQuiet {
			quietRun++
		} else {
			quietRun = 0
		}
		line.Plies = append(line.Plies, domain.LinePly{SAN: san, Tag: tag})

		if quietRun >= 2 {
			line.Quiet = true
			break
		}
	}

	if len(line.Plies) == 0 {
		return nil
	}
	return line
}

// checkPlayedMove compares the actually-played move against the engine's
// choice and flags immediate tactical refutations.
func (s *Service) checkPlayedMove(ctx context.Context, pos *chess.Position, played string, root repository.EngineAnalysis) *domain.PlayedVerdict {
	move, err := rules.DecodeSAN(pos, played)
	if err != nil {
		s.log.Warnw("played move no longer decodable", "san", played, "error", err)
		return nil
	}
	child := pos.Update(move)

	eval, err := s.evaluate(ctx, child.String(), s.cfg.EngineDepthPlayed)
	if err != nil {
		s.log.Warnw("played move evaluation failed", "san", played, "error", err)
		return nil
	}
	score := eval.Score.Flip()

	verdict := &domain.PlayedVerdict{
		SAN:         played,
		Score:       score,
		GapCP:       root.Score.Centipawns - score.Centipawns,
		Refutations: refutations(child),
	}
	switch {
	case verdict.GapCP > 300:
		verdict.Verdict = "blunder"
	case verdict.GapCP > 200:
		verdict.Verdict = "mistake"
	case verdict.GapCP > 100:
		verdict.Verdict = "inaccuracy"
	default:
		verdict.Verdict = "none"
	}

	if root.BestMove != "" {
		if best, err := rules.DecodeUCI(pos, root.BestMove); err == nil {
			verdict.BestMove = rules.EncodeSAN(pos, best)
		}
	}
	return verdict
}

// refutations inspects the position after the played move for the two
// immediate tactical motifs the blunder check cares about: a non-pawn
// capture and an available knight fork.
func refutations(pos *chess.Position) []string {
	var found []string
	board := pos.Board()
	us := pos.Turn()

	for _, move := range pos.ValidMoves() {
		if !rules.IsCapture(move) {
			continue
		}
		victim := board.Piece(move.S2())
		if victim != chess.NoPiece && victim.Type() != chess.Pawn {
			found = append(found, "Immediate capture: "+rules.EncodeSAN(pos, move))
			break
		}
	}

	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Color() != us || piece.Type() != chess.Knight {
			continue
		}
		targets := 0
		for _, attackSq := range rules.AttackSquares(board, sq) {
			victim := board.Piece(attackSq)
			if victim == chess.NoPiece || victim.Color() == us {
				continue
			}
			switch victim.Type() {
			case chess.King, chess.Queen, chess.Rook:
				targets++
			}
		}
		if targets >= 2 {
			found = append(found, fmt.Sprintf("Knight fork available with knight on %s", sq.String()))
			break
		}
	}

	return found
}

// evaluate consults the redis memo before asking the engine, so repeated
// navigation over the same positions does not re-run searches.
func (s *Service) evaluate(ctx context.Context, fen string, depth int) (repository.EngineAnalysis, error) {
	if cached, ok := s.cache.Get(ctx, fen, depth); ok {
		return cached, nil
	}
	result, err := s.engine.Evaluate(ctx, fen, depth)
	if err != nil {
		return repository.EngineAnalysis{}, err
	}
	s.cache.Put(ctx, fen, depth, result)
	return result, nil
}
