package analysis

import (
	"fmt"

	"github.com/notnil/chess"
)

// ThreatCategory says what kind of danger a ThreatRecord describes. Response
// generation dispatches on this value, never on the explanation text.
type ThreatCategory int

const (
	ThreatCheck ThreatCategory = iota
	ThreatHangingPiece
	ThreatUnderdefended
	ThreatLowValueAttacker
	ThreatKnightFork
	ThreatSkewer
	ThreatForcedMate
	ThreatForcedMaterialWin
)

func (c ThreatCategory) String() string {
	switch c {
	case ThreatCheck:
		return "check"
	case ThreatHangingPiece:
		return "hanging piece"
	case ThreatUnderdefended:
		return "underdefended piece"
	case ThreatLowValueAttacker:
		return "attacked by lower value piece"
	case ThreatKnightFork:
		return "knight fork"
	case ThreatSkewer:
		return "skewer"
	case ThreatForcedMate:
		return "forced mate"
	case ThreatForcedMaterialWin:
		return "winning tactic"
	}
	return "unknown"
}

// ThreatRecord is one detected threat against the side to move.
//
// Square carries the category's anchor: the threatened piece's square for the
// under-attack categories, the knight's square for a fork, the origin of the
// ray for a skewer, the checker's square for a check. Target is only set for
// skewers (the far, more valuable piece) and checks (the king).
type ThreatRecord struct {
	Category ThreatCategory `json:"category"`
	Square   chess.Square   `json:"square"`
	Target   chess.Square   `json:"target,omitempty"`
	MoveSAN  string         `json:"move,omitempty"`
	MayMate  bool           `json:"mayMate,omitempty"`
	Text     string         `json:"text"`
}

// ResponseSet holds the four threat-response buckets, each deduplicated
// and capped at five moves.
type ResponseSet struct {
	CaptureAttacker []string `json:"captureAttacker"`
	BlockThreat     []string `json:"blockThreat"`
	MoveAttacked    []string `json:"moveAttacked"`
	Counterattack   []string `json:"counterattack"`
}

func (r ResponseSet) Empty() bool {
	return len(r.CaptureAttacker) == 0 && len(r.BlockThreat) == 0 &&
		len(r.MoveAttacked) == 0 && len(r.Counterattack) == 0
}

// CandidateSource identifies which bucket contributed a candidate move.
// Order is the aggregation priority: an earlier source wins dedup.
type CandidateSource int

const (
	SourceThreatResponse CandidateSource = iota
	SourceCheck
	SourceCapture
	SourceThreat
	SourceTactical
	SourceStrategic
)

func (s CandidateSource) String() string {
	switch s {
	case SourceThreatResponse:
		return "threat response"
	case SourceCheck:
		return "check"
	case SourceCapture:
		return "capture"
	case SourceThreat:
		return "threat"
	case SourceTactical:
		return "tactical opportunity"
	case SourceStrategic:
		return "strategic improvement"
	}
	return "unknown"
}

type CandidateMove struct {
	SAN    string           `json:"san"`
	Source CandidateSource  `json:"source"`
	Score  *Score           `json:"score,omitempty"`
	Line   *CalculationLine `json:"line,omitempty"`
}

// LineTag classifies one ply of a calculation line.
type LineTag string

const (
	TagCheck   LineTag = "check"
	TagCapture LineTag = "capture"
	TagThreat  LineTag = "threat"
	TagQuiet   LineTag = "quiet"
)

type LinePly struct {
	SAN string  `json:"san"`
	Tag LineTag `json:"tag"`
}

// CalculationLine is an engine continuation. The first ply is always the
// owning candidate move; Quiet reports whether the line ended because two
// consecutive quiet plies were reached (as opposed to the ply cap).
type CalculationLine struct {
	Plies []LinePly `json:"plies"`
	Quiet bool      `json:"quiet"`
}

type TacticalReport struct {
	Checks      []string `json:"checks"`
	Captures    []string `json:"captures"`
	ThreatMoves []string `json:"threatMoves"`
	Signals     []string `json:"signals"`
	Ideas       []string `json:"ideas"`
	Moves       []string `json:"moves"`
}

type Phase string

const (
	PhaseOpening    Phase = "Opening"
	PhaseMiddlegame Phase = "Middlegame"
	PhaseEndgame    Phase = "Endgame"
)

type StrategicReport struct {
	Phase Phase    `json:"phase"`
	Ideas []string `json:"ideas"`
	Moves []string `json:"moves"`
}

// Options is the immutable per-invocation configuration of the pipeline.
type Options struct {
	SimplifyOnThreats bool
	LinePlyCap        int
	PVPlyCap          int
}

func DefaultOptions() Options {
	return Options{LinePlyCap: 5, PVPlyCap: 10}
}

// Report is the structured outcome of one analysis invocation. The heuristic
// fields are populated synchronously; Engine is attached later when
// verification for the same token completes.
type Report struct {
	Token       string           `json:"token"`
	FEN         string           `json:"fen"`
	Turn        string           `json:"turn"`
	Threats     []ThreatRecord   `json:"threats"`
	Responses   *ResponseSet     `json:"responses,omitempty"`
	PhaseHeader string           `json:"phaseHeader,omitempty"`
	Tactics     TacticalReport   `json:"tactics"`
	Strategy    *StrategicReport `json:"strategy,omitempty"`
	Candidates  []CandidateMove  `json:"candidates"`
	Played      string           `json:"played,omitempty"`
	Status      []string         `json:"status,omitempty"`
	Engine      *Verification    `json:"engine,omitempty"`
}

// Score is an evaluation in centipawns from the root mover's perspective.
// Mate scores use the n*10000 sentinel so they always dominate centipawn
// comparisons and render as "M<n>".
type Score struct {
	Centipawns int  `json:"centipawns"`
	Mate       bool `json:"mate,omitempty"`
}

const MateSentinel = 10000

func MateScore(movesToMate int) Score {
	return Score{Centipawns: movesToMate * MateSentinel, Mate: true}
}

func CentipawnScore(cp int) Score {
	return Score{Centipawns: cp}
}

// Flip converts a score to the opposite side's perspective.
func (s Score) Flip() Score {
	return Score{Centipawns: -s.Centipawns, Mate: s.Mate}
}

func (s Score) String() string {
	if s.Mate || s.Centipawns >= MateSentinel || s.Centipawns <= -MateSentinel {
		return fmt.Sprintf("M%d", s.Centipawns/MateSentinel)
	}
	if s.Centipawns > 0 {
		return fmt.Sprintf("+%.2f", float64(s.Centipawns)/100)
	}
	return fmt.Sprintf("%.2f", float64(s.Centipawns)/100)
}

type EvaluatedCandidate struct {
	SAN   string           `json:"san"`
	Score Score            `json:"score"`
	Line  *CalculationLine `json:"line,omitempty"`
}

// PlayedVerdict is the blunder check of the actually-played move.
type PlayedVerdict struct {
	SAN         string   `json:"san"`
	Score       Score    `json:"score"`
	BestMove    string   `json:"bestMove,omitempty"`
	GapCP       int      `json:"gapCentipawns"`
	Verdict     string   `json:"verdict"`
	Refutations []string `json:"refutations,omitempty"`
}

// Verification is the asynchronous engine stage of the report.
type Verification struct {
	Token      string               `json:"token"`
	RootScore  Score                `json:"rootScore"`
	BestLine   *CalculationLine     `json:"bestLine,omitempty"`
	Promising  []EvaluatedCandidate `json:"promising"`
	Eliminated []EvaluatedCandidate `json:"eliminated"`
	Played     *PlayedVerdict       `json:"played,omitempty"`
	Verdict    string               `json:"verdict"`
	Status     []string             `json:"status,omitempty"`
}

// PositionVerdict buckets a root score into favorable/equal/unfavorable.
func PositionVerdict(s Score) string {
	switch {
	case s.Centipawns > 100:
		return "favorable"
	case s.Centipawns < -100:
		return "unfavorable"
	default:
		return "equal"
	}
}
