// Package engine implements the one-ply heuristic opponent.
package engine

import (
	"math"
	"math/rand/v2"
	"time"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/rules"
)

const (
	jitterRange      = 0.1
	captureWeight    = 10
	promotionBonus   = 80
	rankCentrality   = 0.2
	fileCentrality   = 0.05
	selfCheckPenalty = 50
)

var pieceValues = map[board.Kind]float64{
	board.King:   0,
	board.Queen:  9,
	board.Rook:   5,
	board.Bishop: 3,
	board.Knight: 3,
	board.Pawn:   1,
}

// PieceValue returns the material value used for capture scoring
func PieceValue(k board.Kind) float64 {
	return pieceValues[k]
}

// SearchResult is the move picked by SelectMove and its score
type SearchResult struct {
	Move  rules.PlacedMove
	Score float64
}

// Engine scores candidate moves. An Engine is not safe for concurrent use;
// each queue worker owns one.
type Engine struct {
	rng *rand.Rand
}

// New creates an engine. A zero seed draws one from the clock.
func New(seed uint64) *Engine {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Engine{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Evaluate returns the deterministic part of a move's score: capture,
// promotion, centrality and the self-check penalty
func Evaluate(b *board.Board, m rules.PlacedMove) float64 {
	var s float64

	if m.Kind == rules.MoveCapture {
		if t, ok := b.PieceAt(m.To); ok {
			s += PieceValue(t.Kind) * captureWeight
		}
	}
	if rules.IsPromotion(m.Piece, m.To) {
		s += promotionBonus
	}
	s += (3.5-math.Abs(float64(m.To.Row)-3.5))*rankCentrality +
		(3.5-math.Abs(float64(m.To.Col)-3.5))*fileCentrality

	// Legal moves never leave the mover in check; kept as a second guard
	next := rules.ApplyMove(b, m.From, m.To)
	if rules.InCheck(&next, m.Piece.Color) {
		s -= selfCheckPenalty
	}
	return s
}

// Score adds the random tie-break jitter to Evaluate
func (e *Engine) Score(b *board.Board, m rules.PlacedMove) float64 {
	return e.rng.Float64()*jitterRange + Evaluate(b, m)
}

// SelectMove picks the highest scoring legal move for color. ok is false
// when color has no legal move.
func (e *Engine) SelectMove(b *board.Board, color core.Color) (SearchResult, bool) {
	var (
		best  SearchResult
		found bool
	)
	for _, m := range rules.AllLegalMoves(b, color) {
		s := e.Score(b, m)
		if !found || s > best.Score {
			best = SearchResult{Move: m, Score: s}
			found = true
		}
	}
	return best, found
}
