// Package engine implements static evaluation and the negascout search.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Piece values. The king value only serves as a weight; kings are never
// counted in material totals.
const (
	PawnValue   = 92
	KnightValue = 385
	BishopValue = 385
	RookValue   = 593
	QueenValue  = 1244
	KingValue   = 9900
)

// PieceValue returns the material value of a piece kind.
func PieceValue(pt board.PieceType) int {
	switch pt {
	case board.Pawn:
		return PawnValue
	case board.Knight:
		return KnightValue
	case board.Bishop:
		return BishopValue
	case board.Rook:
		return RookValue
	case board.Queen:
		return QueenValue
	case board.King:
		return KingValue
	default:
		return 0
	}
}

// startMaterial is one side's non-king material in the initial position.
const startMaterial = 8*PawnValue + 2*KnightValue + 2*BishopValue + 2*RookValue + QueenValue

// Material thresholds for the midgame/endgame blend of each piece kind. At
// or below eg the endgame table applies, at or above mg the midgame table.
type phaseRamp struct {
	eg, mg int
	// pawnless measures the opponent's material without pawns.
	pawnless bool
}

var phaseRamps = [6]phaseRamp{
	board.Pawn:   {eg: RookValue, mg: QueenValue + 2*RookValue + 2*BishopValue, pawnless: true},
	board.Knight: {eg: KnightValue + 8*PawnValue, mg: QueenValue + 2*RookValue + BishopValue + KnightValue + 6*PawnValue},
	board.Bishop: {eg: KnightValue + 8*PawnValue, mg: QueenValue + 2*RookValue + BishopValue + KnightValue + 6*PawnValue},
	board.Rook:   {eg: RookValue, mg: QueenValue + RookValue + 4*PawnValue},
	board.Queen:  {eg: RookValue, mg: QueenValue + 2*RookValue + 2*BishopValue, pawnless: true},
	board.King:   {eg: RookValue, mg: QueenValue + 2*RookValue + 2*BishopValue, pawnless: true},
}

// Bishop heuristics
const (
	bishopPairBase     = 28
	bishopPairPerPawn  = 3
	trappedBishopValue = PawnValue * 3 / 2
)

// interpolate maps x linearly from [x1, x2] onto [y1, y2], clamping outside.
func interpolate(x, x1, y1, x2, y2 int) int {
	switch {
	case x > x2:
		return y2
	case x < x1:
		return y1
	default:
		return (x-x1)*(y2-y1)/(x2-x1) + y1
	}
}

// material is a per-side material census taken once per evaluation.
type material struct {
	total  [2]int // non-king material
	pawns  [2]int
	counts [2][6]int
}

func (m *material) pawnless(c board.Color) int {
	return m.total[c] - m.pawns[c]
}

func takeCensus(pos *board.Position) material {
	var m material
	for c := board.White; c <= board.Black; c++ {
		for _, id := range pos.LivingPieces(c) {
			pc := pos.Piece(id)
			m.counts[c][pc.Kind]++
			if pc.Kind == board.King {
				continue
			}
			m.total[c] += PieceValue(pc.Kind)
			if pc.Kind == board.Pawn {
				m.pawns[c] += PawnValue
			}
		}
	}
	return m
}

// Evaluator computes static scores. It holds no state between calls.
type Evaluator struct{}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

var defaultEvaluator = NewEvaluator()

// Evaluate returns the static score of pos, positive when White is better.
func Evaluate(pos *board.Position) int {
	return defaultEvaluator.Score(pos)
}

// Score returns the static score of pos from White's point of view.
// Checkmate scores ±MateScore and stalemate 0. The material totals are
// written back to pos for display.
func (e *Evaluator) Score(pos *board.Position) int {
	m := takeCensus(pos)
	pos.SetMaterialTotals(m.total[board.White], m.total[board.Black])

	switch pos.Status() {
	case board.Checkmate:
		if pos.SideToMove() == board.White {
			return -MateScore
		}
		return MateScore
	case board.Stalemate:
		return 0
	}

	score := m.total[board.White] - m.total[board.Black]
	score += e.pieceSquare(pos, &m)
	score += e.tradeBonus(&m)
	score += e.castleBonus(pos)
	score += e.pawnStructure(pos)
	score += e.kingSafety(pos)
	score += e.threatBonus(pos, &m)
	score += e.bishops(pos, &m, score)
	score += e.endgame(pos, &m)
	return score
}

// pieceSquare sums the blended piece-square values of every living piece.
func (e *Evaluator) pieceSquare(pos *board.Position, m *material) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		them := c.Other()
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for _, id := range pos.LivingPieces(c) {
			pc := pos.Piece(id)
			ramp := phaseRamps[pc.Kind]
			x := m.total[them]
			if ramp.pawnless {
				x = m.pawnless(them)
			}
			t := &pieceTables[pc.Kind]
			score += sign * interpolate(x, ramp.eg, t.eg[c][pc.Square], ramp.mg, t.mg[c][pc.Square])
		}
	}
	return score
}

// tradeBonus rewards the side behind for trading pawns and the side ahead
// for trading pieces.
func (e *Evaluator) tradeBonus(m *material) int {
	wM, bM := m.total[board.White], m.total[board.Black]
	wPawn, bPawn := m.pawns[board.White], m.pawns[board.Black]
	delta := wM - bM

	pawns, pieces := bPawn, wM
	if delta > 0 {
		pawns, pieces = wPawn, bM
	}

	bonus := interpolate(pawns, 0, -30*delta/100, 6*PawnValue, 0)
	bonus += interpolate(pieces, 0, 30*delta/100, QueenValue+2*RookValue+2*BishopValue+2*KnightValue, 0)
	return bonus
}

// threatBonus credits each side with the value of enemy pieces it attacks,
// damped as material comes off the board.
func (e *Evaluator) threatBonus(pos *board.Position, m *material) int {
	totalMaterial := m.total[board.White] + m.total[board.Black]
	threat := func(c board.Color) int {
		attacked := pos.AttackMap(c)
		t := 0
		for _, id := range pos.LivingPieces(c.Other()) {
			pc := pos.Piece(id)
			if pc.Kind != board.King && attacked.IsSet(pc.Square) {
				t += PieceValue(pc.Kind)
			}
		}
		return t/4 - t*totalMaterial/(16*2*startMaterial)
	}
	return threat(board.White) - threat(board.Black)
}

// bishops scores the bishop pair, drawish opposite-coloured bishop endings
// and bishops trapped behind enemy pawns. current is the score so far.
func (e *Evaluator) bishops(pos *board.Position, m *material, current int) int {
	var light, dark [2]bool
	for c := board.White; c <= board.Black; c++ {
		for _, id := range pos.LivingPieces(c) {
			pc := pos.Piece(id)
			if pc.Kind != board.Bishop {
				continue
			}
			if pc.Square.IsLight() {
				light[c] = true
			} else {
				dark[c] = true
			}
		}
	}
	if !light[board.White] && !dark[board.White] && !light[board.Black] && !dark[board.Black] {
		return 0
	}

	score := 0
	if light[board.White] && dark[board.White] {
		score += bishopPairBase + (8-m.counts[board.Black][board.Pawn])*bishopPairPerPawn
	}
	if light[board.Black] && dark[board.Black] {
		score -= bishopPairBase + (8-m.counts[board.White][board.Pawn])*bishopPairPerPawn
	}
	score -= trappedBishops(pos)

	// Opposite-coloured bishops pull the whole balance toward a draw.
	if m.counts[board.White][board.Bishop] == 1 && m.counts[board.Black][board.Bishop] == 1 &&
		light[board.White] != light[board.Black] && m.pawnless(board.White) == m.pawnless(board.Black) {
		penalty := (current + score) / 2
		pieces := m.pawnless(board.White) + m.pawnless(board.Black)
		score -= interpolate(pieces, 2*BishopValue, penalty, 2*(QueenValue+RookValue+BishopValue), 0)
	}
	return score
}

// trappedBishop describes a bishop shut in on the enemy side by two pawns.
type trappedBishop struct {
	color  board.Color
	bishop board.Square
	pawns  [2]board.Square
}

var trappedBishopPatterns = [4]trappedBishop{
	{board.White, board.A7, [2]board.Square{board.B6, board.C7}},
	{board.White, board.H7, [2]board.Square{board.G6, board.F7}},
	{board.Black, board.A2, [2]board.Square{board.B3, board.C2}},
	{board.Black, board.H2, [2]board.Square{board.G3, board.F2}},
}

// trappedBishops returns the penalty balance, positive when White's
// bishops are the trapped ones.
func trappedBishops(pos *board.Position) int {
	penalty := 0
	for _, p := range trappedBishopPatterns {
		if !isPiece(pos, p.bishop, board.Bishop, p.color) {
			continue
		}
		enemy := p.color.Other()
		if !isPiece(pos, p.pawns[0], board.Pawn, enemy) || !isPiece(pos, p.pawns[1], board.Pawn, enemy) {
			continue
		}
		if p.color == board.White {
			penalty += trappedBishopValue
		} else {
			penalty -= trappedBishopValue
		}
	}
	return penalty
}

func isPiece(pos *board.Position, sq board.Square, pt board.PieceType, c board.Color) bool {
	pc, ok := pos.PieceAt(sq)
	return ok && pc.Kind == pt && pc.Color == c
}

// Extension points. These terms currently contribute nothing.

func (e *Evaluator) castleBonus(pos *board.Position) int { return 0 }

func (e *Evaluator) pawnStructure(pos *board.Position) int { return 0 }

func (e *Evaluator) kingSafety(pos *board.Position) int { return 0 }

func (e *Evaluator) endgame(pos *board.Position, m *material) int { return 0 }

// EvaluateMaterial returns the material balance, positive when White is ahead.
func EvaluateMaterial(pos *board.Position) int {
	m := takeCensus(pos)
	return m.total[board.White] - m.total[board.Black]
}
