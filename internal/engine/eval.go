// Package engine searches chess positions for the best move.
package engine

import (
	"fmt"
	"strings"

	"github.com/hailam/vatu/internal/board"
)

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

const (
	doubledPawnPenalty  = -15
	isolatedPawnPenalty = -20
	backwardPawnPenalty = -10
	bishopPairBonus     = 30
	mobilityWeight      = 3
	centerWeight        = 10
	tempoBonus          = 10
)

// Piece-square tables, written as the board is seen from White with the
// eighth rank on the first line. See pstIndex.
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [5]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST}

// pstIndex maps a square to its table index. The tables are written rank 8
// first, so White squares are flipped and Black squares used as they are.
func pstIndex(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq.Mirror()
	}
	return sq
}

// maxPhase is the phase of the starting material: minors 1, rooks 2, queens 4.
const maxPhase = 24

// Breakdown is the evaluation split into terms, each from White's point of
// view.
type Breakdown struct {
	Material      int
	Placement     int
	PawnStructure int
	Mobility      int
	BishopPair    int
	Center        int
	Phase         int
	Stats         [2]BoardStats
}

// Total sums the terms, still from White's point of view.
func (b Breakdown) Total() int {
	return b.Material + b.Placement + b.PawnStructure + b.Mobility + b.BishopPair + b.Center
}

func (b Breakdown) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "material %d placement %d pawns %d mobility %d bishops %d center %d phase %d/%d total %d",
		b.Material, b.Placement, b.PawnStructure, b.Mobility, b.BishopPair, b.Center, b.Phase, maxPhase, b.Total())
	fmt.Fprintf(&sb, "\nwhite %s\nblack %s", b.Stats[board.White], b.Stats[board.Black])
	return sb.String()
}

// Explain evaluates pos term by term.
func Explain(pos *board.Position) Breakdown {
	var b Breakdown
	var kingMg, kingEg int
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.Queen; pt++ {
			for bb := pos.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				b.Material += sign * pieceValues[pt]
				b.Placement += sign * psts[pt][pstIndex(sq, c)]
				switch pt {
				case board.Knight, board.Bishop:
					b.Phase++
				case board.Rook:
					b.Phase += 2
				case board.Queen:
					b.Phase += 4
				}
			}
		}
		ksq := pstIndex(pos.KingSquare[c], c)
		kingMg += sign * kingMidgamePST[ksq]
		kingEg += sign * kingEndgamePST[ksq]

		s := ComputeStats(pos, c)
		b.Stats[c] = s
		b.PawnStructure += sign * (s.DoubledPawns*doubledPawnPenalty +
			s.IsolatedPawns*isolatedPawnPenalty +
			s.BackwardPawns*backwardPawnPenalty)
		b.Mobility += sign * s.Mobility * mobilityWeight
		if s.Bishops >= 2 {
			b.BishopPair += sign * bishopPairBonus
		}
		b.Center += sign * centerControl(pos, c) * centerWeight
	}
	b.Phase = clamp(b.Phase, 0, maxPhase)
	b.Placement += (kingMg*b.Phase + kingEg*(maxPhase-b.Phase)) / maxPhase
	return b
}

// centerControl counts c's pieces on the four centre squares plus the
// centre squares c's pawns attack.
func centerControl(pos *board.Position, c board.Color) int {
	n := (pos.Occupied[c] & board.Center).PopCount()
	for bb := board.Center; bb != 0; {
		sq := bb.PopLSB()
		if board.PawnAttacks(sq, c.Other())&pos.Pieces[c][board.Pawn] != 0 {
			n++
		}
	}
	return n
}

// Evaluate returns the static score of pos in centipawns from the side to
// move's point of view.
func Evaluate(pos *board.Position) int {
	score := Explain(pos).Total()
	if pos.SideToMove == board.Black {
		score = -score
	}
	return score + tempoBonus
}
