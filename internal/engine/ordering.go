package engine

import "github.com/hailam/vatu/internal/board"

// Move ordering priorities.
const (
	pvMoveScore     = 1 << 24
	promotionBase   = 1 << 22
	captureBase     = 1 << 20
	killerScore1    = 1 << 19
	killerScore2    = killerScore1 - 1
	maxMovesPerNode = 256
)

// mvvLva[victim][attacker]: most valuable victim first, cheapest attacker
// breaking ties.
var mvvLva = [6][6]int{
	//       P   N   B   R   Q   K
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// moveOrderer remembers quiet moves that caused beta cutoffs, two per ply.
type moveOrderer struct {
	killers [MaxPly][2]board.Move
}

func (mo *moveOrderer) clear() {
	mo.killers = [MaxPly][2]board.Move{}
}

func (mo *moveOrderer) storeKiller(ply int, m board.Move) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// scoreMoves fills scores[i] for every move in ml.
func (mo *moveOrderer) scoreMoves(ml *board.MoveList, ply int, pvMove board.Move, scores *[maxMovesPerNode]int) {
	for i, m := range ml.Slice() {
		scores[i] = mo.scoreMove(m, ply, pvMove)
	}
}

func (mo *moveOrderer) scoreMove(m board.Move, ply int, pvMove board.Move) int {
	switch {
	case m == pvMove:
		return pvMoveScore
	case m.IsPromotion():
		score := promotionBase + pieceValues[m.Promotion()]
		if m.IsCapture() {
			score += mvvLva[m.Captured()][board.Pawn]
		}
		return score
	case m.IsCapture():
		return captureBase + mvvLva[m.Captured()][m.Piece()]
	case ply < MaxPly && m == mo.killers[ply][0]:
		return killerScore1
	case ply < MaxPly && m == mo.killers[ply][1]:
		return killerScore2
	}
	return 0
}

// pickMove moves the best-scored move among i..n-1 to position i.
func pickMove(ml *board.MoveList, scores *[maxMovesPerNode]int, i int) board.Move {
	best := i
	for j := i + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return ml.Get(i)
}
