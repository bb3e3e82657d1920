package engine

import (
	"sync/atomic"

	"github.com/hailam/vatu/internal/board"
)

const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	// checkInterval is how many nodes pass between polls of the stop flag
	// and the clock. Must be a power of two.
	checkInterval = 2048
)

// pvTable is the triangular principal variation table.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1]
}

func (pv *pvTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Searcher runs one alpha-beta search over a private position.
type Searcher struct {
	pos *board.Position

	stop      *atomic.Bool
	tm        timeManager
	nodeLimit uint64
	nodes     uint64
	aborted   bool

	// hashes holds the game history followed by every position on the
	// current path, the current position last.
	hashes []uint64

	moves   [MaxPly + 1]board.MoveList
	scores  [MaxPly + 1][maxMovesPerNode]int
	pv      pvTable
	prevPV  []board.Move
	orderer moveOrderer
}

func newSearcher(pos *board.Position, history []uint64, stop *atomic.Bool) *Searcher {
	s := &Searcher{
		pos:    pos,
		stop:   stop,
		hashes: make([]uint64, 0, len(history)+MaxPly+1),
	}
	s.hashes = append(s.hashes, history...)
	s.hashes = append(s.hashes, pos.Hash)
	return s
}

// shouldAbort checks the node limit on every call and the stop flag and
// clock every checkInterval nodes.
func (s *Searcher) shouldAbort() bool {
	if s.aborted {
		return true
	}
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		s.aborted = true
	} else if s.nodes&(checkInterval-1) == 0 && (s.stop.Load() || s.tm.expired()) {
		s.aborted = true
	}
	return s.aborted
}

// isRepetition reports whether the current position already occurred since
// the last irreversible move.
func (s *Searcher) isRepetition() bool {
	n := len(s.hashes) - 1
	h := s.hashes[n]
	stop := max(n-s.pos.HalfMoveClock, 0)
	for i := n - 2; i >= stop; i -= 2 {
		if s.hashes[i] == h {
			return true
		}
	}
	return false
}

func (s *Searcher) makeMove(m board.Move) board.UndoInfo {
	undo := s.pos.MakeMove(m)
	s.hashes = append(s.hashes, s.pos.Hash)
	return undo
}

func (s *Searcher) unmakeMove(m board.Move, undo board.UndoInfo) {
	s.hashes = s.hashes[:len(s.hashes)-1]
	s.pos.UnmakeMove(m, undo)
}

// rootResult is the outcome of one root iteration. When the iteration was
// aborted, move and score cover only the root moves searched to the end.
type rootResult struct {
	move      board.Move
	score     int
	completed bool
}

// searchRoot searches every root move to depth. prev is tried first.
func (s *Searcher) searchRoot(depth int, prev board.Move) rootResult {
	ml := &s.moves[0]
	s.pos.GenerateLegalMovesInto(ml)
	s.pv.length[0] = 0
	s.orderer.scoreMoves(ml, 0, prev, &s.scores[0])

	res := rootResult{move: board.NoMove, score: -Infinity}
	alpha, beta := -Infinity, Infinity
	for i := 0; i < ml.Len(); i++ {
		m := pickMove(ml, &s.scores[0], i)
		undo := s.makeMove(m)
		score := -s.negamax(depth-1, 1, -beta, -alpha)
		s.unmakeMove(m, undo)
		if s.aborted {
			return res
		}
		if score > res.score {
			res.move, res.score = m, score
			if score > alpha {
				alpha = score
				s.pv.update(0, m)
			}
		}
	}
	res.completed = true
	return res
}

// negamax returns the score of the current position from the side to
// move's point of view, searched to depth with an alpha-beta window.
func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	s.pv.length[ply] = ply
	s.nodes++
	if s.shouldAbort() {
		return 0
	}

	pos := s.pos
	if pos.IsFiftyMoveDraw() || pos.IsInsufficientMaterial() || s.isRepetition() {
		return 0
	}
	if depth <= 0 || ply >= MaxPly {
		return Evaluate(pos)
	}

	ml := &s.moves[ply]
	pos.GenerateLegalMovesInto(ml)
	if ml.Len() == 0 {
		if pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}

	s.orderer.scoreMoves(ml, ply, s.pvMoveAt(ply), &s.scores[ply])

	best := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := pickMove(ml, &s.scores[ply], i)
		undo := s.makeMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.unmakeMove(m, undo)
		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				s.pv.update(ply, m)
				if alpha >= beta {
					if m.IsQuiet() {
						s.orderer.storeKiller(ply, m)
					}
					break
				}
			}
		}
	}
	return best
}

// pvMoveAt returns the move the previous iteration's line played at ply.
// It only orders moves, so it may not even be legal here.
func (s *Searcher) pvMoveAt(ply int) board.Move {
	if ply >= len(s.prevPV) {
		return board.NoMove
	}
	return s.prevPV[ply]
}
