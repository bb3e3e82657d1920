package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hailam/vatu/internal/board"
)

// SearchInfo reports one completed iteration.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// NPS returns nodes per second.
func (si SearchInfo) NPS() uint64 {
	ms := si.Time.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return si.Nodes * 1000 / uint64(ms)
}

// SearchLimits bounds a search. Zero values mean no limit; with no limit at
// all the search runs until stopped or MaxPly is reached.
type SearchLimits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool

	// Clock state, indexed by color. HasClock marks a timed search even
	// when the side to move has no time left.
	HasClock  bool
	Time      [2]time.Duration
	Inc       [2]time.Duration
	MovesToGo int

	MoveOverhead time.Duration
}

// Outcome tells whether the root position had a move to play.
type Outcome int

const (
	OutcomeMove Outcome = iota
	OutcomeCheckmate
	OutcomeStalemate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCheckmate:
		return "checkmate"
	case OutcomeStalemate:
		return "stalemate"
	default:
		return "move"
	}
}

// Result is what a search settles on. Move is NoMove exactly when Outcome
// is not OutcomeMove.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int // last fully searched depth
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
	Outcome Outcome
}

// Engine searches positions. It holds no position of its own; callers pass
// one per search and it is copied before use.
type Engine struct {
	stop    atomic.Bool
	history []uint64
	killers moveOrderer

	// OnInfo, when set, is called after every completed iteration from the
	// searching goroutine.
	OnInfo func(SearchInfo)
}

// NewEngine creates an idle engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetHistory records the hashes of the game positions that preceded the
// one to be searched, oldest first, for repetition detection.
func (e *Engine) SetHistory(hashes []uint64) {
	e.history = append(e.history[:0], hashes...)
}

// Clear forgets the game history and move ordering state.
func (e *Engine) Clear() {
	e.history = e.history[:0]
	e.killers.clear()
}

// Stop asks a running search to return. It is safe to call from any
// goroutine and is a no-op when nothing is searching.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Search runs a search to completion on the calling goroutine.
func (e *Engine) Search(pos *board.Position, limits SearchLimits) Result {
	e.stop.Store(false)
	return e.run(pos.Copy(), limits)
}

// Go starts a search on its own goroutine. The returned channel delivers
// the result once and is then closed. A Stop issued after Go returns always
// reaches this search.
func (e *Engine) Go(pos *board.Position, limits SearchLimits) <-chan Result {
	e.stop.Store(false)
	p := pos.Copy()
	done := make(chan Result, 1)
	go func() {
		done <- e.run(p, limits)
		close(done)
	}()
	return done
}

func (e *Engine) run(pos *board.Position, limits SearchLimits) Result {
	s := newSearcher(pos, e.history, &e.stop)
	s.orderer = e.killers
	s.nodeLimit = limits.Nodes
	gamePly := 2*(pos.FullMoveNumber-1) + int(pos.SideToMove)
	s.tm = newTimeManager(limits, pos.SideToMove, gamePly)

	res := Result{Move: board.NoMove}
	root := pos.GenerateLegalMoves()
	if root.Len() == 0 {
		if pos.InCheck() {
			res.Outcome, res.Score = OutcomeCheckmate, -MateScore
		} else {
			res.Outcome = OutcomeStalemate
		}
		return res
	}

	// Until an iteration finishes, the first generated move stands in.
	res.Move = root.Get(0)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = min(limits.Depth, maxDepth)
	}

	for depth := 1; depth <= maxDepth; depth++ {
		s.prevPV = res.PV
		rr := s.searchRoot(depth, res.Move)

		if !rr.completed {
			// A partial iteration only counts when a fully searched root
			// move beat the previous iteration's score.
			if rr.move != board.NoMove && (res.Depth == 0 || rr.score > res.Score) {
				res.Move, res.Score = rr.move, rr.score
				res.PV = s.pv.line()
			}
			break
		}

		res.Move, res.Score, res.Depth = rr.move, rr.score, depth
		res.PV = s.pv.line()
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: rr.score,
				Nodes: s.nodes,
				Time:  s.tm.elapsed(),
				PV:    res.PV,
			})
		}

		// Under infinite the caller expects no result before it says stop.
		if !limits.Infinite && (IsMateScore(rr.score) || s.tm.pastOptimum()) {
			break
		}
	}

	e.killers = s.orderer
	res.Nodes = s.nodes
	res.Elapsed = s.tm.elapsed()
	return res
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return abs(score) >= MateScore-MaxPly
}

// UCIScore formats score as "cp N" or "mate N", N in moves.
func UCIScore(score int) string {
	switch {
	case score >= MateScore-MaxPly:
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	case score <= -MateScore+MaxPly:
		return fmt.Sprintf("mate -%d", (MateScore+score)/2)
	}
	return fmt.Sprintf("cp %d", score)
}
