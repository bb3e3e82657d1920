package engine

import (
	"slices"
	"testing"
	"time"

	"github.com/hailam/vatu/internal/board"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// plainNegamax is the unpruned reference the alpha-beta search must agree
// with.
func plainNegamax(pos *board.Position, depth, ply int) int {
	if ply > 0 && (pos.IsFiftyMoveDraw() || pos.IsInsufficientMaterial()) {
		return 0
	}
	if depth == 0 {
		return Evaluate(pos)
	}
	ml := pos.GenerateLegalMoves()
	if ml.Len() == 0 {
		if pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	best := -Infinity
	for _, m := range ml.Slice() {
		undo := pos.MakeMove(m)
		best = max(best, -plainNegamax(pos, depth-1, ply+1))
		pos.UnmakeMove(m, undo)
	}
	return best
}

// rootNegamax scores every root move with plainNegamax and returns the best
// score and all moves reaching it.
func rootNegamax(pos *board.Position, depth int) (int, []board.Move) {
	best := -Infinity
	var moves []board.Move
	for _, m := range pos.GenerateLegalMoves().Slice() {
		undo := pos.MakeMove(m)
		score := -plainNegamax(pos, depth-1, 1)
		pos.UnmakeMove(m, undo)
		switch {
		case score > best:
			best, moves = score, []board.Move{m}
		case score == best:
			moves = append(moves, m)
		}
	}
	return best, moves
}

func TestAlphaBetaMatchesNegamax(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
	}{
		{board.StartFEN, 3},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 3},
	}
	for _, tc := range tests {
		pos := mustParse(t, tc.fen)
		want, bestMoves := rootNegamax(pos.Copy(), tc.depth)
		res := NewEngine().Search(pos, SearchLimits{Depth: tc.depth})
		if res.Depth != tc.depth {
			t.Errorf("%s: searched to depth %d, want %d", tc.fen, res.Depth, tc.depth)
		}
		if res.Score != want {
			t.Errorf("%s depth %d: alpha-beta score %d, negamax %d", tc.fen, tc.depth, res.Score, want)
		}
		if len(bestMoves) == 1 && res.Move != bestMoves[0] {
			t.Errorf("%s depth %d: alpha-beta played %v, negamax's only best move is %v",
				tc.fen, tc.depth, res.Move, bestMoves[0])
		}
		if !slices.Contains(bestMoves, res.Move) {
			t.Errorf("%s depth %d: alpha-beta played %v, not among negamax best %v",
				tc.fen, tc.depth, res.Move, bestMoves)
		}
	}
}

func TestSearchOutcomeWithoutMoves(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Outcome
	}{
		{"checkmate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", OutcomeCheckmate},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", OutcomeStalemate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewEngine().Search(mustParse(t, tc.fen), SearchLimits{Depth: 3})
			if res.Outcome != tc.want {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tc.want)
			}
			if res.Move != board.NoMove {
				t.Errorf("Move = %v, want 0000", res.Move)
			}
		})
	}
}

func TestFindsMateInOne(t *testing.T) {
	pos := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	res := NewEngine().Search(pos, SearchLimits{Depth: 3})
	if got := res.Move.String(); got != "a1a8" {
		t.Fatalf("best move %s, want a1a8", got)
	}
	if res.Score != MateScore-1 {
		t.Errorf("score %d, want %d", res.Score, MateScore-1)
	}
	if got := UCIScore(res.Score); got != "mate 1" {
		t.Errorf("UCIScore = %q, want mate 1", got)
	}
	if res.Outcome != OutcomeMove {
		t.Errorf("Outcome = %v", res.Outcome)
	}
}

func TestAvoidsHangingQueen(t *testing.T) {
	// The queen on d4 is attacked by the e5 pawn; any sane depth-2 search
	// moves it or trades it.
	pos := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/3Q4/8/PPP1PPPP/RNB1KBNR w KQkq - 0 3")
	res := NewEngine().Search(pos, SearchLimits{Depth: 2})
	if res.Move.From() != board.D4 {
		t.Errorf("best move %v leaves the queen en prise", res.Move)
	}
}

func TestStopReturnsCompletedMove(t *testing.T) {
	eng := NewEngine()
	var infos []SearchInfo
	eng.OnInfo = func(si SearchInfo) { infos = append(infos, si) }

	pos := board.NewPosition()
	done := eng.Go(pos, SearchLimits{Infinite: true})
	time.Sleep(100 * time.Millisecond)
	eng.Stop()

	select {
	case res := <-done:
		if !pos.GenerateLegalMoves().Contains(res.Move) {
			t.Fatalf("stopped search returned %v, not a legal move", res.Move)
		}
		if res.Depth < 1 {
			t.Errorf("Depth = %d, want at least one completed iteration", res.Depth)
		}
		if len(infos) != res.Depth {
			t.Errorf("got %d info reports for %d completed depths", len(infos), res.Depth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not honour Stop")
	}
}

func TestStopImmediatelyStillReturnsLegalMove(t *testing.T) {
	eng := NewEngine()
	pos := board.NewPosition()
	done := eng.Go(pos, SearchLimits{Infinite: true})
	eng.Stop()
	res := <-done
	if !pos.GenerateLegalMoves().Contains(res.Move) {
		t.Errorf("got %v, want a legal move", res.Move)
	}
}

func TestNodeLimit(t *testing.T) {
	pos := board.NewPosition()
	res := NewEngine().Search(pos, SearchLimits{Nodes: 5000})
	if res.Nodes > 5000 {
		t.Errorf("searched %d nodes, limit 5000", res.Nodes)
	}
	if !pos.GenerateLegalMoves().Contains(res.Move) {
		t.Errorf("got %v, want a legal move", res.Move)
	}
}

func TestMoveTimeIsRespected(t *testing.T) {
	start := time.Now()
	res := NewEngine().Search(board.NewPosition(), SearchLimits{MoveTime: 200 * time.Millisecond})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("movetime 200ms search took %v", elapsed)
	}
	if res.Move == board.NoMove {
		t.Error("no move returned")
	}
}

func TestSearchDoesNotTouchCallerPosition(t *testing.T) {
	pos := board.NewPosition()
	before := pos.ToFEN()
	NewEngine().Search(pos, SearchLimits{Depth: 3})
	if after := pos.ToFEN(); after != before {
		t.Errorf("position changed from %s to %s", before, after)
	}
}

func TestRepetitionDetection(t *testing.T) {
	pos := board.NewPosition()
	history := []uint64{pos.Hash}
	for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m, err := pos.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
		history = append(history, pos.Hash)
	}
	s := newSearcher(pos, history[:len(history)-1], nil)
	if !s.isRepetition() {
		t.Error("knight shuffle back to the start not seen as a repetition")
	}

	fresh := newSearcher(board.NewPosition(), nil, nil)
	if fresh.isRepetition() {
		t.Error("start position without history reported as repeated")
	}
}

func TestUCIScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "cp 0"},
		{-135, "cp -135"},
		{MateScore - 1, "mate 1"},
		{MateScore - 3, "mate 2"},
		{-MateScore + 2, "mate -1"},
		{-MateScore + 4, "mate -2"},
	}
	for _, tc := range tests {
		if got := UCIScore(tc.score); got != tc.want {
			t.Errorf("UCIScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestInsufficientMaterialIsDrawn(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/3B4/4K3 w - - 0 1")
	if Evaluate(pos) <= 0 {
		t.Fatalf("static eval %d should favour the bishop", Evaluate(pos))
	}
	res := NewEngine().Search(pos, SearchLimits{Depth: 3})
	if res.Score != 0 {
		t.Errorf("king and bishop against king scored %d, want 0", res.Score)
	}
}
