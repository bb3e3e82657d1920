package engine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hailam/vatu/internal/board"
)

func TestEvaluateSymmetricStart(t *testing.T) {
	white := board.NewPosition()
	black := mustParse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if got := Evaluate(white); got != tempoBonus {
		t.Errorf("start, white to move: %d, want %d", got, tempoBonus)
	}
	if got := Evaluate(black); got != tempoBonus {
		t.Errorf("start, black to move: %d, want %d", got, tempoBonus)
	}
}

func TestEvaluateMaterialGain(t *testing.T) {
	tests := []struct {
		name       string
		base, gain string
	}{
		{"knight", board.StartFEN, "r1bqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"rook", board.StartFEN, "1nbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w Kk - 0 1"},
		{"queen", board.StartFEN, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := Evaluate(mustParse(t, tc.base))
			gain := Evaluate(mustParse(t, tc.gain))
			if gain <= base {
				t.Errorf("removing a black %s: %d -> %d, want an increase", tc.name, base, gain)
			}
		})
	}
}

func TestEvaluateSideToMovePerspective(t *testing.T) {
	w := mustParse(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	b := mustParse(t, "4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if Evaluate(w) <= 0 {
		t.Errorf("queen up with the move: %d", Evaluate(w))
	}
	if Evaluate(b) >= 0 {
		t.Errorf("queen down with the move: %d", Evaluate(b))
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		color board.Color
		want  BoardStats
	}{
		{
			name:  "start",
			fen:   board.StartFEN,
			color: board.White,
			want:  BoardStats{Pawns: 8, Knights: 2, Bishops: 2, Rooks: 2, Queens: 1, Kings: 1, Mobility: 4},
		},
		{
			name:  "doubled and isolated",
			fen:   "4k3/8/8/8/8/2P5/2P5/4K3 w - - 0 1",
			color: board.White,
			want:  BoardStats{Pawns: 2, Kings: 1, DoubledPawns: 2, IsolatedPawns: 2, BackwardPawns: 2},
		},
		{
			name:  "white backward pawn",
			fen:   "4k3/8/8/8/3P4/4P3/8/4K3 w - - 0 1",
			color: board.White,
			want:  BoardStats{Pawns: 2, Kings: 1, BackwardPawns: 1},
		},
		{
			name:  "black backward pawn",
			fen:   "4k3/8/4p3/3p4/8/8/8/4K3 w - - 0 1",
			color: board.Black,
			want:  BoardStats{Pawns: 2, Kings: 1, BackwardPawns: 1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStats(mustParse(t, tc.fen), tc.color)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExplainTotalsToEvaluate(t *testing.T) {
	pos := mustParse(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	b := Explain(pos)
	if got, want := b.Total()+tempoBonus, Evaluate(pos); got != want {
		t.Errorf("breakdown total %d, Evaluate %d", got, want)
	}
	if b.Phase != maxPhase {
		t.Errorf("phase %d with all pieces on, want %d", b.Phase, maxPhase)
	}
}

func TestCenterControl(t *testing.T) {
	if got := Explain(board.NewPosition()).Center; got != 0 {
		t.Errorf("start position center term %d, want 0", got)
	}
	// The e4 pawn stands on the centre and hits d5.
	pos := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if got, want := Explain(pos).Center, 2*centerWeight; got != want {
		t.Errorf("center term after e4 = %d, want %d", got, want)
	}
}

func TestTimeManager(t *testing.T) {
	tm := newTimeManager(SearchLimits{MoveTime: time.Second, MoveOverhead: 30 * time.Millisecond}, board.White, 0)
	if got := tm.deadline.Sub(tm.start); got != 970*time.Millisecond {
		t.Errorf("movetime deadline after %v, want 970ms", got)
	}

	var limits SearchLimits
	limits.Time[board.White] = time.Minute
	limits.MoveOverhead = 30 * time.Millisecond
	tm = newTimeManager(limits, board.White, 0)
	if tm.optimum != 1200*time.Millisecond {
		t.Errorf("optimum %v, want 1.2s", tm.optimum)
	}
	if got := tm.deadline.Sub(tm.start); got != 5970*time.Millisecond {
		t.Errorf("clock deadline after %v, want 5.97s", got)
	}

	limits.MovesToGo = 10
	limits.Inc[board.White] = time.Second
	tm = newTimeManager(limits, board.White, 40)
	if want := 6*time.Second + 900*time.Millisecond; tm.optimum != want {
		t.Errorf("optimum with movestogo %v, want %v", tm.optimum, want)
	}

	// A flagged or empty clock still gets a deadline.
	var flagged SearchLimits
	flagged.Time[board.Black] = 10 * time.Second
	tm = newTimeManager(flagged, board.White, 0)
	if got := tm.deadline.Sub(tm.start); got != minThinkTime {
		t.Errorf("empty clock deadline after %v, want %v", got, minThinkTime)
	}
	tm = newTimeManager(SearchLimits{HasClock: true}, board.Black, 0)
	if tm.deadline.IsZero() || tm.optimum != minThinkTime {
		t.Errorf("zero clock got optimum %v and deadline %v", tm.optimum, tm.deadline)
	}

	tm = newTimeManager(SearchLimits{Infinite: true}, board.Black, 0)
	if !tm.deadline.IsZero() || tm.pastOptimum() || tm.expired() {
		t.Error("infinite search got a time limit")
	}
}
