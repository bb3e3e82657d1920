package board

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func moveStrings(ml *MoveList) []string {
	out := make([]string, 0, ml.Len())
	for _, m := range ml.Slice() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestLegalMovesNeverLeaveKingAttacked(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/4r3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		pos := mustParse(t, fen)
		us := pos.SideToMove
		for _, m := range pos.GenerateLegalMoves().Slice() {
			undo := pos.MakeMove(m)
			if pos.IsSquareAttacked(pos.KingSquare[us], us.Other()) {
				t.Errorf("%s: %v leaves the king attacked", fen, m)
			}
			pos.UnmakeMove(m, undo)
		}
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want []string // castling moves expected among the legal moves
		deny []string
	}{
		{
			name: "both wings open",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			want: []string{"e1g1", "e1c1"},
		},
		{
			name: "transit square attacked",
			fen:  "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1",
			deny: []string{"e1g1"},
		},
		{
			name: "in check",
			fen:  "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1",
			deny: []string{"e1g1", "e1c1"},
		},
		{
			name: "b1 attacked does not block queenside",
			fen:  "r3k2r/8/8/8/8/8/1r6/R3K2R w KQ - 0 1",
			want: []string{"e1c1"},
		},
		{
			name: "b1 occupied blocks queenside",
			fen:  "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1",
			want: []string{"e1g1"},
			deny: []string{"e1c1"},
		},
		{
			name: "no rights",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1",
			deny: []string{"e1g1", "e1c1"},
		},
		{
			name: "black",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
			want: []string{"e8g8", "e8c8"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			moves := map[string]bool{}
			for _, s := range moveStrings(pos.GenerateLegalMoves()) {
				moves[s] = true
			}
			for _, s := range tc.want {
				if !moves[s] {
					t.Errorf("missing %s", s)
				}
			}
			for _, s := range tc.deny {
				if moves[s] {
					t.Errorf("unexpected %s", s)
				}
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	m, err := pos.ParseMove("e1c1")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(m)
	if got, want := pos.ToFEN(), "r3k2r/8/8/8/8/8/8/2KR3R b kq - 1 1"; got != want {
		t.Errorf("after e1c1 got %s, want %s", got, want)
	}
}

func TestEnPassant(t *testing.T) {
	pos := mustParse(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	m, err := pos.ParseMove("e5f6")
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsEnPassant() || m.Captured() != Pawn {
		t.Fatalf("e5f6 = %#x, want an en passant capture of a pawn", uint32(m))
	}
	if _, err := pos.ParseMove("e5d6"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("e5d6 should be illegal, got err %v", err)
	}
	pos.MakeMove(m)
	if got, want := pos.ToFEN(), "rnbqkbnr/ppp1p1pp/5P2/3p4/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 3"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDoublePushSetsEnPassant(t *testing.T) {
	pos := NewPosition()
	m, err := pos.ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(m)
	if pos.EnPassant != E3 {
		t.Errorf("EnPassant = %v, want e3", pos.EnPassant)
	}
	m, _ = pos.ParseMove("g8f6")
	pos.MakeMove(m)
	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %v after a quiet move, want none", pos.EnPassant)
	}
}

func TestPromotions(t *testing.T) {
	pos := mustParse(t, "1n5k/P7/8/8/8/8/8/K7 w - - 0 1")
	want := []string{"a1a2", "a1b1", "a1b2", "a7a8b", "a7a8n", "a7a8q", "a7a8r", "a7b8b", "a7b8n", "a7b8q", "a7b8r"}
	if diff := cmp.Diff(want, moveStrings(pos.GenerateLegalMoves())); diff != "" {
		t.Errorf("legal moves mismatch (-want +got):\n%s", diff)
	}

	m, err := pos.ParseMove("a7b8n")
	if err != nil {
		t.Fatal(err)
	}
	if m.Captured() != Knight || m.Promotion() != Knight {
		t.Errorf("a7b8n captured=%v promo=%v", m.Captured(), m.Promotion())
	}
	undo := pos.MakeMove(m)
	if got := pos.PieceAt(B8); got != WhiteKnight {
		t.Errorf("b8 holds %v after promotion", got)
	}
	pos.UnmakeMove(m, undo)
	if got := pos.PieceAt(A7); got != WhitePawn {
		t.Errorf("a7 holds %v after unmake", got)
	}
}

func TestGenerateCaptures(t *testing.T) {
	pos := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	caps := pos.GenerateCaptures()
	if caps.Len() != 8 {
		t.Errorf("got %d captures %v, want 8", caps.Len(), moveStrings(caps))
	}
	for _, m := range caps.Slice() {
		if !m.IsCapture() && !m.IsPromotion() {
			t.Errorf("%v is not tactical", m)
		}
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Status
	}{
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", Checkmate},
		{"king takes the rook", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", Ongoing},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate},
		{"start", StartFEN, Ongoing},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Checkmate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			if got := pos.Status(); got != tc.want {
				t.Errorf("Status() = %v, want %v", got, tc.want)
			}
			if got := pos.HasLegalMoves(); got != (tc.want == Ongoing) {
				t.Errorf("HasLegalMoves() = %v", got)
			}
		})
	}
}

func TestParseMoveErrors(t *testing.T) {
	pos := NewPosition()
	tests := []struct {
		in   string
		want error
	}{
		{"e2", ErrInvalidMove},
		{"e2e4x", ErrInvalidMove},
		{"z2e4", ErrInvalidMove},
		{"e2e5", ErrIllegalMove},
		{"e1e2", ErrIllegalMove},
		{"e2e4q", ErrIllegalMove},
	}
	for _, tc := range tests {
		if _, err := pos.ParseMove(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("ParseMove(%q) error = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestDrawConditions(t *testing.T) {
	tests := []struct {
		fen          string
		fifty        bool
		insufficient bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", false, true},
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", false, true},
		{"4k3/8/8/8/8/8/8/3BKN2 w - - 0 1", false, false},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 100 80", true, false},
		{"4k3/8/8/8/8/8/8/4KR2 w - - 99 80", false, false},
	}
	for _, tc := range tests {
		pos := mustParse(t, tc.fen)
		if got := pos.IsFiftyMoveDraw(); got != tc.fifty {
			t.Errorf("%s: IsFiftyMoveDraw = %v", tc.fen, got)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.insufficient {
			t.Errorf("%s: IsInsufficientMaterial = %v", tc.fen, got)
		}
	}
}
