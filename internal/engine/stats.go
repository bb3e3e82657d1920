package engine

import (
	"fmt"

	"github.com/hailam/vatu/internal/board"
)

// BoardStats counts the pieces and pawn-structure features of one side.
type BoardStats struct {
	Pawns, Knights, Bishops, Rooks, Queens, Kings int

	DoubledPawns  int // pawns sharing their file with a friendly pawn
	IsolatedPawns int // pawns with no friendly pawn on an adjacent file
	BackwardPawns int // pawns with no friendly pawn beside or behind them on adjacent files

	// Mobility is the number of squares attacked by the side's knights,
	// bishops, rooks and queens that are not occupied by its own pieces.
	Mobility int
}

// ComputeStats collects BoardStats for color c.
func ComputeStats(pos *board.Position, c board.Color) BoardStats {
	pcs := &pos.Pieces[c]
	s := BoardStats{
		Pawns:   pcs[board.Pawn].PopCount(),
		Knights: pcs[board.Knight].PopCount(),
		Bishops: pcs[board.Bishop].PopCount(),
		Rooks:   pcs[board.Rook].PopCount(),
		Queens:  pcs[board.Queen].PopCount(),
		Kings:   pcs[board.King].PopCount(),
	}

	pawns := pcs[board.Pawn]
	for bb := pawns; bb != 0; {
		sq := bb.PopLSB()
		file := sq.File()
		if (pawns&^board.SquareBB(sq))&board.FileMask[file] != 0 {
			s.DoubledPawns++
		}
		neighbours := adjacentFiles(file) & pawns
		if neighbours == 0 {
			s.IsolatedPawns++
			s.BackwardPawns++
			continue
		}
		if neighbours&supportZone(sq, c) == 0 {
			s.BackwardPawns++
		}
	}

	s.Mobility = mobility(pos, c)
	return s
}

func (s BoardStats) String() string {
	return fmt.Sprintf("%dP %dB %dN %dR %dQ %dK %ddp %dbp %dip %dm",
		s.Pawns, s.Bishops, s.Knights, s.Rooks, s.Queens, s.Kings,
		s.DoubledPawns, s.BackwardPawns, s.IsolatedPawns, s.Mobility)
}

func adjacentFiles(file int) board.Bitboard {
	var bb board.Bitboard
	if file > 0 {
		bb |= board.FileMask[file-1]
	}
	if file < 7 {
		bb |= board.FileMask[file+1]
	}
	return bb
}

// supportZone returns the ranks from sq's rank back to c's first rank.
func supportZone(sq board.Square, c board.Color) board.Bitboard {
	rank := sq.Rank()
	if c == board.White {
		return board.Bitboard(1)<<uint((rank+1)*8) - 1
	}
	return ^(board.Bitboard(1)<<uint(rank*8) - 1)
}

func mobility(pos *board.Position, c board.Color) int {
	own := pos.Occupied[c]
	occ := pos.AllOccupied
	n := 0
	for pt := board.Knight; pt <= board.Queen; pt++ {
		for bb := pos.Pieces[c][pt]; bb != 0; {
			sq := bb.PopLSB()
			var attacks board.Bitboard
			switch pt {
			case board.Knight:
				attacks = board.KnightAttacks(sq)
			case board.Bishop:
				attacks = board.BishopAttacks(sq, occ)
			case board.Rook:
				attacks = board.RookAttacks(sq, occ)
			case board.Queen:
				attacks = board.QueenAttacks(sq, occ)
			}
			n += (attacks &^ own).PopCount()
		}
	}
	return n
}
