package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, bit i standing for Square(i).
type Bitboard uint64

const (
	FileA Bitboard = 0x0101010101010101
	FileH Bitboard = 0x8080808080808080

	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank3 Bitboard = 0x0000000000FF0000
	Rank6 Bitboard = 0x0000FF0000000000
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000

	Empty Bitboard = 0

	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH

	Center Bitboard = 0x0000001818000000 // d4 e4 d5 e5
)

// FileMask is indexed by file number.
var FileMask = [8]Bitboard{
	FileA, FileA << 1, FileA << 2, FileA << 3,
	FileA << 4, FileA << 5, FileA << 6, FileH,
}

// SquareBB returns the singleton set {sq}.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet reports whether sq is in the set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of squares in the set.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest square in the set, or NoSquare when empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the highest square in the set, or NoSquare when empty.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB removes the lowest square from the set and returns it.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

func (b Bitboard) north() Bitboard     { return b << 8 }
func (b Bitboard) south() Bitboard     { return b >> 8 }
func (b Bitboard) east() Bitboard      { return (b << 1) & NotFileA }
func (b Bitboard) west() Bitboard      { return (b >> 1) & NotFileH }
func (b Bitboard) northEast() Bitboard { return (b << 9) & NotFileA }
func (b Bitboard) northWest() Bitboard { return (b << 7) & NotFileH }
func (b Bitboard) southEast() Bitboard { return (b >> 7) & NotFileA }
func (b Bitboard) southWest() Bitboard { return (b >> 9) & NotFileH }

// String draws the set as an 8x8 grid, rank 8 on top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
