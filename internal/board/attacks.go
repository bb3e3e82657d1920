package board

// Leaper attack tables, filled once by init and read-only afterwards.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
)

// direction indexes the eight ray directions. The first four step towards
// higher square indices, the last four towards lower ones.
type direction int

const (
	dirNorth direction = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthEast
	dirSouthWest
	numDirections
)

// rays[d][sq] holds every square reachable from sq in direction d on an
// empty board, sq itself excluded.
var rays [numDirections][64]Bitboard

var (
	rookDirections   = [4]direction{dirNorth, dirEast, dirSouth, dirWest}
	bishopDirections = [4]direction{dirNorthEast, dirNorthWest, dirSouthEast, dirSouthWest}
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = knightSpan(bb)

		kingAttacks[sq] = bb.north() | bb.south() | bb.east() | bb.west() |
			bb.northEast() | bb.northWest() | bb.southEast() | bb.southWest()

		pawnAttacks[White][sq] = bb.northEast() | bb.northWest()
		pawnAttacks[Black][sq] = bb.southEast() | bb.southWest()
	}
	initRays()
}

func knightSpan(bb Bitboard) Bitboard {
	const notAB = ^(FileA | FileA<<1)
	const notGH = ^(FileH | FileH>>1)
	return (bb<<17)&NotFileA | (bb<<15)&NotFileH |
		(bb>>15)&NotFileA | (bb>>17)&NotFileH |
		(bb<<10)&notAB | (bb<<6)&notGH |
		(bb>>6)&notAB | (bb>>10)&notGH
}

func initRays() {
	steps := [numDirections][2]int{
		dirNorth:     {0, 1},
		dirEast:      {1, 0},
		dirNorthEast: {1, 1},
		dirNorthWest: {-1, 1},
		dirSouth:     {0, -1},
		dirWest:      {-1, 0},
		dirSouthEast: {1, -1},
		dirSouthWest: {-1, -1},
	}
	for d := direction(0); d < numDirections; d++ {
		df, dr := steps[d][0], steps[d][1]
		for sq := A1; sq <= H8; sq++ {
			var ray Bitboard
			for f, r := sq.File()+df, sq.Rank()+dr; f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f+df, r+dr {
				ray |= SquareBB(NewSquare(f, r))
			}
			rays[d][sq] = ray
		}
	}
}

// rayAttacks scans from sq in direction d and stops at the first occupied
// square, which is included in the result.
func rayAttacks(d direction, sq Square, occupied Bitboard) Bitboard {
	ray := rays[d][sq]
	blockers := ray & occupied
	if blockers == 0 {
		return ray
	}
	var first Square
	if d < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return ray &^ rays[d][first]
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns diagonal attacks from sq given the occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, d := range bishopDirections {
		attacks |= rayAttacks(d, sq, occupied)
	}
	return attacks
}

// RookAttacks returns orthogonal attacks from sq given the occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, d := range rookDirections {
		attacks |= rayAttacks(d, sq, occupied)
	}
	return attacks
}

// QueenAttacks is the union of bishop and rook attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// IsSquareAttacked reports whether any piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	pcs := &p.Pieces[byColor]
	if pawnAttacks[byColor.Other()][sq]&pcs[Pawn] != 0 ||
		knightAttacks[sq]&pcs[Knight] != 0 ||
		kingAttacks[sq]&pcs[King] != 0 {
		return true
	}
	if diag := pcs[Bishop] | pcs[Queen]; diag != 0 && BishopAttacks(sq, p.AllOccupied)&diag != 0 {
		return true
	}
	orth := pcs[Rook] | pcs[Queen]
	return orth != 0 && RookAttacks(sq, p.AllOccupied)&orth != 0
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	us := p.SideToMove
	return p.IsSquareAttacked(p.KingSquare[us], us.Other())
}

