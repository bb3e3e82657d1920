package board

// Zobrist keys. A fixed seed keeps hashes stable across runs, which the
// search journal relies on when it stores position keys.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64 // by file
	zobristCastling   [16]uint64
	zobristSideToMove uint64 // xor-ed in when Black is to move
)

const zobristSeed = 0x5EED0FC0FFEE1234

func init() {
	rng := splitmix{state: zobristSeed}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// splitmix is the splitmix64 generator.
type splitmix struct {
	state uint64
}

func (s *splitmix) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// ComputeHash recomputes the Zobrist key from scratch. MakeMove keeps Hash
// up to date incrementally; this is the reference it must agree with.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for bb := p.Pieces[c][pt]; bb != 0; {
				h ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	h ^= zobristCastling[p.CastlingRights]
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
