package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a set of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle reports whether c still holds the right on the given wing.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	right := WhiteQueenSideCastle
	if kingSide {
		right = WhiteKingSideCastle
	}
	if c == Black {
		right <<= 2
	}
	return cr&right != 0
}

// castlingMask[sq] is and-ed into the rights whenever a move touches sq.
var castlingMask [64]CastlingRights

func init() {
	for sq := range castlingMask {
		castlingMask[sq] = AllCastling
	}
	castlingMask[A1] &^= WhiteQueenSideCastle
	castlingMask[H1] &^= WhiteKingSideCastle
	castlingMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castlingMask[A8] &^= BlackQueenSideCastle
	castlingMask[H8] &^= BlackKingSideCastle
	castlingMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
}

// Position is a chess position. It is mutated in place by MakeMove and
// restored by UnmakeMove.
type Position struct {
	// Pieces holds one occupancy set per color and piece type.
	Pieces [2][6]Bitboard

	// Aggregates, always the unions of Pieces.
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare unless the last move was a double push
	HalfMoveClock  int
	FullMoveNumber int

	// Hash is the Zobrist key, maintained incrementally.
	Hash uint64

	KingSquare [2]Square
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	return NewPiece(p.pieceTypeOf(c, bb), c)
}

// pieceTypeOf returns the type of c's piece on the single square in bb.
func (p *Position) pieceTypeOf(c Color, bb Bitboard) PieceType {
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return pt
		}
	}
	return NoPieceType
}

// IsEmpty reports whether no piece stands on sq.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

func (p *Position) addPiece(c Color, pt PieceType, sq Square) {
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[c][pt][sq]
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(c Color, pt PieceType, sq Square) {
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[c][pt][sq]
}

func (p *Position) movePiece(c Color, pt PieceType, from, to Square) {
	bb := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= bb
	p.Occupied[c] ^= bb
	p.AllOccupied ^= bb
	p.Hash ^= zobristPiece[c][pt][from] ^ zobristPiece[c][pt][to]
	if pt == King {
		p.KingSquare[c] = to
	}
}

// Validate checks the structural invariants: disjoint occupancy sets,
// consistent aggregates, one king per side, no pawns on the back ranks and
// the side not to move not being in check.
func (p *Position) Validate() error {
	var union [2]Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			if bb&(union[White]|union[Black]) != 0 {
				return fmt.Errorf("%w: %v %v overlaps another piece", ErrCorruptPosition, c, pt)
			}
			union[c] |= bb
		}
	}
	if union != p.Occupied || union[White]|union[Black] != p.AllOccupied {
		return fmt.Errorf("%w: occupancy aggregates out of date", ErrCorruptPosition)
	}
	for c := White; c <= Black; c++ {
		kings := p.Pieces[c][King]
		if kings.PopCount() != 1 {
			return fmt.Errorf("%w: %v has %d kings", ErrCorruptPosition, c, kings.PopCount())
		}
		if kings.LSB() != p.KingSquare[c] {
			return fmt.Errorf("%w: %v king square out of date", ErrCorruptPosition, c)
		}
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrCorruptPosition)
	}
	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return fmt.Errorf("%w: side not to move is in check", ErrCorruptPosition)
	}
	return nil
}

// String draws the board followed by the FEN and hash.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			sb.WriteString(" | ")
			sb.WriteString(piece.String())
		}
		fmt.Fprintf(&sb, " | %d\n +---+---+---+---+---+---+---+---+\n", rank+1)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", p.ToFEN())
	fmt.Fprintf(&sb, "Key: %016X\n", p.Hash)
	return sb.String()
}
