package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a position from Forsyth-Edwards Notation. The clock
// fields are optional and default to "0 1". Every error wraps ErrInvalidFEN.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: want 4 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		KingSquare:     [2]Square{NoSquare, NoSquare},
	}

	if err := pos.parsePlacement(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			i := strings.IndexRune("KQkq", c)
			if i < 0 {
				return nil, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, fields[2])
			}
			pos.CastlingRights |= 1 << i
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant field %q", ErrInvalidFEN, fields[3])
		}
		want := 5
		if pos.SideToMove == Black {
			want = 2
		}
		if sq.Rank() != want {
			return nil, fmt.Errorf("%w: en passant square %s on the wrong rank", ErrInvalidFEN, sq)
		}
		if !pos.doublePushBehind(sq) {
			return nil, fmt.Errorf("%w: no double-pushed pawn behind en passant square %s", ErrInvalidFEN, sq)
		}
		pos.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
		}
		pos.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
		}
		pos.FullMoveNumber = n
	}

	pos.Hash = pos.ComputeHash()
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return pos, nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fmt.Errorf("%w: piece letter %q", ErrInvalidFEN, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			p.addPiece(piece.Color(), piece.Type(), NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

// ToFEN returns the position in Forsyth-Edwards Notation.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, p.CastlingRights, p.EnPassant, p.HalfMoveClock, p.FullMoveNumber)
	return sb.String()
}

// doublePushBehind reports whether the board matches an opponent double
// push over ep: their pawn just past it, ep and the pawn's start square empty.
func (p *Position) doublePushBehind(ep Square) bool {
	them := p.SideToMove.Other()
	pawn, start := ep-8, ep+8
	if them == White {
		pawn, start = ep+8, ep-8
	}
	return p.Pieces[them][Pawn]&SquareBB(pawn) != 0 && p.IsEmpty(ep) && p.IsEmpty(start)
}
