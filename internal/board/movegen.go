package board

import "fmt"

// GenerateLegalMoves returns every legal move for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.GenerateLegalMovesInto(ml)
	return ml
}

// GenerateLegalMovesInto fills ml with the legal moves, reusing its storage.
// The order is deterministic for a given position.
func (p *Position) GenerateLegalMovesInto(ml *MoveList) {
	ml.Clear()
	p.generatePseudoLegal(ml, false)
	p.filterLegal(ml)
}

// GenerateCaptures returns the legal captures and promotions.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generatePseudoLegal(ml, true)
	p.filterLegal(ml)
	return ml
}

// filterLegal drops, in place, every move that leaves the mover's king
// attacked. Each candidate is applied, tested and reverted.
func (p *Position) filterLegal(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	n := 0
	for i := 0; i < ml.count; i++ {
		m := ml.moves[i]
		undo := p.MakeMove(m)
		legal := !p.IsSquareAttacked(p.KingSquare[us], them)
		p.UnmakeMove(m, undo)
		if legal {
			ml.moves[n] = m
			n++
		}
	}
	ml.count = n
}

// generatePseudoLegal appends pseudo-legal moves. With tactical set only
// captures and promotions are produced.
func (p *Position) generatePseudoLegal(ml *MoveList, tactical bool) {
	us := p.SideToMove
	them := us.Other()
	targets := ^p.Occupied[us]
	if tactical {
		targets = p.Occupied[them]
	}

	p.generatePawnMoves(ml, us, tactical)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = knightAttacks[from]
			case Bishop:
				attacks = BishopAttacks(from, p.AllOccupied)
			case Rook:
				attacks = RookAttacks(from, p.AllOccupied)
			case Queen:
				attacks = QueenAttacks(from, p.AllOccupied)
			case King:
				attacks = kingAttacks[from]
			}
			p.addMoves(ml, from, attacks&targets, pt, them)
		}
	}

	if !tactical {
		p.generateCastlingMoves(ml, us)
	}
}

// addMoves emits one move per destination in targets, tagging captures.
func (p *Position) addMoves(ml *MoveList, from Square, targets Bitboard, pt PieceType, them Color) {
	for targets != 0 {
		to := targets.PopLSB()
		captured := NoPieceType
		if p.Occupied[them].IsSet(to) {
			captured = p.pieceTypeOf(them, SquareBB(to))
		}
		ml.Add(NewMove(from, to, pt, captured))
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, tactical bool) {
	them := us.Other()
	pawns := p.Pieces[us][Pawn]
	if pawns == 0 {
		return
	}
	enemies := p.Occupied[them]
	empty := ^p.AllOccupied

	var push1, push2, captureWest, captureEast, lastRank Bitboard
	var forward int
	if us == White {
		push1 = pawns.north() & empty
		push2 = (push1 & Rank3).north() & empty
		captureWest = pawns.northWest() & enemies
		captureEast = pawns.northEast() & enemies
		lastRank = Rank8
		forward = 8
	} else {
		push1 = pawns.south() & empty
		push2 = (push1 & Rank6).south() & empty
		captureWest = pawns.southWest() & enemies
		captureEast = pawns.southEast() & enemies
		lastRank = Rank1
		forward = -8
	}

	// Promotions count as tactical, so pushes onto the last rank are always
	// generated.
	for bb := push1 & lastRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-forward), to, NoPieceType)
	}
	if !tactical {
		for bb := push1 &^ lastRank; bb != 0; {
			to := bb.PopLSB()
			ml.Add(NewMove(Square(int(to)-forward), to, Pawn, NoPieceType))
		}
		for bb := push2; bb != 0; {
			to := bb.PopLSB()
			ml.Add(newMove(Square(int(to)-2*forward), to, Pawn, NoPieceType, NoPieceType, FlagDoublePush))
		}
	}

	// West captures step one file left, so the origin is one file right.
	for _, side := range [2]struct {
		targets Bitboard
		offset  int
	}{{captureWest, forward - 1}, {captureEast, forward + 1}} {
		for bb := side.targets; bb != 0; {
			to := bb.PopLSB()
			from := Square(int(to) - side.offset)
			captured := p.pieceTypeOf(them, SquareBB(to))
			if lastRank.IsSet(to) {
				addPromotions(ml, from, to, captured)
			} else {
				ml.Add(NewMove(from, to, Pawn, captured))
			}
		}
	}

	if p.EnPassant != NoSquare {
		attackers := pawnAttacks[them][p.EnPassant] & pawns
		for attackers != 0 {
			from := attackers.PopLSB()
			ml.Add(newMove(from, p.EnPassant, Pawn, Pawn, NoPieceType, FlagEnPassant))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, captured PieceType) {
	ml.Add(NewPromotion(from, to, captured, Queen))
	ml.Add(NewPromotion(from, to, captured, Rook))
	ml.Add(NewPromotion(from, to, captured, Bishop))
	ml.Add(NewPromotion(from, to, captured, Knight))
}

// castleSpec describes one castling option for one side.
type castleSpec struct {
	right      CastlingRights
	flag       MoveFlag
	kingFrom   Square
	kingTo     Square
	rookFrom   Square
	rookTo     Square
	mustBeFree Bitboard
	kingPath   [3]Square // start, transit, destination
}

var castleSpecs = [2][2]castleSpec{
	White: {
		{WhiteKingSideCastle, FlagCastleKing, E1, G1, H1, F1,
			SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
		{WhiteQueenSideCastle, FlagCastleQueen, E1, C1, A1, D1,
			SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
	},
	Black: {
		{BlackKingSideCastle, FlagCastleKing, E8, G8, H8, F8,
			SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
		{BlackQueenSideCastle, FlagCastleQueen, E8, C8, A8, D8,
			SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
	},
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	for i := range castleSpecs[us] {
		cs := &castleSpecs[us][i]
		if p.CastlingRights&cs.right == 0 ||
			p.AllOccupied&cs.mustBeFree != 0 ||
			p.KingSquare[us] != cs.kingFrom ||
			!p.Pieces[us][Rook].IsSet(cs.rookFrom) {
			continue
		}
		attacked := false
		for _, sq := range cs.kingPath {
			if p.IsSquareAttacked(sq, them) {
				attacked = true
				break
			}
		}
		if !attacked {
			ml.Add(newMove(cs.kingFrom, cs.kingTo, King, NoPieceType, NoPieceType, cs.flag))
		}
	}
}

// castleRookSquares returns the rook's start and end squares for a castling
// move by c.
func castleRookSquares(m Move, c Color) (Square, Square) {
	side := 0
	if MoveFlag(m)&FlagCastleQueen != 0 {
		side = 1
	}
	cs := &castleSpecs[c][side]
	return cs.rookFrom, cs.rookTo
}

// enPassantVictim returns the square of the pawn taken en passant when a pawn
// of color c lands on to.
func enPassantVictim(to Square, c Color) Square {
	if c == White {
		return to - 8
	}
	return to + 8
}

// MakeMove applies m in place and returns what UnmakeMove needs to revert
// it. m must come from the move generator for this position.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.SideToMove
	them := us.Other()
	from, to, pt := m.From(), m.To(), m.Piece()
	captured := m.Captured()

	undo := UndoInfo{
		Captured:       captured,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
	}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	if captured != NoPieceType {
		capSq := to
		if m.IsEnPassant() {
			capSq = enPassantVictim(to, us)
		}
		p.removePiece(them, captured, capSq)
	}

	if promo := m.Promotion(); promo != NoPieceType {
		p.removePiece(us, Pawn, from)
		p.addPiece(us, promo, to)
	} else {
		p.movePiece(us, pt, from, to)
	}

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m, us)
		p.movePiece(us, Rook, rookFrom, rookTo)
	}

	p.Hash ^= zobristCastling[p.CastlingRights]
	p.CastlingRights &= castlingMask[from] & castlingMask[to]
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.IsDoublePush() {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	if pt == Pawn || captured != NoPieceType {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.Hash ^= zobristSideToMove

	return undo
}

// UnmakeMove reverts m, which must be the last move applied with MakeMove.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.SideToMove.Other()
	them := p.SideToMove
	from, to := m.From(), m.To()

	p.SideToMove = us
	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m, us)
		p.movePiece(us, Rook, rookTo, rookFrom)
	}

	if promo := m.Promotion(); promo != NoPieceType {
		p.removePiece(us, promo, to)
		p.addPiece(us, Pawn, from)
	} else {
		p.movePiece(us, m.Piece(), to, from)
	}

	if undo.Captured != NoPieceType {
		capSq := to
		if m.IsEnPassant() {
			capSq = enPassantVictim(to, us)
		}
		p.addPiece(them, undo.Captured, capSq)
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
}

// ParseMove resolves a UCI move string against the legal moves.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			promo = Queen
		case 'r':
			promo = Rook
		case 'b':
			promo = Bishop
		case 'n':
			promo = Knight
		default:
			return NoMove, fmt.Errorf("%w: bad promotion piece in %q", ErrInvalidMove, s)
		}
	}

	moves := p.GenerateLegalMoves()
	for _, m := range moves.Slice() {
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, p.ToFEN())
}

// Status classifies a position for the side to move.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Status reports checkmate or stalemate when the side to move has no legal
// move, Ongoing otherwise.
func (p *Position) Status() Status {
	if p.HasLegalMoves() {
		return Ongoing
	}
	if p.InCheck() {
		return Checkmate
	}
	return Stalemate
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.generatePseudoLegal(&ml, false)
	us := p.SideToMove
	for _, m := range ml.Slice() {
		undo := p.MakeMove(m)
		legal := !p.IsSquareAttacked(p.KingSquare[us], us.Other())
		p.UnmakeMove(m, undo)
		if legal {
			return true
		}
	}
	return false
}

// IsFiftyMoveDraw reports whether a hundred plies passed without a capture
// or pawn move.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.HalfMoveClock >= 100
}

// IsInsufficientMaterial reports positions where neither side can mate:
// bare kings or king and one minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if p.Pieces[c][Pawn]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0 {
			return false
		}
	}
	minors := (p.Pieces[White][Knight] | p.Pieces[White][Bishop] |
		p.Pieces[Black][Knight] | p.Pieces[Black][Bishop]).PopCount()
	return minors <= 1
}
