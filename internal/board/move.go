package board

// Move packs everything needed to apply and revert a move into 32 bits:
//
//	bits  0-5   from square
//	bits  6-11  to square
//	bits 12-14  moved piece type
//	bits 15-17  captured piece type (NoPieceType if none)
//	bits 18-20  promotion piece type (NoPieceType if none)
//	bits 21-24  flags
type Move uint32

// MoveFlag marks the special moves.
type MoveFlag uint32

const (
	FlagDoublePush  MoveFlag = 1 << 21
	FlagEnPassant   MoveFlag = 1 << 22
	FlagCastleKing  MoveFlag = 1 << 23
	FlagCastleQueen MoveFlag = 1 << 24

	flagMask = FlagDoublePush | FlagEnPassant | FlagCastleKing | FlagCastleQueen
)

// NoMove is the null move; it prints as "0000".
const NoMove Move = 0

func newMove(from, to Square, piece, captured, promo PieceType, flags MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(piece)<<12 | Move(captured)<<15 |
		Move(promo)<<18 | Move(flags)
}

// NewMove creates a move without promotion or special flags.
func NewMove(from, to Square, piece, captured PieceType) Move {
	return newMove(from, to, piece, captured, NoPieceType, 0)
}

// NewPromotion creates a pawn move onto the last rank.
func NewPromotion(from, to Square, captured, promo PieceType) Move {
	return newMove(from, to, Pawn, captured, promo, 0)
}

func (m Move) From() Square {
	return Square(m & 0x3F)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Piece returns the type of the moving piece.
func (m Move) Piece() PieceType {
	return PieceType((m >> 12) & 7)
}

// Captured returns the type of the captured piece, NoPieceType if none.
func (m Move) Captured() PieceType {
	return PieceType((m >> 15) & 7)
}

// Promotion returns the promotion piece type, NoPieceType if none.
func (m Move) Promotion() PieceType {
	return PieceType((m >> 18) & 7)
}

func (m Move) Flags() MoveFlag {
	return MoveFlag(m) & flagMask
}

func (m Move) IsCapture() bool {
	return m.Captured() != NoPieceType
}

func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

func (m Move) IsEnPassant() bool {
	return MoveFlag(m)&FlagEnPassant != 0
}

func (m Move) IsDoublePush() bool {
	return MoveFlag(m)&FlagDoublePush != 0
}

func (m Move) IsCastling() bool {
	return MoveFlag(m)&(FlagCastleKing|FlagCastleQueen) != 0
}

// IsQuiet reports whether the move neither captures nor promotes.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String returns the move in UCI notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MoveList is a fixed-capacity move buffer that avoids heap allocation.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends m.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo carries the state MakeMove cannot recompute on the way back.
type UndoInfo struct {
	Captured       PieceType
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
}
