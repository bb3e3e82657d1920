package board

import "sort"

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	ml := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for _, m := range ml.Slice() {
		undo := p.MakeMove(m)
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide runs perft below each root move, sorted by move text.
func (p *Position) Divide(depth int) []DivideEntry {
	if depth < 1 {
		return nil
	}
	ml := p.GenerateLegalMoves()
	out := make([]DivideEntry, 0, ml.Len())
	for _, m := range ml.Slice() {
		undo := p.MakeMove(m)
		out = append(out, DivideEntry{Move: m, Nodes: p.Perft(depth - 1)})
		p.UnmakeMove(m, undo)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Move.String() < out[j].Move.String()
	})
	return out
}
