package board

// Perft counts the leaf positions of the legal-move tree after exactly depth
// plies. It is the ground-truth oracle for the generator: every generation or
// make/undo defect shows up as a wrong count.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var ml MoveList
	p.LegalMoves(&ml, false)
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		p.MakeMove(ml.Get(i))
		nodes += Perft(p, depth-1)
		p.UndoMove()
	}
	return nodes
}

// DivideEntry is the per-root-move node count of a divide perft.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide returns the node count below each root move plus the total.
func PerftDivide(p *Position, depth int) ([]DivideEntry, uint64) {
	var ml MoveList
	p.LegalMoves(&ml, false)

	entries := make([]DivideEntry, 0, ml.Len())
	var total uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		p.MakeMove(m)
		nodes := Perft(p, depth-1)
		p.UndoMove()
		entries = append(entries, DivideEntry{Move: m, Nodes: nodes})
		total += nodes
	}
	return entries, total
}
