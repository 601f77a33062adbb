package board

// Perft counts the leaf nodes reachable from pos at the given depth by
// exhaustive legal move generation. It is the standard move-generator
// correctness instrument (spec.md §8's perft acceptance table) and is
// exercised only from tests; there is no perft CLI or UCI command.
func Perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += Perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}
