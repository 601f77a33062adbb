package engine

import (
	"github.com/hailam/kelp/internal/board"
)

// Move ordering priorities, in descending search-first order.
const (
	PVMoveScore  = 20000
	CaptureBase  = 10000
	KillerScore1 = 9000
	KillerScore2 = 8000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) table.
// Rows are the victim's piece type, columns the attacker's; victim value
// dominates so any capture outscores a non-capture of equal depth, and a
// pawn-takes-queen always outscores a queen-takes-pawn.
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer holds the per-search ordering state: killer moves at each ply
// and a quiet-move history table indexed by the moving piece and target
// square (not by from/to, per the moving piece's identity generalizing
// across the squares it started from).
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [12][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages the history table for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns ordering scores to every move in the list. pvMove is
// the move to try first at this node (the followed PV move, or the TT
// best move when PV following isn't active here); pass board.NoMove if
// there isn't one.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, pvMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, pvMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, pvMove board.Move) int {
	if m == pvMove {
		return PVMoveScore
	}

	from := m.From()
	to := m.To()

	if m.IsCapture(pos) {
		attackerPiece := pos.PieceAt(from)
		if attackerPiece == board.NoPiece {
			return CaptureBase
		}
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			capturedPiece := pos.PieceAt(to)
			if capturedPiece == board.NoPiece {
				return CaptureBase
			}
			victim = capturedPiece.Type()
		}

		if victim >= board.King || attacker > board.King {
			return CaptureBase
		}

		return CaptureBase + mvvLva[victim][attacker]
	}

	if m == mo.killers[ply][0] {
		return KillerScore1
	}
	if m == mo.killers[ply][1] {
		return KillerScore2
	}

	movedPiece := pos.PieceAt(from)
	if movedPiece == board.NoPiece {
		return 0
	}
	return mo.history[movedPiece][to]
}

// SortMoves sorts moves by their scores (descending). Sufficient for the
// handful of dozens of moves a chess position ever generates.
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best remaining move and moves it to position index,
// so the caller only pays for as much sorting as it actually consumes.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory updates the history score for a quiet move that produced a
// cutoff, indexed by the moving piece and its destination square.
func (mo *MoveOrderer) UpdateHistory(pos *board.Position, m board.Move, depth int) {
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return
	}
	to := m.To()

	mo.history[piece][to] += depth * depth
	if mo.history[piece][to] > 400000 {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
