package engine

import (
	"sync/atomic"

	"github.com/hailam/kelp/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateValue = 49000 // a root-relative "just mated" score
	MateScore = 48000 // magnitude above which a score encodes a forced mate
	MaxPly    = 128
)

// nullMoveReduction is the depth reduction (R) applied by null-move pruning.
const nullMoveReduction = 2

// repetitionStackCap bounds the repetition history; real games stay well
// under it, and a linear scan over 128 entries is negligible.
const repetitionStackCap = 128

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the iterative-deepening alpha-beta search for a single
// position. It owns the PV table, killer/history tables, the repetition
// stack, and the undo stack for the duration of a search; the
// transposition table is supplied by the caller so it can persist across
// searches and games, and the pawn hash table is created by NewSearcher and
// lives as long as the Searcher.
type Searcher struct {
	pos       *board.Position
	tt        *TranspositionTable
	pawnTable *PawnTable
	orderer   *MoveOrderer

	nodes    uint64
	stopFlag atomic.Bool

	pv PVTable

	// prevPV is the principal variation completed by the last finished
	// SearchDepth call. Each new iteration seeds its root negamax call
	// with follow_pv=true as long as prevPV is non-empty (spec.md §4.G's
	// negamax(..., ply=0, follow_pv=true)), so the line iterative
	// deepening already trusts gets tried first at every ply along it,
	// not just wherever the transposition table happens to agree.
	prevPV PVTable

	undoStack [MaxPly]board.UndoInfo

	repStack     [repetitionStackCap]uint64
	repCount     int
	rootRepCount int
}

// NewSearcher creates a new searcher sharing the given transposition table.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:        tt,
		pawnTable: NewPawnTable(1),
		orderer:   NewMoveOrderer(),
	}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped reports whether the search has been asked to stop.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset clears the node count and the follow_pv seed, resets the killer
// moves and halves the history scores for a brand new search (called once before an iterative-deepening run,
// not between depths — SearchDepth reseeds prevPV from each completed
// iteration on its own).
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
	s.prevPV = PVTable{}
}

// ClearOrderer resets the killer moves and halves the history scores, e.g.
// on `ucinewgame`.
func (s *Searcher) ClearOrderer() {
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SetRootHistory preloads the repetition stack with the hashes of
// positions reached earlier in the game (fed via UCI `position ... moves`),
// so repetitions that span the search root are still detected.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	n := len(hashes)
	if n > repetitionStackCap {
		hashes = hashes[n-repetitionStackCap:]
		n = repetitionStackCap
	}
	copy(s.repStack[:], hashes)
	s.rootRepCount = n
	s.repCount = n
}

func (s *Searcher) pushRepetition(hash uint64) {
	if s.repCount < repetitionStackCap {
		s.repStack[s.repCount] = hash
		s.repCount++
	}
}

func (s *Searcher) popRepetition() {
	if s.repCount > 0 {
		s.repCount--
	}
}

func (s *Searcher) isRepeat(hash uint64) bool {
	for i := 0; i < s.repCount; i++ {
		if s.repStack[i] == hash {
			return true
		}
	}
	return false
}

// InitSearch binds the searcher to a new root position. It resets the
// repetition stack back to the preloaded root history and clears the stop
// flag, but leaves the node count and killer/history tables intact — call
// Reset() once beforehand to start a genuinely fresh search.
func (s *Searcher) InitSearch(pos *board.Position) {
	s.pos = pos.Copy()
	s.repCount = s.rootRepCount
	s.stopFlag.Store(false)
}

// SearchDepth runs negamax at a single depth from the bound root position
// and returns the best move and its score, within the given aspiration
// window.
func (s *Searcher) SearchDepth(depth, alpha, beta int) (board.Move, int) {
	followPV := s.prevPV.length[0] > 0
	score := s.negamax(depth, 0, alpha, beta, followPV)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}
	// Seed the next iteration's follow_pv walk with the line this one
	// just completed.
	s.prevPV = s.pv
	return bestMove, score
}

// Search runs a single fixed-depth search from scratch (used by tests and
// anywhere a full iterative-deepening driver isn't needed).
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.InitSearch(pos)
	return s.SearchDepth(depth, -Infinity, Infinity)
}

// negamax implements alpha-beta search with null-move pruning, principal
// variation search, and late move reductions, returning a score from the
// side-to-move's perspective. followPV is true only while this call is
// still walking the previous iteration's principal variation move by
// move; it is cleared the instant a node's chosen move diverges from
// that line, per spec.md §4.G.
func (s *Searcher) negamax(depth, ply, alpha, beta int, followPV bool) int {
	if s.nodes&2047 == 0 && s.stopFlag.Load() {
		return 0
	}

	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isRepeat(s.pos.Hash) {
		return 0
	}
	if s.pos.HalfMoveClock >= 100 {
		return 0
	}

	isPVNode := beta-alpha > 1

	// seedMove is the move that keeps this branch on the previous
	// iteration's PV; pvMove is just the move-ordering hint and falls
	// back to the TT's best move when we're not (or no longer) following.
	var pvMove, seedMove board.Move
	if followPV && ply < s.prevPV.length[0] {
		seedMove = s.prevPV.moves[0][ply]
		pvMove = seedMove
	}

	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		if pvMove == board.NoMove {
			pvMove = ttEntry.BestMove
		}
		if int(ttEntry.Depth) >= depth && ply != 0 && !isPVNode {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return beta
				}
			case TTUpperBound:
				if score <= alpha {
					return alpha
				}
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(alpha, beta, ply+1)
	}
	if ply >= MaxPly-1 {
		return EvaluateWithPawnTable(s.pos, s.pawnTable)
	}

	inCheck := s.pos.InCheck()
	if inCheck {
		depth++
	}

	if depth >= 3 && !inCheck && ply != 0 {
		s.pushRepetition(s.pos.Hash)
		nullUndo := s.pos.MakeNullMove()
		score := -s.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1, false)
		s.pos.UnmakeNullMove(nullUndo)
		s.popRepetition()

		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, beta, TTLowerBound, board.NoMove)
			return beta
		}
	}

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateValue + ply
		}
		return 0
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, pvMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	legalMoves := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		isQuiet := !move.IsCapture(s.pos) && !move.IsPromotion()

		s.pushRepetition(s.pos.Hash)
		s.undoStack[ply] = s.pos.MakeMove(move)
		if !s.undoStack[ply].Valid {
			s.pos.UnmakeMove(move, s.undoStack[ply])
			s.popRepetition()
			continue
		}
		legalMoves++

		childFollowPV := followPV && seedMove != board.NoMove && move == seedMove

		var score int
		if legalMoves == 1 {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, childFollowPV)
		} else {
			if legalMoves >= 4 && depth >= 3 && !inCheck && isQuiet {
				score = -s.negamax(depth-2, ply+1, -alpha-1, -alpha, false)
			} else {
				score = alpha + 1
			}
			if score > alpha {
				score = -s.negamax(depth-1, ply+1, -alpha-1, -alpha, false)
				if score > alpha && score < beta {
					score = -s.negamax(depth-1, ply+1, -beta, -alpha, childFollowPV)
				}
			}
		}

		s.pos.UnmakeMove(move, s.undoStack[ply])
		s.popRepetition()

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}

			if score >= beta {
				if isQuiet {
					s.orderer.UpdateKillers(move, ply)
					s.orderer.UpdateHistory(s.pos, move, depth)
				}
				s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)
				return score
			}
		}
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// quiescence searches only captures (and promotions) past the nominal
// horizon to avoid the horizon effect.
func (s *Searcher) quiescence(alpha, beta, ply int) int {
	if s.nodes&2047 == 0 && s.stopFlag.Load() {
		return 0
	}
	if ply >= MaxPly-1 {
		return EvaluateWithPawnTable(s.pos, s.pawnTable)
	}

	s.nodes++

	standPat := EvaluateWithPawnTable(s.pos, s.pawnTable)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	// Delta pruning: a position hopelessly behind even the best possible
	// capture isn't worth searching further.
	if standPat+QueenValue < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !s.pos.InCheck() {
			var captureValue int
			if move.IsEnPassant() {
				captureValue = PawnValue
			} else if captured := s.pos.PieceAt(move.To()); captured != board.NoPiece {
				captureValue = pieceValues[captured.Type()]
			}
			if move.IsPromotion() {
				captureValue += QueenValue - PawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			s.pos.UnmakeMove(move, undo)
			continue
		}

		score := -s.quiescence(-beta, -alpha, ply+1)
		s.pos.UnmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}
