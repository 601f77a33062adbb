package engine

import (
	"time"

	"github.com/hailam/kelp/internal/board"
	"github.com/hailam/kelp/internal/enginelog"
)

var log = enginelog.For("engine")

// SearchInfo reports progress of an in-flight search, emitted once per
// completed iterative-deepening depth.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Engine is the single-threaded chess search engine: one Searcher, one
// transposition table, one pawn hash table, driven by iterative deepening
// with aspiration windows and a UCI-style time manager.
type Engine struct {
	tt       *TranspositionTable
	searcher *Searcher

	rootPosHashes []uint64

	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table
// size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		tt:       tt,
		searcher: NewSearcher(tt),
	}
}

// SetPositionHistory sets the position history for repetition detection.
// Call before Search with hashes from the game's move history so
// repetitions spanning the search root are still found.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)
	e.searcher.SetRootHistory(hashes)
}

// SearchWithUCILimits finds the best move using UCI time controls,
// supporting wtime/btime/winc/binc or a fixed movetime/depth/infinite
// search, reporting progress through OnInfo after every completed depth.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply)

	e.searcher.Reset()
	e.tt.NewSearch()
	e.searcher.InitSearch(pos)

	// The hard deadline raises the stop flag even mid-iteration.
	deadline := time.AfterFunc(tm.MaximumTime(), e.searcher.Stop)
	defer deadline.Stop()

	startTime := time.Now()

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	log.Debugf("search start: depth=%d movetime=%s wtime=%s btime=%s", limits.Depth, limits.MoveTime, limits.Time[0], limits.Time[1])

	var bestMove board.Move
	var bestScore int
	var lastBestMove board.Move
	var stabilityCount int

	alpha, beta := -Infinity, Infinity

	for depth := 1; depth <= maxDepth; depth++ {
		move, score := e.searcher.SearchDepth(depth, alpha, beta)

		if e.searcher.IsStopped() {
			break
		}

		if score <= alpha || score >= beta {
			// Aspiration fail: re-search this depth with the full window.
			alpha, beta = -Infinity, Infinity
			move, score = e.searcher.SearchDepth(depth, alpha, beta)
			if e.searcher.IsStopped() {
				break
			}
		}

		if move != board.NoMove {
			if move == lastBestMove {
				stabilityCount++
			} else {
				stabilityCount = 0
			}
			lastBestMove = move
			bestMove = move
			bestScore = score

			if e.OnInfo != nil {
				e.OnInfo(SearchInfo{
					Depth:    depth,
					Score:    bestScore,
					Nodes:    e.searcher.Nodes(),
					Time:     time.Since(startTime),
					PV:       e.searcher.GetPV(),
					HashFull: e.tt.HashFull(),
				})
			}
		}

		const asp = 50
		alpha, beta = score-asp, score+asp

		if bestScore > MateScore-100 || bestScore < -MateScore+100 {
			break
		}

		if tm.ShouldStop() {
			break
		}
		if limits.Nodes > 0 && e.searcher.Nodes() >= limits.Nodes {
			break
		}
		if tm.PastOptimum() {
			break
		}

		tm.AdjustForStability(stabilityCount)
	}

	e.searcher.Stop()
	if bestMove == board.NoMove {
		log.Warningf("search returned no move for position %x", pos.Hash)
	}
	return bestMove
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear empties the transposition table, resets the killer moves and halves
// the history scores, e.g. on `ucinewgame`.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateValue - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateValue + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// itoa avoids pulling in strconv for a single integer-to-string path used
// only by the human-readable score formatter.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
