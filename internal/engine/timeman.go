// Time allocation per spec.md §5's
// "remaining_time / moves_to_go + increment − safety_margin" formula: one
// soft deadline (optimumTime) iterative deepening checks between
// iterations, and one hard deadline (maximumTime) that can cut off a
// search mid-iteration.
package engine

import (
	"time"

	"github.com/hailam/kelp/internal/board"
)

// UCILimits mirrors the fields a UCI "go" command can carry. Zero values
// mean "not specified" for every field except MovesToGo, where 0 means
// sudden death (no more time controls before the game ends).
type UCILimits struct {
	Time      [2]time.Duration // wtime/btime, indexed by board.Color
	Inc       [2]time.Duration // winc/binc, indexed by board.Color
	MovesToGo int
	MoveTime  time.Duration // "movetime N": fixed budget, skips all the allocation math below
	Depth     int
	Nodes     uint64
	Infinite  bool
	Ponder    bool
}

// TimeManager tracks one search's time budget: a target (optimumTime) the
// iterative-deepening loop stops extending past, and a ceiling
// (maximumTime) that forces a stop even mid-iteration.
type TimeManager struct {
	optimumTime time.Duration
	maximumTime time.Duration
	startTime   time.Time
}

func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

const (
	minMovesToGo           = 10
	maxMovesToGo            = 50
	earlyGamePlyThreshold   = 8
	earlyGameOptimumPercent = 85
	maximumFromOptimumMul   = 5
	maximumFromRemainingPct = 80
	hardSafetyMarginPct     = 95
	floorOptimum            = 10 * time.Millisecond
	floorMaximum            = 50 * time.Millisecond
)

// Init sets the budget for a fresh search. ply is the game's current
// half-move count, used only to taper the early-game allocation and to
// estimate moves-to-go under sudden death.
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if limits.Infinite || (limits.Time[us] == 0 && limits.MoveTime == 0) {
		// No real deadline: bound only by depth/node limits or an
		// explicit "stop", so give it a ceiling long enough to never
		// matter in practice.
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]
	mtg := estimateMovesToGo(limits.MovesToGo, ply)

	optimum := timeLeft/time.Duration(mtg) + inc*9/10
	if ply < earlyGamePlyThreshold {
		// Opening moves are cheaper to search well (smaller branching
		// factor feel from book-like lines); bank some of that time.
		optimum = optimum * earlyGameOptimumPercent / 100
	}

	tm.optimumTime = optimum
	tm.maximumTime = clampMaximum(optimum, timeLeft)

	if tm.optimumTime < floorOptimum {
		tm.optimumTime = floorOptimum
	}
	if tm.maximumTime < floorMaximum {
		tm.maximumTime = floorMaximum
	}
}

// estimateMovesToGo returns the time control's own value under a fixed
// schedule, or a game-phase estimate under sudden death: assume fewer
// moves remain as the game goes on, bounded to [minMovesToGo, maxMovesToGo].
func estimateMovesToGo(mtg, ply int) int {
	if mtg != 0 {
		return mtg
	}
	estimate := 50 - ply/4
	if estimate < minMovesToGo {
		return minMovesToGo
	}
	if estimate > maxMovesToGo {
		return maxMovesToGo
	}
	return estimate
}

// clampMaximum bounds the hard deadline to whichever is tighter: a
// multiple of the soft target, or a fraction of remaining time — then
// applies an absolute safety margin so a single move can never burn
// through nearly all the clock.
func clampMaximum(optimum, timeLeft time.Duration) time.Duration {
	fromOptimum := optimum * maximumFromOptimumMul
	fromRemaining := timeLeft * maximumFromRemainingPct / 100

	maximum := fromOptimum
	if fromRemaining < fromOptimum {
		maximum = fromRemaining
	}

	safetyMargin := timeLeft * hardSafetyMarginPct / 100
	if maximum > safetyMargin {
		maximum = safetyMargin
	}
	return maximum
}

func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop is the hard cutoff: once true the search must return its
// current best move even mid-iteration.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum is the soft cutoff iterative deepening consults between
// depths: once true, don't start another iteration.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

// stabilityDiscount maps consecutive same-best-move iterations to the
// percentage of the optimum budget still worth spending: a best move
// that hasn't moved in a while is unlikely to flip with more time.
func stabilityDiscount(stability int) int {
	switch {
	case stability >= 6:
		return 40
	case stability >= 4:
		return 60
	case stability >= 2:
		return 80
	default:
		return 100
	}
}

// AdjustForStability shrinks the optimum target once the best move has
// held steady across several iterations, so a won or clearly-best
// position doesn't keep burning clock for no gain.
func (tm *TimeManager) AdjustForStability(stability int) {
	pct := stabilityDiscount(stability)
	if pct < 100 {
		tm.optimumTime = tm.optimumTime * time.Duration(pct) / 100
	}
}

// instabilityMultiplier is AdjustForStability's mirror image: a best
// move that keeps flipping between iterations means the position is
// sharp enough to deserve extra time, capped at the hard maximum.
func instabilityMultiplier(changes int) int {
	switch {
	case changes >= 4:
		return 200
	case changes >= 2:
		return 150
	default:
		return 100
	}
}

// AdjustForInstability extends the optimum target when recent iterations
// keep disagreeing on the best move, never past the hard maximum.
func (tm *TimeManager) AdjustForInstability(changes int) {
	pct := instabilityMultiplier(changes)
	if pct <= 100 {
		return
	}
	tm.optimumTime = tm.optimumTime * time.Duration(pct) / 100
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}
