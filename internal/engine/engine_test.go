package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/kelp/internal/board"
)

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	limits := UCILimits{MoveTime: 500 * time.Millisecond}
	move := eng.SearchWithUCILimits(pos, limits, 0)

	assert.NotEqual(t, board.NoMove, move, "search should find a move from the starting position")
}

func TestSearchFixedDepth(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	limits := UCILimits{Depth: 6}
	move := eng.SearchWithUCILimits(pos, limits, 0)

	assert.NotEqual(t, board.NoMove, move)
}

// TestSearchAcrossPositions exercises opening, middlegame, and endgame
// positions with the same engine instance, verifying the transposition and
// pawn hash tables behave across distinct searches.
func TestSearchAcrossPositions(t *testing.T) {
	eng := NewEngine(16)

	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		require.NoError(t, err, "position %d", i)

		limits := UCILimits{Depth: 5, MoveTime: 300 * time.Millisecond}
		move := eng.SearchWithUCILimits(pos, limits, 0)

		if move == board.NoMove {
			legal := pos.GenerateLegalMoves()
			assert.Zero(t, legal.Len(), "position %d: NoMove returned despite legal moves existing", i)
			continue
		}
		t.Logf("position %d: best move = %s", i, move.String())
	}
}

func TestEngineStop(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	done := make(chan board.Move)
	go func() {
		limits := UCILimits{Infinite: true}
		done <- eng.SearchWithUCILimits(pos, limits, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	eng.Stop()

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("engine did not stop within 50ms of Stop()")
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1)
	pos := board.NewPosition()

	_, _, found := pt.Probe(pos.PawnKey)
	assert.False(t, found, "expected cache miss on first probe")

	pt.Store(pos.PawnKey, -15, -20)

	opening, endgame, found := pt.Probe(pos.PawnKey)
	require.True(t, found, "expected cache hit after store")
	assert.Equal(t, -15, opening)
	assert.Equal(t, -20, endgame)

	oldKey := pos.PawnKey
	move := board.NewMove(board.E2, board.E4)
	undo := pos.MakeMove(move)
	assert.NotEqual(t, oldKey, pos.PawnKey, "PawnKey should change when a pawn moves")

	pos.UnmakeMove(move, undo)
	assert.Equal(t, oldKey, pos.PawnKey, "PawnKey should be restored on unmake")
}

func TestTranspositionTableAlwaysReplace(t *testing.T) {
	tt := NewTranspositionTable(1)

	tt.Store(12345, 4, 100, TTExact, board.NewMove(board.E2, board.E4))
	entry, found := tt.Probe(12345)
	require.True(t, found)
	assert.Equal(t, int16(100), entry.Score)

	tt.Store(12345, 2, -50, TTUpperBound, board.NewMove(board.D2, board.D4))
	entry, found = tt.Probe(12345)
	require.True(t, found)
	assert.Equal(t, int16(-50), entry.Score, "Store always replaces the slot's previous occupant")
}

func TestTranspositionTableBulkClearOnCapacity(t *testing.T) {
	tt := NewTranspositionTable(1)
	size := tt.Size()

	for i := uint64(0); i < size; i++ {
		tt.Store(i, 1, 0, TTExact, board.NoMove)
	}
	assert.Equal(t, 1000, tt.HashFull(), "sanity: table reports completely full")

	// One more store beyond capacity triggers a bulk clear before writing.
	// That store lands in slot 0, so probe slot 1 for an earlier entry.
	tt.Store(size, 1, 7, TTExact, board.NoMove)
	_, found := tt.Probe(1)
	assert.False(t, found, "table should have been cleared, wiping earlier entries")
}
