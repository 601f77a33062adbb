package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/kelp/internal/board"
)

// TestSearchFindsScholarMate verifies a root position already checkmated by
// Scholar's mate (Qxf7#) is reported as a mate score, not a
// large-but-finite centipawn score.
func TestSearchFindsScholarMate(t *testing.T) {
	pos, err := board.ParseFEN("r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4")
	require.NoError(t, err)

	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.InitSearch(pos)

	score := s.negamax(2, 0, -Infinity, Infinity, false)
	assert.Equal(t, -MateValue, score, "black is mated; score should be exactly -MateValue at ply 0")
}

// TestSearchDetectsStalemate verifies a stalemated side scores exactly 0.
func TestSearchDetectsStalemate(t *testing.T) {
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.InitSearch(pos)

	score := s.negamax(1, 0, -Infinity, Infinity, false)
	assert.Equal(t, 0, score)
}

// TestAspirationFallback verifies SearchWithUCILimits still returns a legal
// move when an aspiration window fails (forcing a full-window re-search),
// by starting from a position whose score swings wildly between depths.
func TestAspirationFallback(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	eng := NewEngine(16)
	move := eng.SearchWithUCILimits(pos, UCILimits{Depth: 5}, 0)

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == move {
			found = true
			break
		}
	}
	assert.True(t, found, "search must return a move legal in the searched position")
}

// TestStopResponsiveness verifies the search honors Stop() within a bounded
// time even mid-iteration, per spec's stop-responsiveness property.
func TestStopResponsiveness(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	done := make(chan struct{})
	go func() {
		eng.SearchWithUCILimits(pos, UCILimits{Infinite: true}, 0)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	eng.Stop()

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Error("expected search goroutine to observe Stop() within 50ms")
	}
}
