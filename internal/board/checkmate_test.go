package board

import "testing"

// terminalCase exercises Position's terminal-state detectors
// (IsCheckmate/IsStalemate/InCheck) against a single FEN.
type terminalCase struct {
	name       string
	fen        string
	inCheck    bool
	checkmate  bool
	stalemate  bool
	legalMoves int // -1 skips the exact-count assertion
}

func runTerminalCases(t *testing.T, cases []terminalCase) {
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
			}
			pos.UpdateCheckers()

			if got := pos.InCheck(); got != tc.inCheck {
				t.Errorf("InCheck() = %v, want %v", got, tc.inCheck)
			}
			if got := pos.IsCheckmate(); got != tc.checkmate {
				t.Errorf("IsCheckmate() = %v, want %v", got, tc.checkmate)
			}
			if got := pos.IsStalemate(); got != tc.stalemate {
				t.Errorf("IsStalemate() = %v, want %v", got, tc.stalemate)
			}
			if tc.legalMoves >= 0 {
				if got := pos.GenerateLegalMoves().Len(); got != tc.legalMoves {
					t.Errorf("legal move count = %d, want %d", got, tc.legalMoves)
				}
			}
		})
	}
}

// TestBackRankMate covers the canonical back-rank checkmate and its near
// misses: one where the king can step aside, and one where a friendly
// pawn opens an escape square.
func TestBackRankMate(t *testing.T) {
	runTerminalCases(t, []terminalCase{
		{
			name:      "rook seals the back rank, pawns trap the king",
			fen:       "R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
			inCheck:   true,
			checkmate: true,
			stalemate: false,
		},
		{
			name:       "king captures the checking rook",
			fen:        "6Rk/8/8/8/8/8/8/K7 b - - 0 1",
			inCheck:    true,
			checkmate:  false,
			stalemate:  false,
			legalMoves: 2,
		},
		{
			name:       "h7 pawn has already moved, king has an escape square",
			fen:        "R6k/6p1/7p/8/8/8/8/K7 b - - 0 1",
			inCheck:    true,
			checkmate:  false,
			stalemate:  false,
			legalMoves: 1,
		},
	})
}

// TestSmotheredMate is the knight-delivered mate where the king is boxed
// in entirely by its own pieces, per spec.md's checkmate-detection
// acceptance cases.
func TestSmotheredMate(t *testing.T) {
	runTerminalCases(t, []terminalCase{
		{
			name:      "knight on f7 mates a king smothered by its own rook/pawns",
			fen:       "6rk/5Npp/8/8/8/8/8/6K1 b - - 0 1",
			inCheck:   true,
			checkmate: true,
			stalemate: false,
		},
	})
}

// TestStalemateNotCheckmate verifies the side to move with zero legal
// moves while NOT in check is scored as stalemate, never checkmate — the
// distinction negamax's terminal-node scoring (draw vs. mate) depends on.
func TestStalemateNotCheckmate(t *testing.T) {
	runTerminalCases(t, []terminalCase{
		{
			name:      "king boxed in by the queen alone, not in check",
			fen:       "k7/8/1Q6/8/8/8/8/7K b - - 0 1",
			inCheck:   false,
			checkmate: false,
			stalemate: true,
		},
		{
			name:       "same idea but in check, with king-side squares free: not stalemate",
			fen:        "1Q5k/8/8/8/8/8/8/7K b - - 0 1",
			inCheck:    true,
			checkmate:  false,
			stalemate:  false,
			legalMoves: 2,
		},
	})
}

// TestCheckWithLegalReplies covers an ordinary in-check position that is
// neither checkmate nor stalemate: the side to move is in check, yet the
// detectors must report neither mate nor stalemate because king steps and
// the knight's interposition remain available.
func TestCheckWithLegalReplies(t *testing.T) {
	runTerminalCases(t, []terminalCase{
		{
			name:       "queen check along the back rank, king and knight both have outs",
			fen:        "4k3/8/8/8/8/8/4N3/4K2q w - - 0 1",
			inCheck:    true,
			checkmate:  false,
			stalemate:  false,
			legalMoves: -1,
		},
	})
}
