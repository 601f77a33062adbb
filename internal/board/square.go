// Package board implements the bitboard-based position representation,
// move generation, and Zobrist hashing that the rest of kelp's search and
// evaluation code builds on.
package board

import "fmt"

// Square indexes one of the 64 squares using Little-Endian Rank-File
// Mapping: index = rank*8 + file, so A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File is the low 3 bits: 0=a ... 7=h.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank is the remaining bits: 0=rank 1 ... 7=rank 8.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// NewSquare builds a Square from 0-indexed file/rank coordinates, the
// inverse of File()/Rank().
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// String renders algebraic notation ("e4"); NoSquare (and anything beyond
// it) renders as "-", matching FEN's en-passant-less convention.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare is String's inverse.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror flips a square across the board's horizontal midline, turning a
// White-relative square into its Black-relative counterpart (used by
// mirrored piece-square tables).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeRank counts ranks from c's own back rank rather than from
// White's rank 1, so pawn-advancement logic stays color-agnostic.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}
