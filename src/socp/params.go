package socp

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrFractionSum    = errors.New("socp: p_f + p_l exceeds 1.0")
	ErrBadFraction    = errors.New("socp: cone fractions must be nonnegative")
	ErrNonPositiveN   = errors.New("socp: variable count must be positive")
	ErrDegenerateSize = errors.New("socp: too few rows to size cone blocks")
)

// Params are the derived sizing parameters for a random instance with
// n variables and 3n constraint rows.
type Params struct {
	N          int
	RowsTotal  int
	ColNnz     int // nonzeros per column of A
	ZeroRows   int
	LinearRows int
	MaxBlock   int // upper bound on a second-order block size
}

// Remaining is the row budget left for second-order blocks.
func (p Params) Remaining() int {
	return p.RowsTotal - p.ZeroRows - p.LinearRows
}

// Nnz is the total nonzero count of A.
func (p Params) Nnz() int {
	return p.N * p.ColNnz
}

// DeriveParams turns the variable count and the zero/linear row
// fractions into concrete integer sizes:
//
//	rows_total = 3n
//	nnz_per_col = ceil(sqrt(n))
//	zero_rows = floor(rows_total * pf)
//	linear_rows = floor(rows_total * pl)
//	max_block = ceil(rows_total / ln(rows_total))
//
// The fraction sum is rejected before anything is derived. The
// computation is deterministic; randomness enters only in Partition.
func DeriveParams(n int, pf, pl float64) (Params, error) {
	if pf+pl > 1.0 {
		return Params{}, fmt.Errorf("%w: p_f=%g, p_l=%g", ErrFractionSum, pf, pl)
	}
	if pf < 0 || pl < 0 {
		return Params{}, fmt.Errorf("%w: p_f=%g, p_l=%g", ErrBadFraction, pf, pl)
	}
	if n < 1 {
		return Params{}, fmt.Errorf("%w: n=%d", ErrNonPositiveN, n)
	}
	rows := 3 * n
	if rows < 2 {
		// ln(rows) below needs rows > 1
		return Params{}, fmt.Errorf("%w: %d rows", ErrDegenerateSize, rows)
	}
	return Params{
		N:          n,
		RowsTotal:  rows,
		ColNnz:     int(math.Ceil(math.Sqrt(float64(n)))),
		ZeroRows:   int(math.Floor(float64(rows) * pf)),
		LinearRows: int(math.Floor(float64(rows) * pl)),
		MaxBlock:   int(math.Ceil(float64(rows) / math.Log(float64(rows)))),
	}, nil
}
