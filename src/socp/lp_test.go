package socp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// model construction is pure Go; the cgo Solve call is exercised only
// through the CLI cross-check.
func TestHighsModel(t *testing.T) {
	// 3 rows, 2 cols: one equality row, two inequality rows
	a := &Matrix{
		Rows:   3,
		Cols:   2,
		ColPtr: []int{0, 2, 4},
		RowIdx: []int{0, 1, 0, 2},
		Val:    []float64{1, -1, 2, 3},
	}
	prob := &Problem{
		A: a,
		B: mat.NewVecDense(3, []float64{4, 5, 6}),
		C: mat.NewVecDense(2, []float64{-1, 2}),
	}
	k := &Cone{Zero: 1, Linear: 2}

	lp, err := prob.HighsModel(k)
	require.NoError(t, err)

	require.False(t, lp.Maximize)
	require.Equal(t, []float64{-1, 2}, lp.ColCosts)
	for j := 0; j < 2; j++ {
		require.True(t, math.IsInf(lp.ColLower[j], -1))
		require.True(t, math.IsInf(lp.ColUpper[j], 1))
	}

	// equality row pinned to b, inequality rows one-sided
	require.Equal(t, 4.0, lp.RowLower[0])
	require.Equal(t, 4.0, lp.RowUpper[0])
	require.True(t, math.IsInf(lp.RowLower[1], -1))
	require.Equal(t, 5.0, lp.RowUpper[1])
	require.True(t, math.IsInf(lp.RowLower[2], -1))
	require.Equal(t, 6.0, lp.RowUpper[2])

	require.Len(t, lp.ConstMatrix, a.Nnz())
	for _, nz := range lp.ConstMatrix {
		require.InDelta(t, a.Dense().At(nz.Row, nz.Col), nz.Val, 0)
	}
}

func TestHighsModelRejectsSOC(t *testing.T) {
	prob, k := tinySOC()
	_, err := prob.HighsModel(k)
	require.ErrorIs(t, err, ErrSOCPresent)

	_, err = prob.CrossCheckHighs(k)
	require.ErrorIs(t, err, ErrSOCPresent)

	_, err = prob.CrossCheckGolp(k)
	require.ErrorIs(t, err, ErrSOCPresent)
}
