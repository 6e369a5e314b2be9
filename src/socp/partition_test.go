package socp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPartitionConservation(t *testing.T) {
	cases := []struct {
		n      int
		pf, pl float64
	}{
		{1, 0.1, 0.3},
		{10, 0, 0},
		{100, 0.1, 0.3},
		{100, 0.33, 0.33},
		{500, 0.5, 0.25},
	}
	for _, tc := range cases {
		for seed := uint64(1); seed <= 5; seed++ {
			p, err := DeriveParams(tc.n, tc.pf, tc.pl)
			require.NoError(t, err)

			rnd := rand.New(rand.NewSource(seed))
			blocks := Partition(rnd, p.Remaining(), p.MaxBlock)

			total := 0
			for _, q := range blocks {
				require.GreaterOrEqual(t, q, 1)
				require.LessOrEqual(t, q, p.MaxBlock)
				total += q
			}
			require.Equal(t, p.Remaining(), total,
				"n=%d pf=%g pl=%g seed=%d", tc.n, tc.pf, tc.pl, seed)
		}
	}
}

func TestPartitionDeterminism(t *testing.T) {
	p, err := DeriveParams(200, 0.1, 0.3)
	require.NoError(t, err)

	first := Partition(rand.New(rand.NewSource(99)), p.Remaining(), p.MaxBlock)
	second := Partition(rand.New(rand.NewSource(99)), p.Remaining(), p.MaxBlock)
	require.Equal(t, first, second)

	other := Partition(rand.New(rand.NewSource(100)), p.Remaining(), p.MaxBlock)
	require.NotEqual(t, first, other)
}

func TestPartitionEmptyBudget(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	require.Empty(t, Partition(rnd, 0, 7))
}

func TestPartitionSingleTrailingBlock(t *testing.T) {
	// budget at or below the bound: the loop body never runs
	rnd := rand.New(rand.NewSource(1))
	require.Equal(t, []int{5}, Partition(rnd, 5, 7))
	require.Equal(t, []int{7}, Partition(rnd, 7, 7))
}

func TestBuildConeCoversAllRows(t *testing.T) {
	p, err := DeriveParams(100, 0.1, 0.3)
	require.NoError(t, err)

	k := BuildCone(rand.New(rand.NewSource(42)), p)
	require.NoError(t, k.Validate(p.RowsTotal))
	require.Equal(t, p.ZeroRows, k.Zero)
	require.Equal(t, p.LinearRows, k.Linear)
	require.Equal(t, p.Remaining(), k.SOCRows())
}

func TestBuildConeExhaustedBudget(t *testing.T) {
	p, err := DeriveParams(10, 0.5, 0.5)
	require.NoError(t, err)

	k := BuildCone(rand.New(rand.NewSource(3)), p)
	require.Empty(t, k.SOC)
	require.NoError(t, k.Validate(p.RowsTotal))
}

func TestCoalesce(t *testing.T) {
	merged := Coalesce([]int{1, 1, 2, 5}, 3)
	total := 0
	for _, q := range merged {
		total += q
		if len(merged) > 1 {
			require.GreaterOrEqual(t, q, 3)
		}
	}
	require.Equal(t, 9, total)
	require.Equal(t, []int{4, 5}, merged)
}

func TestCoalesceDownToSingleBlock(t *testing.T) {
	require.Equal(t, []int{4}, Coalesce([]int{1, 1, 2}, 100))
}

func TestCoalesceNoOp(t *testing.T) {
	blocks := []int{3, 4, 5}
	require.Equal(t, blocks, Coalesce(blocks, 1))
	require.Equal(t, []int{2}, Coalesce([]int{2}, 10))
}
