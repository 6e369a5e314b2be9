package socp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const projTol = 1e-12

func TestProjectSOCInside(t *testing.T) {
	v := []float64{5, 3, 4} // |(3,4)| = 5 = t, on the boundary
	projectSOC(v)
	require.InDeltaSlice(t, []float64{5, 3, 4}, v, projTol)

	v = []float64{10, 3, 4}
	projectSOC(v)
	require.InDeltaSlice(t, []float64{10, 3, 4}, v, projTol)
}

func TestProjectSOCPolar(t *testing.T) {
	v := []float64{-10, 3, 4}
	projectSOC(v)
	require.InDeltaSlice(t, []float64{0, 0, 0}, v, projTol)
}

func TestProjectSOCOutside(t *testing.T) {
	v := []float64{0, 3, 4}
	projectSOC(v)
	// projection of (0, u): t = |u|/2, u halved
	require.InDeltaSlice(t, []float64{2.5, 1.5, 2}, v, projTol)
}

func TestProjectSOCSingleRow(t *testing.T) {
	v := []float64{-2}
	projectSOC(v)
	require.Equal(t, []float64{0}, v)

	v = []float64{2}
	projectSOC(v)
	require.Equal(t, []float64{2}, v)
}

func TestProjectConeSections(t *testing.T) {
	k := &Cone{Zero: 2, Linear: 2, SOC: []int{3}}
	v := []float64{1, -1, -2, 3, 0, 3, 4}
	projectCone(v, k)

	require.InDeltaSlice(t, []float64{0, 0}, v[:2], projTol)
	require.InDeltaSlice(t, []float64{0, 3}, v[2:4], projTol)
	require.InDeltaSlice(t, []float64{2.5, 1.5, 2}, v[4:], projTol)
	require.True(t, InCone(v, k, projTol))
}

func TestProjectConeIdempotent(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	k := &Cone{Zero: 3, Linear: 4, SOC: []int{1, 5, 2}}

	v := make([]float64, k.Rows())
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	projectCone(v, k)
	again := append([]float64(nil), v...)
	projectCone(again, k)
	require.InDeltaSlice(t, v, again, projTol)
}

// Moreau decomposition: s = Π(z) and y = s - z must satisfy s in K,
// y in K* and s'y = 0 for any z.
func TestProjectConeMoreau(t *testing.T) {
	rnd := rand.New(rand.NewSource(23))
	k := &Cone{Zero: 2, Linear: 5, SOC: []int{4, 1, 6}}

	for trial := 0; trial < 20; trial++ {
		z := make([]float64, k.Rows())
		for i := range z {
			z[i] = rnd.NormFloat64() * 3
		}
		s := append([]float64(nil), z...)
		projectCone(s, k)

		dot := 0.0
		y := make([]float64, len(z))
		for i := range y {
			y[i] = s[i] - z[i]
			dot += s[i] * y[i]
		}
		require.True(t, InCone(s, k, 1e-9))
		require.True(t, InDualCone(y, k, 1e-9))
		require.InDelta(t, 0, dot, 1e-9)
	}
}

func TestInConeRejects(t *testing.T) {
	k := &Cone{Zero: 1, Linear: 1, SOC: []int{2}}
	require.False(t, InCone([]float64{1, 0, 1, 0}, k, 1e-9))
	require.False(t, InCone([]float64{0, -1, 1, 0}, k, 1e-9))
	require.False(t, InCone([]float64{0, 0, 1, 2}, k, 1e-9))
	require.True(t, InCone([]float64{0, 0, 2, 1}, k, 1e-9))

	// dual cone leaves the zero rows unconstrained
	require.True(t, InDualCone([]float64{7, 0, 2, 1}, k, 1e-9))
	require.False(t, InDualCone([]float64{0, -1, 2, 1}, k, 1e-9))
}

func TestProjectSOCNorm(t *testing.T) {
	// projected point sits on the cone boundary when the input is
	// strictly outside both the cone and its polar
	v := []float64{1, -6, 8}
	projectSOC(v)
	norm := math.Hypot(v[1], v[2])
	require.InDelta(t, v[0], norm, 1e-12)
}
