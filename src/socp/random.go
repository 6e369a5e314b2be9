package socp

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateFeasible constructs a random sparse instance over cone k
// together with a known optimal primal/dual pair. Every column of A
// gets colNnz standard-normal entries at distinct rows. The
// certificate comes from projecting a random point z onto the cone:
// with s = Π(z) and y = s - z, Moreau gives s in K, y in K* and
// s'y = 0, so b = A x + s and c = -Aᵀ y make (x, y, s) optimal with
// c'x = -b'y.
func GenerateFeasible(rnd *rand.Rand, n, colNnz int, k *Cone) (*Problem, *Solution, error) {
	m := k.Rows()
	if err := k.Validate(m); err != nil {
		return nil, nil, err
	}
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: n=%d", ErrNonPositiveN, n)
	}
	if colNnz < 1 || colNnz > m {
		return nil, nil, fmt.Errorf("%w: %d nonzeros per column in %d rows", ErrDegenerateSize, colNnz, m)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rnd}

	z := make([]float64, m)
	for i := range z {
		z[i] = normal.Rand()
	}
	s := append([]float64(nil), z...)
	projectCone(s, k)
	y := make([]float64, m)
	for i := range y {
		y[i] = s[i] - z[i]
	}

	x := make([]float64, n)
	for j := range x {
		x[j] = normal.Rand()
	}

	a := &Matrix{
		Rows:   m,
		Cols:   n,
		ColPtr: make([]int, n+1),
		RowIdx: make([]int, 0, n*colNnz),
		Val:    make([]float64, 0, n*colNnz),
	}
	for j := 0; j < n; j++ {
		rows := rnd.Perm(m)[:colNnz]
		sort.Ints(rows)
		for _, i := range rows {
			a.RowIdx = append(a.RowIdx, i)
			a.Val = append(a.Val, normal.Rand())
		}
		a.ColPtr[j+1] = len(a.Val)
	}

	xv := mat.NewVecDense(n, x)
	yv := mat.NewVecDense(m, y)
	sv := mat.NewVecDense(m, s)

	b := mat.NewVecDense(m, nil)
	a.MulVec(b, xv)
	b.AddVec(b, sv)

	c := mat.NewVecDense(n, nil)
	a.MulTransVec(c, yv)
	c.ScaleVec(-1, c)

	return &Problem{A: a, B: b, C: c}, &Solution{X: xv, Y: yv, S: sv}, nil
}
