package socp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimensionMismatch = errors.New("socp: problem and cone dimensions disagree")
	ErrFactorization     = errors.New("socp: normal matrix factorization failed")
)

const (
	ruizIters     = 10
	minScale      = 1e-6
	maxScale      = 1e6
	cgFloorTol    = 1e-12
	printInterval = 100
)

// Solve runs ADMM on minimize c'x subject to Ax + s = b, s in K.
// Each iteration solves the regularized normal equations
//
//	(ρₓI + AᵀA) x = ρₓ x + Aᵀ(b - s - y) - c
//
// then over-relaxes Ax, projects the slack onto the cone and takes the
// dual step; by Moreau the dual iterate always lands in K*. With
// set.WarmStart the iterates start from init instead of zero. A nil
// set means DefaultSettings.
func Solve(prob *Problem, k *Cone, set *Settings, init *Solution) (*Solution, *Info, error) {
	if set == nil {
		set = DefaultSettings()
	}
	m, n := prob.A.Rows, prob.A.Cols
	if k.Rows() != m || prob.B.Len() != m || prob.C.Len() != n {
		return nil, nil, fmt.Errorf("%w: A is %dx%d, cone covers %d rows", ErrDimensionMismatch, m, n, k.Rows())
	}
	if err := k.Validate(m); err != nil {
		return nil, nil, err
	}

	setupStart := time.Now()

	// Equilibration scalings; identity when normalization is off.
	d := ones(m)
	e := ones(n)
	a := prob.A
	if set.Normalize {
		equilibrate(prob.A, k, d, e, set.RescaleFactor)
		a = prob.A.scaledCopy(d, e)
	}
	b := make([]float64, m)
	for i := range b {
		b[i] = prob.B.AtVec(i) * d[i]
	}
	c := make([]float64, n)
	for j := range c {
		c[j] = prob.C.AtVec(j) * e[j]
	}

	rhoX := set.EqualityScaling
	var lin linearSolver
	if set.UseIndirect {
		lin = newCGSolver(a, rhoX, set.CGRate)
	} else {
		direct, err := newCholSolver(a, rhoX)
		if err != nil {
			return nil, nil, err
		}
		lin = direct
	}

	info := &Info{Status: MaxIterationsReached, Iterations: set.MaxIterations}
	info.SetupTime = time.Since(setupStart)

	x := make([]float64, n)
	y := make([]float64, m)
	s := make([]float64, m)
	if set.WarmStart && init != nil {
		for j := range x {
			x[j] = init.X.AtVec(j) / e[j]
		}
		for i := range y {
			y[i] = init.Y.AtVec(i) / d[i]
		}
		for i := range s {
			s[i] = init.S.AtVec(i) * d[i]
		}
	}

	bnorm := 1 + floats.Norm(b, 2)
	cnorm := 1 + floats.Norm(c, 2)

	rhs := make([]float64, n)
	w := make([]float64, m)
	tmpM := make([]float64, m)
	tmpN := make([]float64, n)

	solveStart := time.Now()
	for iter := 1; iter <= set.MaxIterations; iter++ {
		for i := range tmpM {
			tmpM[i] = b[i] - s[i] - y[i]
		}
		mulTrans(a, rhs, tmpM)
		for j := range rhs {
			rhs[j] += rhoX*x[j] - c[j]
		}
		lin.solve(x, rhs, iter)

		mul(a, w, x)

		alpha := set.Relaxation
		for i := range w {
			wi := alpha*w[i] + (1-alpha)*(b[i]-s[i])
			t := b[i] - wi - y[i]
			tmpM[i] = t
			s[i] = t
		}
		projectCone(s, k)
		for i := range y {
			// y + ŵ + s - b collapses to s - t
			y[i] = s[i] - tmpM[i]
		}

		pres := 0.0
		for i := range w {
			r := w[i] + s[i] - b[i]
			pres += r * r
		}
		pres = math.Sqrt(pres) / bnorm

		mulTrans(a, tmpN, y)
		dres := 0.0
		for j := range tmpN {
			r := tmpN[j] + c[j]
			dres += r * r
		}
		dres = math.Sqrt(dres) / cnorm

		pobj := floats.Dot(c, x)
		dobj := -floats.Dot(b, y)
		gap := math.Abs(pobj-dobj) / (1 + math.Abs(pobj) + math.Abs(dobj))

		if set.Verbose && (iter == 1 || iter%printInterval == 0) {
			fmt.Printf("%6d| pri res: %.2e, dua res: %.2e, rel gap: %.2e\n", iter, pres, dres, gap)
		}
		if pres < set.Tolerance && dres < set.Tolerance && gap < set.Tolerance {
			info.Status = Solved
			info.Iterations = iter
			break
		}
	}
	info.SolveTime = time.Since(solveStart)

	sol := &Solution{
		X: mat.NewVecDense(n, nil),
		Y: mat.NewVecDense(m, nil),
		S: mat.NewVecDense(m, nil),
	}
	for j := 0; j < n; j++ {
		sol.X.SetVec(j, x[j]*e[j])
	}
	for i := 0; i < m; i++ {
		sol.Y.SetVec(i, y[i]*d[i])
		sol.S.SetVec(i, s[i]/d[i])
	}

	info.PrimalObj = mat.Dot(prob.C, sol.X)
	info.DualObj = -mat.Dot(prob.B, sol.Y)
	info.Gap = math.Abs(info.PrimalObj-info.DualObj) /
		(1 + math.Abs(info.PrimalObj) + math.Abs(info.DualObj))

	presid := mat.NewVecDense(m, nil)
	prob.A.MulVec(presid, sol.X)
	presid.AddVec(presid, sol.S)
	presid.SubVec(presid, prob.B)
	info.PrimalRes = mat.Norm(presid, 2) / (1 + mat.Norm(prob.B, 2))

	dresid := mat.NewVecDense(n, nil)
	prob.A.MulTransVec(dresid, sol.Y)
	dresid.AddVec(dresid, prob.C)
	info.DualRes = mat.Norm(dresid, 2) / (1 + mat.Norm(prob.C, 2))

	return sol, info, nil
}

// equilibrate runs Ruiz iterations on D A E, sharing one scale factor
// across the rows of each second-order block so scaling maps the cone
// onto itself, then folds the overall rescale factor into the rows.
func equilibrate(a *Matrix, k *Cone, d, e []float64, rescale float64) {
	rn := make([]float64, a.Rows)
	cn := make([]float64, a.Cols)
	for t := 0; t < ruizIters; t++ {
		for i := range rn {
			rn[i] = 0
		}
		for j := 0; j < a.Cols; j++ {
			cn[j] = 0
			for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
				v := math.Abs(a.Val[idx] * d[a.RowIdx[idx]] * e[j])
				if v > rn[a.RowIdx[idx]] {
					rn[a.RowIdx[idx]] = v
				}
				if v > cn[j] {
					cn[j] = v
				}
			}
		}
		off := k.Zero + k.Linear
		for _, q := range k.SOC {
			blockMax := 0.0
			for _, v := range rn[off : off+q] {
				if v > blockMax {
					blockMax = v
				}
			}
			for i := off; i < off+q; i++ {
				rn[i] = blockMax
			}
			off += q
		}
		for i := range d {
			if rn[i] > 0 {
				d[i] = clampScale(d[i] / math.Sqrt(rn[i]))
			}
		}
		for j := range e {
			if cn[j] > 0 {
				e[j] = clampScale(e[j] / math.Sqrt(cn[j]))
			}
		}
	}
	for i := range d {
		d[i] *= rescale
	}
}

func clampScale(v float64) float64 {
	return math.Min(math.Max(v, minScale), maxScale)
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// mul computes dst = A x on raw slices.
func mul(a *Matrix, dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for j := 0; j < a.Cols; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			dst[a.RowIdx[idx]] += a.Val[idx] * xj
		}
	}
}

// mulTrans computes dst = Aᵀ y on raw slices.
func mulTrans(a *Matrix, dst, y []float64) {
	for j := 0; j < a.Cols; j++ {
		sum := 0.0
		for idx := a.ColPtr[j]; idx < a.ColPtr[j+1]; idx++ {
			sum += a.Val[idx] * y[a.RowIdx[idx]]
		}
		dst[j] = sum
	}
}

type linearSolver interface {
	// solve overwrites x with the solution of (ρₓI + AᵀA) x = rhs,
	// using x as the starting guess where that helps.
	solve(x, rhs []float64, iter int)
}

type cholSolver struct {
	chol mat.Cholesky
	buf  *mat.VecDense
}

func newCholSolver(a *Matrix, rhoX float64) (*cholSolver, error) {
	g := a.Gram()
	for j := 0; j < a.Cols; j++ {
		g.SetSym(j, j, g.At(j, j)+rhoX)
	}
	cs := &cholSolver{buf: mat.NewVecDense(a.Cols, nil)}
	if ok := cs.chol.Factorize(g); !ok {
		return nil, ErrFactorization
	}
	return cs, nil
}

func (cs *cholSolver) solve(x, rhs []float64, _ int) {
	cs.chol.SolveVecTo(cs.buf, mat.NewVecDense(len(rhs), rhs))
	copy(x, cs.buf.RawVector().Data)
}

// cgSolver applies conjugate gradient through sparse matvecs, never
// forming the normal matrix. The tolerance tightens with the outer
// iteration like (1/iter)^rate.
type cgSolver struct {
	a        *Matrix
	rhoX     float64
	rate     float64
	r, p, ap []float64
	am       []float64
}

func newCGSolver(a *Matrix, rhoX, rate float64) *cgSolver {
	return &cgSolver{
		a:    a,
		rhoX: rhoX,
		rate: rate,
		r:    make([]float64, a.Cols),
		p:    make([]float64, a.Cols),
		ap:   make([]float64, a.Cols),
		am:   make([]float64, a.Rows),
	}
}

// apply computes dst = (ρₓI + AᵀA) v.
func (cg *cgSolver) apply(dst, v []float64) {
	mul(cg.a, cg.am, v)
	mulTrans(cg.a, dst, cg.am)
	for j := range dst {
		dst[j] += cg.rhoX * v[j]
	}
}

func (cg *cgSolver) solve(x, rhs []float64, iter int) {
	tol := floats.Norm(rhs, 2) * math.Pow(1/float64(iter), cg.rate)
	if tol < cgFloorTol {
		tol = cgFloorTol
	}

	cg.apply(cg.ap, x)
	for j := range cg.r {
		cg.r[j] = rhs[j] - cg.ap[j]
	}
	rs := floats.Dot(cg.r, cg.r)
	if math.Sqrt(rs) <= tol {
		return
	}
	copy(cg.p, cg.r)

	for it := 0; it < len(x); it++ {
		cg.apply(cg.ap, cg.p)
		alpha := rs / floats.Dot(cg.p, cg.ap)
		for j := range x {
			x[j] += alpha * cg.p[j]
			cg.r[j] -= alpha * cg.ap[j]
		}
		rsNew := floats.Dot(cg.r, cg.r)
		if math.Sqrt(rsNew) <= tol {
			return
		}
		beta := rsNew / rs
		for j := range cg.p {
			cg.p[j] = cg.r[j] + beta*cg.p[j]
		}
		rs = rsNew
	}
}
