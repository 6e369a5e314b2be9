package socp

import (
	"errors"
	"fmt"
	"math"

	"github.com/draffensperger/golp"
	"github.com/lanl/highs"
)

var ErrSOCPresent = errors.New("socp: LP cross-check needs a cone without second-order blocks")

// HighsModel expresses an SOC-free instance as a HiGHS LP: zero cone
// rows become equalities, linear rows one-sided inequalities, and all
// variables are free.
func (p *Problem) HighsModel(k *Cone) (*highs.Model, error) {
	if len(k.SOC) > 0 {
		return nil, ErrSOCPresent
	}
	m, n := p.A.Rows, p.A.Cols
	lp := new(highs.Model)

	lp.ColCosts = make([]float64, n)
	lp.ColLower = make([]float64, n)
	lp.ColUpper = make([]float64, n)
	for j := 0; j < n; j++ {
		lp.ColCosts[j] = p.C.AtVec(j)
		lp.ColLower[j] = math.Inf(-1)
		lp.ColUpper[j] = math.Inf(1)
	}

	lp.RowLower = make([]float64, m)
	lp.RowUpper = make([]float64, m)
	for i := 0; i < m; i++ {
		lp.RowUpper[i] = p.B.AtVec(i)
		if i < k.Zero {
			lp.RowLower[i] = p.B.AtVec(i)
		} else {
			lp.RowLower[i] = math.Inf(-1)
		}
	}

	for j := 0; j < n; j++ {
		for idx := p.A.ColPtr[j]; idx < p.A.ColPtr[j+1]; idx++ {
			lp.ConstMatrix = append(lp.ConstMatrix, highs.Nonzero{
				Row: p.A.RowIdx[idx],
				Col: j,
				Val: p.A.Val[idx],
			})
		}
	}
	return lp, nil
}

// CrossCheckHighs solves the SOC-free instance exactly with HiGHS and
// returns its optimal objective for comparison against the known
// optimum.
func (p *Problem) CrossCheckHighs(k *Cone) (float64, error) {
	lp, err := p.HighsModel(k)
	if err != nil {
		return 0, err
	}
	solution, err := lp.Solve()
	if err != nil {
		return 0, err
	}
	if solution.Status != highs.Optimal {
		return 0, fmt.Errorf("status: %v", solution.Status.String())
	}
	return solution.Objective, nil
}

// CrossCheckGolp does the same through lp_solve. lp_solve columns are
// bounded below at zero, so every free variable is split as x⁺ - x⁻.
func (p *Problem) CrossCheckGolp(k *Cone) (float64, error) {
	if len(k.SOC) > 0 {
		return 0, ErrSOCPresent
	}
	m, n := p.A.Rows, p.A.Cols
	lp := golp.NewLP(0, 2*n)

	obj := make([]float64, 2*n)
	for j := 0; j < n; j++ {
		obj[j] = p.C.AtVec(j)
		obj[n+j] = -p.C.AtVec(j)
	}
	lp.SetObjFn(obj)

	rows := make([][]golp.Entry, m)
	for j := 0; j < n; j++ {
		for idx := p.A.ColPtr[j]; idx < p.A.ColPtr[j+1]; idx++ {
			i := p.A.RowIdx[idx]
			v := p.A.Val[idx]
			rows[i] = append(rows[i],
				golp.Entry{Col: j, Val: v},
				golp.Entry{Col: n + j, Val: -v},
			)
		}
	}
	for i, row := range rows {
		ct := golp.LE
		if i < k.Zero {
			ct = golp.EQ
		}
		if err := lp.AddConstraintSparse(row, ct, p.B.AtVec(i)); err != nil {
			return 0, err
		}
	}

	if ret := lp.Solve(); ret != golp.OPTIMAL {
		return 0, fmt.Errorf("lp_solve status: %v", ret)
	}
	return lp.Objective(), nil
}
