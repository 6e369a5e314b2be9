// Package socp generates random, provably feasible second-order cone
// programs of the form
//
//	minimize c'x subject to Ax + s = b, s in K
//
// where K is a product of a zero cone, a nonnegative cone and a
// sequence of second-order cones, and solves them with a first-order
// operator-splitting method.
package socp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

var ErrBadCone = errors.New("socp: malformed cone")

// Cone describes the constraint rows in order: Zero equality rows,
// then Linear nonnegative rows, then one group of rows per
// second-order block.
type Cone struct {
	Zero   int
	Linear int
	SOC    []int
}

func (k *Cone) SOCRows() int {
	total := 0
	for _, q := range k.SOC {
		total += q
	}
	return total
}

func (k *Cone) Rows() int {
	return k.Zero + k.Linear + k.SOCRows()
}

// Validate checks that the cone covers exactly rowsTotal rows with no
// negative counts and no zero-size second-order blocks.
func (k *Cone) Validate(rowsTotal int) error {
	if k.Zero < 0 || k.Linear < 0 {
		return fmt.Errorf("%w: negative zero/linear row count", ErrBadCone)
	}
	for i, q := range k.SOC {
		if q < 1 {
			return fmt.Errorf("%w: second-order block %d has size %d", ErrBadCone, i, q)
		}
	}
	if got := k.Rows(); got != rowsTotal {
		return fmt.Errorf("%w: blocks cover %d of %d rows", ErrBadCone, got, rowsTotal)
	}
	return nil
}

func (k *Cone) String() string {
	s := new(strings.Builder)
	fmt.Fprintf(s, "Zero cone rows: %d\n", k.Zero)
	fmt.Fprintf(s, "LP cone rows: %d\n", k.Linear)
	fmt.Fprintf(s, "Number of second-order cones: %d, covering %d rows, with sizes\n[", len(k.SOC), k.SOCRows())
	for _, q := range k.SOC {
		fmt.Fprintf(s, "%d, ", q)
	}
	s.WriteString("]")
	return s.String()
}

// Problem holds the assembled data: minimize C'x subject to
// Ax + S = B with S in the cone.
type Problem struct {
	A *Matrix
	B *mat.VecDense
	C *mat.VecDense
}

// Solution is a primal/dual pair (X, Y) with the primal slack S.
type Solution struct {
	X *mat.VecDense
	Y *mat.VecDense
	S *mat.VecDense
}

type Status int

const (
	Solved Status = iota
	MaxIterationsReached
)

func (st Status) String() string {
	switch st {
	case Solved:
		return "solved"
	case MaxIterationsReached:
		return "reached iteration limit"
	}
	return "unknown"
}

// Info carries the solver run diagnostics. Residuals and objectives
// refer to the original (unscaled) problem.
type Info struct {
	Status     Status
	Iterations int
	PrimalObj  float64
	DualObj    float64
	PrimalRes  float64
	DualRes    float64
	Gap        float64
	SetupTime  time.Duration
	SolveTime  time.Duration
}

func (info *Info) String() string {
	s := new(strings.Builder)
	fmt.Fprintf(s, "Status: %v after %d iterations\n", info.Status, info.Iterations)
	fmt.Fprintf(s, "Primal objective: %f, dual objective: %f\n", info.PrimalObj, info.DualObj)
	fmt.Fprintf(s, "Residuals: pri %.2e, dua %.2e, gap %.2e\n", info.PrimalRes, info.DualRes, info.Gap)
	fmt.Fprintf(s, "Setup time: %v, solve time: %v", info.SetupTime, info.SolveTime)
	return s.String()
}

// Settings is the solver tuning record.
type Settings struct {
	MaxIterations   int
	Tolerance       float64
	Relaxation      float64 // over-relaxation parameter, in (0, 2)
	EqualityScaling float64 // regularization on the x update
	RescaleFactor   float64 // extra row scaling applied when Normalize is set
	CGRate          float64 // indirect solves tighten like (1/iter)^CGRate
	UseIndirect     bool
	Verbose         bool
	Normalize       bool
	WarmStart       bool
}

func DefaultSettings() *Settings {
	return &Settings{
		MaxIterations:   2500,
		Tolerance:       1e-3,
		Relaxation:      1.8,
		EqualityScaling: 1e-3,
		RescaleFactor:   5,
		CGRate:          2,
		Verbose:         true,
		Normalize:       true,
	}
}
