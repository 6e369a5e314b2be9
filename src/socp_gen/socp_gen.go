package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"random_socp/src/socp"
)

const (
	defaultPf = 0.1
	defaultPl = 0.3
)

func printUsage() {
	prog := os.Args[0]
	fmt.Printf("usage:\t%s n p_f p_l s\n"+
		"\tcreates an SOCP with n variables where p_f fraction of rows correspond\n"+
		"\tto equality constraints, p_l fraction of rows correspond to LP constraints,\n"+
		"\tand the remaining percentage of rows are involved in second-order\n"+
		"\tcone constraints. the random number generator is seeded with s.\n"+
		"\tnote that p_f + p_l should be less than or equal to 1, and that\n"+
		"\tp_f should be less than .33, since that corresponds to as many equality\n"+
		"\tconstraints as variables.\n", prog)
	fmt.Printf("\nusage:\t%s n p_f p_l\n\tdefaults the seed to the system time\n", prog)
	fmt.Printf("\nusage:\t%s n\n\tdefaults to using p_f = %v and p_l = %v\n", prog, defaultPf, defaultPl)
}

func parseFractions(fArg, lArg string) (pf, pl float64, err error) {
	pf, err = strconv.ParseFloat(fArg, 64)
	if err != nil {
		return 0, 0, err
	}
	pl, err = strconv.ParseFloat(lArg, 64)
	if err != nil {
		return 0, 0, err
	}
	return pf, pl, nil
}

func main() {
	pf, pl := defaultPf, defaultPl
	seed := time.Now().Unix()

	var err error
	switch len(os.Args) {
	case 2:
	case 4:
		pf, pl, err = parseFractions(os.Args[2], os.Args[3])
	case 5:
		pf, pl, err = parseFractions(os.Args[2], os.Args[3])
		if err == nil {
			seed, err = strconv.ParseInt(os.Args[4], 10, 64)
		}
	default:
		printUsage()
		return
	}
	n, nErr := strconv.Atoi(os.Args[1])
	if err != nil || nErr != nil || n < 1 {
		printUsage()
		return
	}

	rnd := rand.New(rand.NewSource(uint64(seed)))
	fmt.Printf("seed : %d\n", seed)

	params, err := socp.DeriveParams(n, pf, pl)
	if err != nil {
		if errors.Is(err, socp.ErrFractionSum) {
			fmt.Fprintln(os.Stderr, "error: p_f + p_l > 1.0!")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}

	cone := socp.BuildCone(rnd, params)

	m := params.RowsTotal
	nnz := params.Nnz()
	const bytesPerGB = float64(1 << 30)
	fmt.Printf("\nA is %d by %d, with %d nonzeros per column.\n", m, n, params.ColNnz)
	fmt.Printf("A has %d nonzeros (%f%% dense).\n", nnz, 100*float64(params.ColNnz)/float64(m))
	fmt.Printf("Nonzeros of A take %f GB of storage.\n", float64(nnz)*8/bytesPerGB)
	fmt.Printf("Row idxs of A take %f GB of storage.\n", float64(nnz)*8/bytesPerGB)
	fmt.Printf("Col ptrs of A take %f GB of storage.\n\n", float64(n)*8/bytesPerGB)

	color.New(color.FgCyan, color.Bold).Println("Cone information:")
	fmt.Println(cone)
	fmt.Printf("Number of rows covered is %d out of %d.\n\n", cone.Rows(), m)

	prob, opt, err := socp.GenerateFeasible(rnd, n, params.ColNnz, cone)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	truePri := mat.Dot(prob.C, opt.X)
	trueDua := -mat.Dot(prob.B, opt.Y)
	fmt.Printf("true pri opt = %4f\n", truePri)
	fmt.Printf("true dua opt = %4f\n", trueDua)

	sol, info, err := socp.Solve(prob, cone, socp.DefaultSettings(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	color.New(color.FgGreen, color.Bold).Println("\nSolver result:")
	fmt.Println(info)
	fmt.Printf("solved pri opt = %4f\n", mat.Dot(prob.C, sol.X))
	fmt.Printf("solved dua opt = %4f\n", -mat.Dot(prob.B, sol.Y))
	fmt.Printf("true pri opt = %4f\n", truePri)
	fmt.Printf("true dua opt = %4f\n", trueDua)

	// an instance without second-order blocks is a plain LP, so an
	// exact simplex solve can confirm the known optimum
	if len(cone.SOC) == 0 {
		obj, err := prob.CrossCheckHighs(cone)
		if err != nil {
			obj, err = prob.CrossCheckGolp(cone)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "LP cross-check failed:", err)
		} else {
			fmt.Printf("\nLP cross-check opt = %4f (diff vs true: %g)\n", obj, math.Abs(obj-truePri))
		}
	}
}
