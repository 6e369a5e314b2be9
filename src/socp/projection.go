package socp

import "math"

// projectCone overwrites v with its Euclidean projection onto the cone
// product: zero rows clamp to 0, linear rows to the nonnegative
// orthant, and each second-order block to {(t, u) : |u| <= t} with the
// block's first row as the axis.
func projectCone(v []float64, k *Cone) {
	for i := 0; i < k.Zero; i++ {
		v[i] = 0
	}
	off := k.Zero
	for i := 0; i < k.Linear; i++ {
		if v[off+i] < 0 {
			v[off+i] = 0
		}
	}
	off += k.Linear
	for _, q := range k.SOC {
		projectSOC(v[off : off+q])
		off += q
	}
}

func projectSOC(v []float64) {
	// a one-row block is just the nonnegative half-line
	if len(v) == 1 {
		if v[0] < 0 {
			v[0] = 0
		}
		return
	}
	t := v[0]
	norm := 0.0
	for _, u := range v[1:] {
		norm += u * u
	}
	norm = math.Sqrt(norm)
	switch {
	case norm <= t:
		// inside the cone
	case norm <= -t:
		// inside the polar cone
		for i := range v {
			v[i] = 0
		}
	default:
		c := (t + norm) / 2
		scale := c / norm
		v[0] = c
		for i := 1; i < len(v); i++ {
			v[i] *= scale
		}
	}
}

// InCone reports whether v lies in the cone product within tol.
func InCone(v []float64, k *Cone, tol float64) bool {
	for i := 0; i < k.Zero; i++ {
		if math.Abs(v[i]) > tol {
			return false
		}
	}
	return inConeTail(v, k, tol)
}

// InDualCone reports whether v lies in the dual cone within tol. The
// zero cone dualizes to the free cone; the nonnegative and
// second-order cones are self-dual.
func InDualCone(v []float64, k *Cone, tol float64) bool {
	return inConeTail(v, k, tol)
}

func inConeTail(v []float64, k *Cone, tol float64) bool {
	off := k.Zero
	for i := 0; i < k.Linear; i++ {
		if v[off+i] < -tol {
			return false
		}
	}
	off += k.Linear
	for _, q := range k.SOC {
		norm := 0.0
		for _, u := range v[off+1 : off+q] {
			norm += u * u
		}
		if math.Sqrt(norm) > v[off]+tol {
			return false
		}
		off += q
	}
	return true
}
