//
// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package disclosure computes synergistic disclosure and self-disclosure.
//
// The synergistic disclosure of a set of input variables X about an output Y,
// under a list of constraint groups, is the largest mutual information I(U;Y)
// achievable by an auxiliary variable U computed from X through a channel
// p(U|X) such that U is independent of the joint value of every constraint
// group. With no constraints it equals I(X;Y); constraining the whole input
// brings it down to zero.
//
// For general details, see F. Rosas, P. Mediano, B. Rassouli and A. Barrett,
// "An operational information decomposition via synergistic disclosure"
// (2020).
package disclosure

import (
	"fmt"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/constraint"
	"github.com/MathisWetterwald/syndisc/dist"
	"github.com/MathisWetterwald/syndisc/info"
	"github.com/MathisWetterwald/syndisc/solver"
	log "github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Channel is the optimal auxiliary channel of a disclosure computation.
//
// Input configurations are the outcomes of the coalesced input variables, in
// the dense order of dist.Distribution.
type Channel struct {
	// PUgX holds p(u|x): one row per auxiliary outcome, one column per input
	// configuration. Every column sums to 1. Input configurations outside the
	// support have PU as their column.
	PUgX *mat.Dense
	// PXgU holds p(x|u): one row per input configuration, one column per
	// auxiliary outcome.
	PXgU *mat.Dense
	// PU holds p(u).
	PU []float64
}

// NumOutcomes returns the size of the alphabet of the auxiliary variable.
func (c *Channel) NumOutcomes() int { return len(c.PU) }

// Disclosure returns the synergistic disclosure of the inputs of d about its
// outputs under the constraint groups cons, together with the optimal
// channel.
//
// Constraint groups hold positions in the list of inputs (see
// Options.Inputs); with the default output, the last variable, these are the
// variable indices of d. A nil opt means default options.
func Disclosure(d *dist.Distribution, cons [][]int, opt *Options) (float64, *Channel, error) {
	if d == nil {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: nil distribution")
	}
	n := d.NumVars()
	if n < 2 {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: distribution has %d variable, need at least an input and an output", n)
	}
	o, err := opt.withDefaults(n)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: %w", err)
	}
	inputs := inputsOf(n, o.Output)
	if len(inputs) == 0 {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: all %d variables are outputs, no input left", n)
	}
	joint, err := d.Coalesce([][]int{inputs, o.Output})
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: %w", err)
	}
	px, err := d.Marginal(inputs)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: %w", err)
	}
	s, ch, err := disclose(px, joint, cons, o)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.Disclosure: %w", err)
	}
	return s, ch, nil
}

// SelfDisclosure returns the synergistic self-disclosure of d under the
// constraint groups cons: the disclosure of all variables of d about
// themselves. Without constraints it equals the joint entropy of d.
//
// Constraint groups hold variable indices of d. opt.Output is ignored.
func SelfDisclosure(d *dist.Distribution, cons [][]int, opt *Options) (float64, *Channel, error) {
	if d == nil {
		return 0, nil, fmt.Errorf("disclosure.SelfDisclosure: nil distribution")
	}
	n := d.NumVars()
	o, err := opt.withDefaults(n)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.SelfDisclosure: %w", err)
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	joint, err := d.Coalesce([][]int{all, all})
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.SelfDisclosure: %w", err)
	}
	px, err := d.Marginal(all)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.SelfDisclosure: %w", err)
	}
	s, ch, err := disclose(px, joint, cons, o)
	if err != nil {
		return 0, nil, fmt.Errorf("disclosure.SelfDisclosure: %w", err)
	}
	return s, ch, nil
}

// disclose solves the disclosure problem of the input distribution px under
// cons. joint is the two-variable distribution of the coalesced input and
// output.
func disclose(px, joint *dist.Distribution, cons [][]int, o Options) (float64, *Channel, error) {
	if err := checks.CheckGroups(cons, px.NumVars()); err != nil {
		return 0, nil, fmt.Errorf("constraints: %w", err)
	}
	P, err := constraint.BuildMatrix(cons, px, o.Epsilon)
	if err != nil {
		return 0, nil, err
	}

	shape := joint.Shape()
	nx, ny := shape[0], shape[1]
	support := px.Support(o.Epsilon)
	if len(support) == 0 {
		return 0, nil, fmt.Errorf("no input configuration has probability above %e", o.Epsilon)
	}
	pmf, jointPMF := px.PMF(), joint.PMF()
	pX := make([]float64, len(support))
	pY := make([]float64, ny)
	pYgX := mat.NewDense(ny, len(support), nil)
	for j, x := range support {
		pX[j] = pmf[x]
		for y := 0; y < ny; y++ {
			pxy := jointPMF[x*ny+y]
			pYgX.Set(y, j, pxy/pX[j])
			pY[y] += pxy
		}
	}

	sol, err := o.Solver.Solve(&solver.Problem{
		P:         P,
		PX:        pX,
		PYgX:      pYgX,
		Tolerance: o.Tolerance,
	})
	if err != nil {
		return 0, nil, err
	}
	if len(sol.Weights) == 0 || len(sol.Weights) != len(sol.Vertices) {
		return 0, nil, fmt.Errorf("solver returned %d weights and %d vertices", len(sol.Weights), len(sol.Vertices))
	}

	hY := info.Entropy(pY, info.Nats)
	s := hY - sol.Value
	if s < -o.Tolerance || s > hY+o.Tolerance {
		log.Warningf("Disclosure %e nats is outside [0, H(Y)=%e], clamping", s, hY)
	}
	s = clamp(s, 0, hY)
	return o.Unit.FromNats(s), newChannel(sol, support, nx), nil
}

// newChannel converts a mixture over the support of the input into a channel
// over every input configuration. p(u) is the normalized weight vector and
// p(u|x) is taken against the mixture p(x) = Σ_u p(u) p(x|u), so every column
// sums to 1 even after the solver drops negligible weights.
func newChannel(sol *solver.Solution, support []int, nx int) *Channel {
	k := len(sol.Weights)
	pU := append([]float64(nil), sol.Weights...)
	floats.Scale(1/floats.Sum(pU), pU)

	pUgX := mat.NewDense(k, nx, nil)
	pXgU := mat.NewDense(nx, k, nil)
	onSupport := make([]bool, nx)
	joint := make([]float64, k)
	for j, x := range support {
		for u := 0; u < k; u++ {
			q := sol.Vertices[u][j]
			pXgU.Set(x, u, q)
			joint[u] = pU[u] * q
		}
		px := floats.Sum(joint)
		if px <= 0 {
			continue
		}
		onSupport[x] = true
		for u, p := range joint {
			pUgX.Set(u, x, p/px)
		}
	}
	for x := 0; x < nx; x++ {
		if !onSupport[x] {
			pUgX.SetCol(x, pU)
		}
	}
	return &Channel{PUgX: pUgX, PXgU: pXgU, PU: pU}
}

// clamp clamps e within lower and upper, such that lower is returned
// if e < lower, and upper is returned if e > upper. Otherwise, e is returned.
func clamp(e, lower, upper float64) float64 {
	if e > upper {
		return upper
	}
	if e < lower {
		return lower
	}
	return e
}
