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

package disclosure

import (
	"fmt"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/info"
	"github.com/MathisWetterwald/syndisc/solver"
)

const (
	// DefaultEpsilon is the default support threshold.
	DefaultEpsilon = 1e-12
	// DefaultTolerance is the default feasibility tolerance.
	DefaultTolerance = 1e-9
)

// Options contains the options of a disclosure computation.
type Options struct {
	Unit      info.Unit     // Unit of the result. Defaults to bits.
	Epsilon   float64       // Probabilities at or below Epsilon are outside the support. Defaults to DefaultEpsilon.
	Tolerance float64       // Feasibility tolerance of the solver. Defaults to DefaultTolerance.
	Solver    solver.Solver // Defaults to solver.VertexSolver{}.
	// Output lists the output variables. Defaults to the last variable. All
	// other variables are inputs, in increasing order.
	Output []int
}

// withDefaults returns a copy of opt with the defaults filled in, and checks
// it against a distribution over n variables.
func (opt *Options) withDefaults(n int) (Options, error) {
	var o Options
	if opt != nil {
		o = *opt
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Solver == nil {
		o.Solver = solver.VertexSolver{}
	}
	if len(o.Output) == 0 {
		o.Output = []int{n - 1}
	} else {
		o.Output = append([]int(nil), o.Output...)
	}
	if err := info.CheckUnit(o.Unit); err != nil {
		return o, err
	}
	if err := checks.CheckEpsilon(o.Epsilon); err != nil {
		return o, err
	}
	if err := checks.CheckTolerance(o.Tolerance); err != nil {
		return o, err
	}
	if err := checks.CheckToleranceAboveEpsilon(o.Tolerance, o.Epsilon); err != nil {
		return o, err
	}
	if err := checks.CheckGroup(o.Output, n); err != nil {
		return o, fmt.Errorf("output: %w", err)
	}
	return o, nil
}

// Inputs returns the input variables of a distribution over n variables:
// every variable that is not an output, in increasing order.
func (opt *Options) Inputs(n int) ([]int, error) {
	o, err := opt.withDefaults(n)
	if err != nil {
		return nil, err
	}
	return inputsOf(n, o.Output), nil
}

func inputsOf(n int, output []int) []int {
	isOutput := make(map[int]bool, len(output))
	for _, v := range output {
		isOutput[v] = true
	}
	var inputs []int
	for v := 0; v < n; v++ {
		if !isOutput[v] {
			inputs = append(inputs, v)
		}
	}
	return inputs
}
