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

// Package solver finds the optimal auxiliary channel of a disclosure problem.
//
// A disclosure problem asks for a random variable U, produced from the input X
// by a channel p(U|X), that reveals as much as possible about an output Y
// while telling nothing about the marginals selected by a constraint matrix P.
// Writing the channel as a mixture
//
//	p(x) = Σ_u p(u) p(x|u),
//
// the constraints say that every conditional p(·|u) must lie in the polytope
//
//	{q ≥ 0 : P q = P p_X, 1ᵀq = 1},
//
// and maximizing I(U;Y) = H(Y) − Σ_u p(u) H(p_{Y|X} p(·|u)) is a convex
// problem over the mixture. A Solver returns the mixture minimizing the
// conditional entropy Σ_u p(u) H(Y|U=u).
package solver

import (
	"errors"
	"fmt"

	"github.com/MathisWetterwald/syndisc/checks"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInfeasible is returned when no channel satisfies the constraints to
	// the requested tolerance.
	ErrInfeasible = errors.New("solver: constraints are infeasible")
	// ErrTooManyBases is returned when the feasible polytope is too large to
	// enumerate.
	ErrTooManyBases = errors.New("solver: too many candidate bases")
	// ErrEmptyProblem is returned for a problem without input configurations.
	ErrEmptyProblem = errors.New("solver: empty problem")
)

// Problem is a disclosure problem over the support of the input variable X.
//
// Columns of P and PYgX, and entries of PX, are indexed by the input
// configurations in the support, in the same order.
type Problem struct {
	// P holds one row per constrained marginal cell. A nil P means that the
	// problem is unconstrained.
	P *mat.Dense
	// PX is the input marginal. Every entry is positive.
	PX []float64
	// PYgX is the column-stochastic output channel p(y|x).
	PYgX *mat.Dense
	// Tolerance is the feasibility tolerance.
	Tolerance float64
}

// Solution is an optimal mixture for a Problem.
type Solution struct {
	// Vertices holds the conditional input distribution p(·|u) of every
	// auxiliary outcome u, each of length len(PX).
	Vertices [][]float64
	// Weights holds p(u) for every auxiliary outcome.
	Weights []float64
	// Value is the optimal conditional entropy Σ_u p(u) H(Y|U=u), in nats.
	Value float64
}

// Solver is a strategy for solving disclosure problems. Implementations must
// return a global optimum and must be safe for concurrent use.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}

// Validate returns an error if the dimensions or the tolerance of p are
// inconsistent.
func (p *Problem) Validate() error {
	n := len(p.PX)
	if n == 0 {
		return ErrEmptyProblem
	}
	for i, v := range p.PX {
		if v <= 0 {
			return fmt.Errorf("solver: input probability %d is %e, must be positive", i, v)
		}
	}
	if p.PYgX == nil {
		return fmt.Errorf("solver: no output channel given")
	}
	if _, c := p.PYgX.Dims(); c != n {
		return fmt.Errorf("solver: output channel has %d columns, want %d", c, n)
	}
	if p.P != nil {
		if _, c := p.P.Dims(); c != n {
			return fmt.Errorf("solver: constraint matrix has %d columns, want %d", c, n)
		}
	}
	return checks.CheckTolerance(p.Tolerance)
}
