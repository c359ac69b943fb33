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

package solver

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/MathisWetterwald/syndisc/info"
	log "github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"gonum.org/v1/gonum/stat/combin"
)

// DefaultMaxBases is the default bound on the number of bases examined by
// VertexSolver.
const DefaultMaxBases = 1000000

// VertexSolver solves disclosure problems exactly by enumerating the vertices
// of the feasible polytope.
//
// The conditional entropy H(p_{Y|X} q) is concave in q, so the optimal mixture
// only uses vertices of the polytope. VertexSolver enumerates the basic
// feasible solutions of {q ≥ 0 : A q = b} and then solves the linear program
//
//	minimize Σ_v w_v H(Y|v) subject to Σ_v w_v v = p_X, w ≥ 0
//
// with the simplex method. A basic optimal solution uses at most as many
// vertices as there are input configurations.
//
// Bases are visited in lexicographic order and vertices are sorted in
// decreasing lexicographic order, so repeated solves of the same problem
// return bit-identical solutions.
type VertexSolver struct {
	// MaxBases bounds the number of candidate bases. Defaults to
	// DefaultMaxBases.
	MaxBases int
}

// Solve implements Solver.
func (s VertexSolver) Solve(p *Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	maxBases := s.MaxBases
	if maxBases <= 0 {
		maxBases = DefaultMaxBases
	}

	vertices, err := Vertices(p.P, p.PX, p.Tolerance, maxBases)
	if err != nil {
		return nil, err
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: the feasible polytope has no vertex", ErrInfeasible)
	}

	costs := make([]float64, len(vertices))
	for i, v := range vertices {
		costs[i] = conditionalEntropy(p.PYgX, v)
	}

	weights, err := mixtureWeights(vertices, costs, p.PX, p.Tolerance)
	if err != nil {
		return nil, err
	}

	sol := &Solution{}
	for i, w := range weights {
		if w <= p.Tolerance {
			if w < -p.Tolerance {
				log.Warningf("Dropping vertex %d with negative weight %e", i, w)
			}
			continue
		}
		sol.Vertices = append(sol.Vertices, vertices[i])
		sol.Weights = append(sol.Weights, w)
		sol.Value += w * costs[i]
	}
	log.V(1).Infof("VertexSolver: %d vertices, %d in the optimal mixture, conditional entropy %g nats",
		len(vertices), len(sol.Vertices), sol.Value)
	return sol, nil
}

// conditionalEntropy returns H(Y|U=u), in nats, for the conditional input
// distribution q = p(·|u).
func conditionalEntropy(pYgX *mat.Dense, q []float64) float64 {
	r, _ := pYgX.Dims()
	pY := mat.NewVecDense(r, nil)
	pY.MulVec(pYgX, mat.NewVecDense(len(q), q))
	return info.Entropy(pY.RawVector().Data, info.Nats)
}

// Vertices returns the vertices of the polytope
//
//	{q ≥ 0 : P q = P pX, 1ᵀq = 1}
//
// in decreasing lexicographic order. P may be nil. An error wrapping
// ErrTooManyBases is returned if more than maxBases bases would have to be
// examined.
func Vertices(P *mat.Dense, pX []float64, tol float64, maxBases int) ([][]float64, error) {
	n := len(pX)
	a := equalityMatrix(P, n)
	rows, _ := a.Dims()
	b := make([]float64, rows)
	bVec := mat.NewVecDense(rows, b)
	bVec.MulVec(a, mat.NewVecDense(n, pX))

	a, b = independentRows(a, b, tol)
	r, _ := a.Dims()
	count, ok := countCombinations(n, r, maxBases)
	if !ok {
		return nil, fmt.Errorf("%w: more than %d bases of size %d among %d columns", ErrTooManyBases, maxBases, r, n)
	}
	log.V(2).Infof("Vertices: rank %d, %d columns, %d candidate bases", r, n, count)

	var vertices [][]float64
	basis := mat.NewDense(r, r, nil)
	xB := mat.NewVecDense(r, nil)
	rhs := mat.NewVecDense(r, b)
	cols := make([]int, r)
	gen := combin.NewCombinationGenerator(n, r)
	for gen.Next() {
		gen.Combination(cols)
		for j, c := range cols {
			for i := 0; i < r; i++ {
				basis.Set(i, j, a.At(i, c))
			}
		}
		if err := xB.SolveVec(basis, rhs); err != nil {
			// Singular or numerically singular basis.
			continue
		}
		feasible := true
		for j := range cols {
			if xB.AtVec(j) < -tol {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}
		v := make([]float64, n)
		for j, c := range cols {
			v[c] = xB.AtVec(j)
		}
		snap(v, tol)
		if !containsVector(vertices, v, tol) {
			vertices = append(vertices, v)
		}
	}
	sort.Slice(vertices, func(i, j int) bool {
		return lexGreater(vertices[i], vertices[j])
	})
	return vertices, nil
}

// equalityMatrix returns P with a row of ones appended.
func equalityMatrix(P *mat.Dense, n int) *mat.Dense {
	var rows int
	if P != nil {
		rows, _ = P.Dims()
	}
	a := mat.NewDense(rows+1, n, nil)
	if P != nil {
		a.Slice(0, rows, 0, n).(*mat.Dense).Copy(P)
	}
	for j := 0; j < n; j++ {
		a.Set(rows, j, 1)
	}
	return a
}

// independentRows returns the rows of a, and the matching entries of b, that
// are linearly independent of the rows before them. Rows are tested with a
// modified Gram-Schmidt pass: a row is dropped when its residual norm is
// below tol relative to its own norm.
func independentRows(a *mat.Dense, b []float64, tol float64) (*mat.Dense, []float64) {
	rows, cols := a.Dims()
	var basis [][]float64
	var keep []int
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, a)
		norm := floats.Norm(row, 2)
		if norm == 0 {
			continue
		}
		v := append([]float64(nil), row...)
		for _, q := range basis {
			floats.AddScaled(v, -floats.Dot(v, q), q)
		}
		residual := floats.Norm(v, 2)
		if residual <= tol*norm {
			continue
		}
		floats.Scale(1/residual, v)
		basis = append(basis, v)
		keep = append(keep, i)
	}
	out := mat.NewDense(len(keep), cols, nil)
	outB := make([]float64, len(keep))
	for k, i := range keep {
		out.SetRow(k, mat.Row(nil, i, a))
		outB[k] = b[i]
	}
	return out, outB
}

// mixtureWeights solves the linear program over the mixture weights of the
// vertices.
func mixtureWeights(vertices [][]float64, costs, pX []float64, tol float64) ([]float64, error) {
	n, k := len(pX), len(vertices)
	v := mat.NewDense(n, k, nil)
	for j, vert := range vertices {
		v.SetCol(j, vert)
	}
	a, b := independentRows(v, pX, tol)
	r, _ := a.Dims()
	log.V(2).Infof("mixtureWeights: %d vertices, %d independent rows", k, r)

	if r == k {
		// The vertices are affinely independent and the mixture is unique.
		w := mat.NewVecDense(k, nil)
		if err := w.SolveVec(a, mat.NewVecDense(r, b)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		weights := w.RawVector().Data
		for i, x := range weights {
			if x < -tol {
				return nil, fmt.Errorf("%w: mixture weight %d is %e", ErrInfeasible, i, x)
			}
			weights[i] = math.Max(x, 0)
		}
		return weights, nil
	}

	_, weights, err := lp.Simplex(costs, a, b, tol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		return nil, fmt.Errorf("solver: linear program over %d vertices failed: %v", k, err)
	}
	return weights, nil
}

// countCombinations returns n choose r, and false if it exceeds limit.
func countCombinations(n, r, limit int) (int, bool) {
	if r < 0 || r > n {
		return 0, true
	}
	if r > n-r {
		r = n - r
	}
	count := 1
	for i := 1; i <= r; i++ {
		// Exact: count is C(n-r+i-1, i-1) before the update. Neither factor
		// exceeds the limit or MaxDenseSize, so the product fits in an int.
		count = count * (n - r + i) / i
		if count > limit {
			return 0, false
		}
	}
	return count, true
}

func containsVector(vs [][]float64, v []float64, tol float64) bool {
	for _, w := range vs {
		if floats.EqualApprox(v, w, tol) {
			return true
		}
	}
	return false
}

func lexGreater(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
