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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

const testTol = 1e-9

// marginalConstraints returns the constraint matrix keeping both one-bit
// marginals of two binary inputs, over the dense order 00 01 10 11.
func marginalConstraints() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 1, 0, 0,
		0, 0, 1, 1,
		1, 0, 1, 0,
		0, 1, 0, 1,
	})
}

// xorChannel returns p(y|x) for y the XOR of two input bits.
func xorChannel() *mat.Dense {
	return mat.NewDense(2, 4, []float64{
		1, 0, 0, 1,
		0, 1, 1, 0,
	})
}

func TestVerticesUnconstrained(t *testing.T) {
	got, err := Vertices(nil, []float64{0.5, 0.25, 0.25}, testTol, DefaultMaxBases)
	if err != nil {
		t.Fatalf("Vertices: %v", err)
	}
	want := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Vertices: diff (-want +got):\n%s", diff)
	}
}

func TestVerticesMarginalConstraints(t *testing.T) {
	got, err := Vertices(marginalConstraints(), []float64{0.25, 0.25, 0.25, 0.25}, testTol, DefaultMaxBases)
	if err != nil {
		t.Fatalf("Vertices: %v", err)
	}
	want := [][]float64{{0.5, 0, 0, 0.5}, {0, 0.5, 0.5, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Vertices: diff (-want +got):\n%s", diff)
	}
}

func TestVerticesFullyConstrained(t *testing.T) {
	// Keeping the joint marginal leaves a single point.
	pX := []float64{0.5, 0.125, 0.375}
	got, err := Vertices(mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), pX, testTol, DefaultMaxBases)
	if err != nil {
		t.Fatalf("Vertices: %v", err)
	}
	if diff := cmp.Diff([][]float64{pX}, got); diff != "" {
		t.Errorf("Vertices: diff (-want +got):\n%s", diff)
	}
}

func TestVerticesTooManyBases(t *testing.T) {
	pX := []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	if _, err := Vertices(nil, pX, testTol, 3); !errors.Is(err, ErrTooManyBases) {
		t.Errorf("Vertices with 5 bases and a limit of 3: got err %v, want ErrTooManyBases", err)
	}
}

func TestCountCombinations(t *testing.T) {
	for _, tc := range []struct {
		n, r, limit int
		want        int
		wantOK      bool
	}{
		{5, 2, 100, 10, true},
		{5, 0, 100, 1, true},
		{4, 4, 100, 1, true},
		{5, 6, 100, 0, true},
		{10, 5, 252, 252, true},
		{10, 5, 251, 0, false},
		{60, 30, 1000000, 0, false},
	} {
		got, ok := countCombinations(tc.n, tc.r, tc.limit)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("countCombinations(%d, %d, %d) = %d, %t, want %d, %t", tc.n, tc.r, tc.limit, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIndependentRows(t *testing.T) {
	a := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		2, 2, 0,
		0, 0, 0,
		0, 1, 1,
	})
	got, b := independentRows(a, []float64{1, 2, 0, 3}, testTol)
	want := mat.NewDense(2, 3, []float64{1, 1, 0, 0, 1, 1})
	if !mat.Equal(got, want) {
		t.Errorf("independentRows: got %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
	if diff := cmp.Diff([]float64{1, 3}, b); diff != "" {
		t.Errorf("independentRows: right-hand side diff (-want +got):\n%s", diff)
	}
}

func TestSolveXor(t *testing.T) {
	p := &Problem{
		P:         marginalConstraints(),
		PX:        []float64{0.25, 0.25, 0.25, 0.25},
		PYgX:      xorChannel(),
		Tolerance: testTol,
	}
	sol, err := VertexSolver{}.Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(0.0, sol.Value, opt); diff != "" {
		t.Errorf("Solve: value diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5, 0.5}, sol.Weights, opt); diff != "" {
		t.Errorf("Solve: weights diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{0.5, 0, 0, 0.5}, {0, 0.5, 0.5, 0}}, sol.Vertices); diff != "" {
		t.Errorf("Solve: vertices diff (-want +got):\n%s", diff)
	}
}

func TestSolveUnconstrained(t *testing.T) {
	// Without constraints, U can copy X and the conditional entropy vanishes.
	p := &Problem{
		PX:        []float64{0.25, 0.25, 0.25, 0.25},
		PYgX:      xorChannel(),
		Tolerance: testTol,
	}
	sol, err := VertexSolver{}.Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(sol.Value) > 1e-9 {
		t.Errorf("Solve: got conditional entropy %v, want 0", sol.Value)
	}
	var total float64
	for _, w := range sol.Weights {
		total += w
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("Solve: weights sum to %v, want 1", total)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	p := &Problem{
		P:         mat.NewDense(2, 4, []float64{1, 1, 0, 0, 0, 0, 1, 1}),
		PX:        []float64{0.1, 0.3, 0.4, 0.2},
		PYgX:      mat.NewDense(2, 4, []float64{0.9, 0.2, 0.5, 0.1, 0.1, 0.8, 0.5, 0.9}),
		Tolerance: testTol,
	}
	first, err := VertexSolver{}.Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := VertexSolver{}.Solve(p)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("Solve run %d differs from the first run (-first +got):\n%s", i, diff)
		}
	}
}

func TestProblemValidate(t *testing.T) {
	valid := func() *Problem {
		return &Problem{
			P:         marginalConstraints(),
			PX:        []float64{0.25, 0.25, 0.25, 0.25},
			PYgX:      xorChannel(),
			Tolerance: testTol,
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate: got err %v for a valid problem", err)
	}
	for _, tc := range []struct {
		desc   string
		modify func(*Problem)
	}{
		{"empty input", func(p *Problem) { p.PX = nil }},
		{"zero input probability", func(p *Problem) { p.PX[0] = 0 }},
		{"nil output channel", func(p *Problem) { p.PYgX = nil }},
		{"output channel too narrow", func(p *Problem) { p.PYgX = mat.NewDense(2, 3, nil) }},
		{"constraints too narrow", func(p *Problem) { p.P = mat.NewDense(1, 2, nil) }},
		{"zero tolerance", func(p *Problem) { p.Tolerance = 0 }},
	} {
		p := valid()
		tc.modify(p)
		if err := p.Validate(); err == nil {
			t.Errorf("Validate: when %s got nil error, want error", tc.desc)
		}
		if _, err := (VertexSolver{}).Solve(p); err == nil {
			t.Errorf("Solve: when %s got nil error, want error", tc.desc)
		}
	}
	p := valid()
	p.PX = nil
	if err := p.Validate(); !errors.Is(err, ErrEmptyProblem) {
		t.Errorf("Validate without inputs: got err %v, want ErrEmptyProblem", err)
	}
}
