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

// Package dist contains joint probability distributions over discrete random
// variables.
//
// A Distribution always stores its probability mass function densely over the
// Cartesian product of the per-variable alphabets, in row-major order with the
// last variable varying fastest. Every operation in this module (entropy,
// conditioning, constraint construction) works against this single layout, so
// outcome orderings are stable across calls.
package dist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/rand"
)

// Distribution is an immutable joint distribution over NumVars() discrete
// random variables.
type Distribution struct {
	alphabets [][]string
	shape     []int
	strides   []int
	pmf       []float64
}

// newDistribution builds a Distribution without validating pmf. The caller
// hands over ownership of alphabets and pmf.
func newDistribution(alphabets [][]string, pmf []float64) *Distribution {
	shape := make([]int, len(alphabets))
	for i, a := range alphabets {
		shape[i] = len(a)
	}
	return &Distribution{
		alphabets: alphabets,
		shape:     shape,
		strides:   stridesOf(shape),
		pmf:       pmf,
	}
}

func stridesOf(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

func sizeOf(shape []int) int {
	size := 1
	for _, k := range shape {
		size *= k
	}
	return size
}

func numericAlphabet(k int) []string {
	a := make([]string, k)
	for i := range a {
		a[i] = strconv.Itoa(i)
	}
	return a
}

// New returns the distribution assigning pmf[i] to outcomes[i]. Each outcome
// is a string with one symbol (character) per variable. The alphabet of each
// variable is the sorted set of symbols appearing at its position; outcomes
// that are not listed have probability zero.
func New(outcomes []string, pmf []float64) (*Distribution, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("dist.New: no outcomes given")
	}
	if len(outcomes) != len(pmf) {
		return nil, fmt.Errorf("dist.New: got %d outcomes and %d probabilities, must be equal", len(outcomes), len(pmf))
	}
	if err := checks.CheckProbabilities(pmf); err != nil {
		return nil, fmt.Errorf("dist.New: %w", err)
	}
	symbols := make([][]rune, len(outcomes))
	for i, o := range outcomes {
		symbols[i] = []rune(o)
	}
	n := len(symbols[0])
	if n == 0 {
		return nil, fmt.Errorf("dist.New: outcome %q is empty", outcomes[0])
	}
	seen := make([]map[string]bool, n)
	for i := range seen {
		seen[i] = make(map[string]bool)
	}
	for i, s := range symbols {
		if len(s) != n {
			return nil, fmt.Errorf("dist.New: outcome %q has length %d, want %d", outcomes[i], len(s), n)
		}
		for j, r := range s {
			seen[j][string(r)] = true
		}
	}
	alphabets := make([][]string, n)
	for j := range alphabets {
		for sym := range seen[j] {
			alphabets[j] = append(alphabets[j], sym)
		}
		sort.Strings(alphabets[j])
	}
	shape := make([]int, n)
	for j, a := range alphabets {
		shape[j] = len(a)
	}
	if err := checks.CheckDenseSize(shape); err != nil {
		return nil, fmt.Errorf("dist.New: %w", err)
	}
	d := newDistribution(alphabets, make([]float64, sizeOf(shape)))
	filled := make(map[int]bool, len(outcomes))
	for i, s := range symbols {
		idx := 0
		for j, r := range s {
			idx += sort.SearchStrings(d.alphabets[j], string(r)) * d.strides[j]
		}
		if filled[idx] {
			return nil, fmt.Errorf("dist.New: outcome %q is listed more than once", outcomes[i])
		}
		filled[idx] = true
		d.pmf[idx] = pmf[i]
	}
	return d, nil
}

// NewDense returns the distribution with the given per-variable alphabet sizes
// and dense probability table. Symbols of a variable with k outcomes are
// "0", ..., k-1 (in decimal).
func NewDense(shape []int, pmf []float64) (*Distribution, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("dist.NewDense: no variables given")
	}
	for i, k := range shape {
		if err := checks.CheckAlphabetSize(k); err != nil {
			return nil, fmt.Errorf("dist.NewDense: variable %d: %w", i, err)
		}
	}
	if err := checks.CheckDenseSize(shape); err != nil {
		return nil, fmt.Errorf("dist.NewDense: %w", err)
	}
	if size := sizeOf(shape); len(pmf) != size {
		return nil, fmt.Errorf("dist.NewDense: got %d probabilities, want %d for shape %v", len(pmf), size, shape)
	}
	if err := checks.CheckProbabilities(pmf); err != nil {
		return nil, fmt.Errorf("dist.NewDense: %w", err)
	}
	alphabets := make([][]string, len(shape))
	for i, k := range shape {
		alphabets[i] = numericAlphabet(k)
	}
	return newDistribution(alphabets, append([]float64(nil), pmf...)), nil
}

// Uniform returns the uniform distribution over the given outcomes.
func Uniform(outcomes []string) (*Distribution, error) {
	pmf := make([]float64, len(outcomes))
	for i := range pmf {
		pmf[i] = 1 / float64(len(outcomes))
	}
	return New(outcomes, pmf)
}

// UniformDistribution returns the uniform distribution over n variables with k
// outcomes each.
func UniformDistribution(n, k int) (*Distribution, error) {
	shape, err := cubeShape(n, k)
	if err != nil {
		return nil, fmt.Errorf("dist.UniformDistribution: %w", err)
	}
	pmf := make([]float64, sizeOf(shape))
	for i := range pmf {
		pmf[i] = 1 / float64(len(pmf))
	}
	return NewDense(shape, pmf)
}

// Random returns a distribution over n variables with k outcomes each whose
// probability table is drawn uniformly from the probability simplex.
func Random(n, k int) (*Distribution, error) {
	shape, err := cubeShape(n, k)
	if err != nil {
		return nil, fmt.Errorf("dist.Random: %w", err)
	}
	return NewDense(shape, rand.Simplex(sizeOf(shape)))
}

func cubeShape(n, k int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("number of variables is %d, must be at least 1", n)
	}
	if err := checks.CheckAlphabetSize(k); err != nil {
		return nil, err
	}
	shape := make([]int, n)
	for i := range shape {
		shape[i] = k
	}
	if err := checks.CheckDenseSize(shape); err != nil {
		return nil, err
	}
	return shape, nil
}

// NumVars returns the number of variables.
func (d *Distribution) NumVars() int { return len(d.shape) }

// Shape returns the alphabet size of every variable.
func (d *Distribution) Shape() []int { return append([]int(nil), d.shape...) }

// Size returns the number of cells of the dense probability table.
func (d *Distribution) Size() int { return len(d.pmf) }

// PMF returns a copy of the dense probability table.
func (d *Distribution) PMF() []float64 { return append([]float64(nil), d.pmf...) }

// Symbols returns the alphabet of variable i.
func (d *Distribution) Symbols(i int) []string { return append([]string(nil), d.alphabets[i]...) }

// Index returns the position of outcome in the dense table. outcome holds one
// symbol index per variable.
func (d *Distribution) Index(outcome []int) int {
	idx := 0
	for i, o := range outcome {
		idx += o * d.strides[i]
	}
	return idx
}

// Outcome is the inverse of Index.
func (d *Distribution) Outcome(idx int) []int {
	outcome := make([]int, len(d.shape))
	for i, s := range d.strides {
		outcome[i] = idx / s
		idx %= s
	}
	return outcome
}

// Prob returns the probability of outcome.
func (d *Distribution) Prob(outcome []int) float64 { return d.pmf[d.Index(outcome)] }

// Support returns the dense indices whose probability exceeds eps, in
// increasing order.
func (d *Distribution) Support(eps float64) []int {
	var support []int
	for i, p := range d.pmf {
		if p > eps {
			support = append(support, i)
		}
	}
	return support
}

// Outcomes returns the string form of every outcome in the support.
func (d *Distribution) Outcomes(eps float64) []string {
	support := d.Support(eps)
	outcomes := make([]string, len(support))
	for i, idx := range support {
		outcomes[i] = d.outcomeString(idx)
	}
	return outcomes
}

func (d *Distribution) outcomeString(idx int) string {
	var b strings.Builder
	for i, o := range d.Outcome(idx) {
		b.WriteString(d.alphabets[i][o])
	}
	return b.String()
}

// String returns a human-readable table of the support.
func (d *Distribution) String() string {
	var b strings.Builder
	for _, idx := range d.Support(0) {
		fmt.Fprintf(&b, "%s\t%g\n", d.outcomeString(idx), d.pmf[idx])
	}
	return b.String()
}

// UniformLike returns the distribution with the same variables as d that is
// uniform over the support of d.
func (d *Distribution) UniformLike(eps float64) *Distribution {
	support := d.Support(eps)
	pmf := make([]float64, len(d.pmf))
	for _, idx := range support {
		pmf[idx] = 1 / float64(len(support))
	}
	return newDistribution(copyAlphabets(d.alphabets), pmf)
}

func copyAlphabets(alphabets [][]string) [][]string {
	out := make([][]string, len(alphabets))
	for i, a := range alphabets {
		out[i] = append([]string(nil), a...)
	}
	return out
}
