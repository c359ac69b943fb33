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

package dist

import (
	"fmt"
	"strings"

	"github.com/MathisWetterwald/syndisc/checks"
)

// Coalesce returns the distribution whose variables are the given groups of
// variables of d. The alphabet of a group is the Cartesian product of the
// alphabets of its members, ordered row-major. An index may appear in several
// groups: coalescing [[0 1] [0 1]] yields two identical copies of the pair.
func (d *Distribution) Coalesce(groups [][]int) (*Distribution, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("dist.Coalesce: no groups given")
	}
	if err := checks.CheckGroups(groups, d.NumVars()); err != nil {
		return nil, fmt.Errorf("dist.Coalesce: %w", err)
	}
	alphabets := make([][]string, len(groups))
	shape := make([]int, len(groups))
	for g, group := range groups {
		alphabets[g] = d.groupAlphabet(group)
		shape[g] = len(alphabets[g])
	}
	if err := checks.CheckDenseSize(shape); err != nil {
		return nil, fmt.Errorf("dist.Coalesce: %w", err)
	}
	out := newDistribution(alphabets, make([]float64, sizeOf(shape)))
	for idx, p := range d.pmf {
		if p == 0 {
			continue
		}
		outcome := d.Outcome(idx)
		target := 0
		for g, group := range groups {
			target += d.groupIndex(group, outcome) * out.strides[g]
		}
		out.pmf[target] += p
	}
	return out, nil
}

// groupIndex returns the position of the restriction of outcome to group in
// the alphabet of the coalesced group.
func (d *Distribution) groupIndex(group, outcome []int) int {
	idx := 0
	for _, v := range group {
		idx = idx*d.shape[v] + outcome[v]
	}
	return idx
}

func (d *Distribution) groupAlphabet(group []int) []string {
	alphabet := []string{""}
	for _, v := range group {
		next := make([]string, 0, len(alphabet)*d.shape[v])
		for _, prefix := range alphabet {
			for _, sym := range d.alphabets[v] {
				next = append(next, prefix+sym)
			}
		}
		alphabet = next
	}
	return alphabet
}

// Marginal returns the marginal distribution of the variables rvs, in the
// given order.
func (d *Distribution) Marginal(rvs []int) (*Distribution, error) {
	groups := make([][]int, len(rvs))
	for i, v := range rvs {
		groups[i] = []int{v}
	}
	return d.Coalesce(groups)
}

// ConditionOn splits d into the marginal of crvs and the conditional
// distributions of rvs given each configuration of crvs.
//
// The conditionals are returned in the order of the support of the marginal
// (see Support), one per configuration whose probability exceeds eps, and are
// densely materialized over the full alphabet of rvs. If rvs is empty, all
// variables not in crvs are used, in increasing order.
func (d *Distribution) ConditionOn(crvs, rvs []int, eps float64) (*Distribution, []*Distribution, error) {
	if len(crvs) == 0 {
		return nil, nil, fmt.Errorf("dist.ConditionOn: no conditioning variables given")
	}
	if len(rvs) == 0 {
		in := make(map[int]bool, len(crvs))
		for _, v := range crvs {
			in[v] = true
		}
		for v := 0; v < d.NumVars(); v++ {
			if !in[v] {
				rvs = append(rvs, v)
			}
		}
		if len(rvs) == 0 {
			return nil, nil, fmt.Errorf("dist.ConditionOn: conditioning on all %d variables leaves nothing to condition", d.NumVars())
		}
	}
	marginal, err := d.Marginal(crvs)
	if err != nil {
		return nil, nil, fmt.Errorf("dist.ConditionOn: %w", err)
	}
	joint, err := d.Marginal(append(append([]int(nil), crvs...), rvs...))
	if err != nil {
		return nil, nil, fmt.Errorf("dist.ConditionOn: %w", err)
	}
	alphabets := make([][]string, len(rvs))
	for i, v := range rvs {
		alphabets[i] = append([]string(nil), d.alphabets[v]...)
	}
	width := len(joint.pmf) / len(marginal.pmf)
	support := marginal.Support(eps)
	conditionals := make([]*Distribution, len(support))
	for i, c := range support {
		pmf := make([]float64, width)
		for r := range pmf {
			pmf[r] = joint.pmf[c*width+r] / marginal.pmf[c]
		}
		conditionals[i] = newDistribution(copyAlphabets(alphabets), pmf)
	}
	return marginal, conditionals, nil
}

// JoinFactors is the inverse of ConditionOn: it returns the joint distribution
// of the variables of marginal followed by the variables of the conditionals.
// conditionals must hold one distribution per configuration in the support of
// marginal, in support order, all over the same variables.
func JoinFactors(marginal *Distribution, conditionals []*Distribution, eps float64) (*Distribution, error) {
	support := marginal.Support(eps)
	if len(support) != len(conditionals) {
		return nil, fmt.Errorf("dist.JoinFactors: marginal has %d configurations in its support, got %d conditionals", len(support), len(conditionals))
	}
	if len(conditionals) == 0 {
		return nil, fmt.Errorf("dist.JoinFactors: no conditionals given")
	}
	shape := conditionals[0].shape
	for i, c := range conditionals {
		if !equalInts(c.shape, shape) {
			return nil, fmt.Errorf("dist.JoinFactors: conditional %d has shape %v, want %v", i, c.shape, shape)
		}
	}
	alphabets := append(copyAlphabets(marginal.alphabets), copyAlphabets(conditionals[0].alphabets)...)
	full := append(append([]int(nil), marginal.shape...), shape...)
	if err := checks.CheckDenseSize(full); err != nil {
		return nil, fmt.Errorf("dist.JoinFactors: %w", err)
	}
	width := sizeOf(shape)
	pmf := make([]float64, len(marginal.pmf)*width)
	for i, c := range support {
		for r, p := range conditionals[i].pmf {
			pmf[c*width+r] = marginal.pmf[c] * p
		}
	}
	if err := checks.CheckProbabilities(pmf); err != nil {
		return nil, fmt.Errorf("dist.JoinFactors: %w", err)
	}
	return newDistribution(alphabets, pmf), nil
}

// InsertRVF returns d extended with one more variable whose value is fn of the
// outcome of the other variables. fn must return a value in [0, size).
func (d *Distribution) InsertRVF(fn func(outcome []int) int, size int) (*Distribution, error) {
	if err := checks.CheckAlphabetSize(size); err != nil {
		return nil, fmt.Errorf("dist.InsertRVF: %w", err)
	}
	alphabets := append(copyAlphabets(d.alphabets), numericAlphabet(size))
	full := append(d.Shape(), size)
	if err := checks.CheckDenseSize(full); err != nil {
		return nil, fmt.Errorf("dist.InsertRVF: %w", err)
	}
	pmf := make([]float64, len(d.pmf)*size)
	for idx, p := range d.pmf {
		if p == 0 {
			continue
		}
		outcome := d.Outcome(idx)
		v := fn(outcome)
		if v < 0 || v >= size {
			return nil, fmt.Errorf("dist.InsertRVF: function returned %d for outcome %s, must be in [0, %d)", v, strings.Trim(fmt.Sprint(outcome), "[]"), size)
		}
		pmf[idx*size+v] = p
	}
	return newDistribution(alphabets, pmf), nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
