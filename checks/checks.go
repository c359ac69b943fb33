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

// Package checks contains input checks for disclosure computations.
package checks

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
)

const (
	toleranceName = "Tolerance"
	epsilonName   = "Epsilon"

	// MaxTolerance is the loosest feasibility tolerance accepted by the solvers.
	MaxTolerance = 1e-3
	// MaxDenseSize is the largest number of cells of a dense probability table.
	MaxDenseSize = 1 << 24
	// normalizationSlack is how far a probability table may sum away from 1.
	normalizationSlack = 1e-9
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("This should never happen. There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckTolerance returns an error if tol is nonpositive, NaN, or not smaller
// than MaxTolerance.
func CheckTolerance(tol float64, name ...string) error {
	tolName, err := verifyName(toleranceName, name)
	if err != nil {
		return err
	}
	if tol <= 0 || tol >= MaxTolerance || math.IsNaN(tol) {
		return fmt.Errorf("%s is %e, must be strictly positive and less than %e", tolName, tol, MaxTolerance)
	}
	return nil
}

// CheckEpsilon returns an error if the support threshold eps is negative, NaN,
// or not smaller than MaxTolerance.
func CheckEpsilon(eps float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if eps < 0 || eps >= MaxTolerance || math.IsNaN(eps) {
		return fmt.Errorf("%s is %e, must be nonnegative and less than %e", epsName, eps, MaxTolerance)
	}
	return nil
}

// CheckToleranceAboveEpsilon returns an error if the solver tolerance is
// smaller than the support threshold. The tolerance decides ranks and signs
// in the solver, so it must not resolve probabilities that the support
// threshold already rounds to zero. It does not bound the constraint
// residual, which stays at round-off level.
func CheckToleranceAboveEpsilon(tol, eps float64) error {
	if tol < eps {
		return fmt.Errorf("Tolerance (%e) must be at least Epsilon (%e)", tol, eps)
	}
	return nil
}

// CheckAlphabetSize returns an error if k is not a valid number of outcomes
// for a variable.
func CheckAlphabetSize(k int) error {
	if k < 1 {
		return fmt.Errorf("alphabet size is %d, must be at least 1", k)
	}
	return nil
}

// CheckDenseSize returns an error if a dense table with the given alphabet
// sizes would have more than MaxDenseSize cells.
func CheckDenseSize(shape []int) error {
	size := 1
	for _, k := range shape {
		if k > 0 && size > MaxDenseSize/k {
			return fmt.Errorf("dense table of shape %v has more than %d cells", shape, MaxDenseSize)
		}
		size *= k
	}
	return nil
}

// CheckProbabilities returns an error if pmf has negative, NaN or infinite
// entries, or does not sum to 1.
func CheckProbabilities(pmf []float64) error {
	if len(pmf) == 0 {
		return fmt.Errorf("probability table is empty")
	}
	var sum float64
	for i, p := range pmf {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("probability %d is %f, must be nonnegative and finite", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > normalizationSlack {
		return fmt.Errorf("probabilities sum to %.12f, must sum to 1", sum)
	}
	return nil
}

// CheckVariableIndex returns an error if v does not name one of n variables.
func CheckVariableIndex(v, n int) error {
	if v < 0 || v >= n {
		return fmt.Errorf("variable index %d is out of range [0, %d)", v, n)
	}
	return nil
}

// CheckGroup returns an error if group is empty or names a variable outside
// [0, n). A variable listed twice in the same group is legal but suspicious.
func CheckGroup(group []int, n int) error {
	if len(group) == 0 {
		return fmt.Errorf("variable group is empty")
	}
	seen := make(map[int]bool, len(group))
	for _, v := range group {
		if err := CheckVariableIndex(v, n); err != nil {
			return fmt.Errorf("group %v: %w", group, err)
		}
		if seen[v] {
			log.Warningf("Variable %d appears more than once in group %v", v, group)
		}
		seen[v] = true
	}
	return nil
}

// CheckGroups runs CheckGroup on every group.
func CheckGroups(groups [][]int, n int) error {
	for i, g := range groups {
		if err := CheckGroup(g, n); err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
	}
	return nil
}

// CheckAntichain returns an error if groups is not a valid antichain of
// variable groups over n variables: every group must pass CheckGroup and no
// group may be contained in another.
func CheckAntichain(groups [][]int, n int) error {
	if err := CheckGroups(groups, n); err != nil {
		return err
	}
	for i, a := range groups {
		for j, b := range groups {
			if i != j && isSubset(a, b) {
				return fmt.Errorf("group %v is contained in group %v, not an antichain", a, b)
			}
		}
	}
	return nil
}

func isSubset(a, b []int) bool {
	in := make(map[int]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	for _, v := range a {
		if !in[v] {
			return false
		}
	}
	return true
}
