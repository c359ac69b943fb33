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

// Package constraint builds the linear constraints that keep an auxiliary
// variable independent of selected marginals of a joint distribution.
package constraint

import (
	"fmt"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/dist"
	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
)

// BuildMatrix returns the constraint matrix P of the variable groups for the
// distribution d: the vertical stack of one block per group.
//
// P has one column per outcome in the support of d (probability above eps), in
// the order of d.Support. The block of a group has one row per configuration
// of the group, so that for any vector q over the support of d, the rows of
// P q belonging to a group hold the marginal of q on that group.
//
// The blocks are computed on a uniform distribution with the same support as
// d, joined with an exact copy of itself: conditioning that self-product on
// the copy is well defined for every outcome in the support, even where d has
// tiny probabilities, and yields the marginalization coefficients directly.
//
// An empty list of groups returns a nil matrix, meaning no constraints.
func BuildMatrix(groups [][]int, d *dist.Distribution, eps float64) (*mat.Dense, error) {
	if d == nil {
		return nil, fmt.Errorf("constraint.BuildMatrix: nil distribution")
	}
	if err := checks.CheckEpsilon(eps); err != nil {
		return nil, fmt.Errorf("constraint.BuildMatrix: %w", err)
	}
	n := d.NumVars()
	if err := checks.CheckGroups(groups, n); err != nil {
		return nil, fmt.Errorf("constraint.BuildMatrix: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}

	u := d.UniformLike(eps)
	self := make([][]int, 2*n)
	reference := make([]int, n)
	for i := 0; i < n; i++ {
		self[i] = []int{i}
		self[n+i] = []int{i}
		reference[i] = n + i
	}
	uu, err := u.Coalesce(self)
	if err != nil {
		return nil, fmt.Errorf("constraint.BuildMatrix: self-product: %w", err)
	}

	var blocks [][]*dist.Distribution
	rows, cols := 0, -1
	for _, g := range groups {
		_, conditionals, err := uu.ConditionOn(reference, g, eps)
		if err != nil {
			return nil, fmt.Errorf("constraint.BuildMatrix: group %v: %w", g, err)
		}
		if len(conditionals) == 0 {
			return nil, fmt.Errorf("constraint.BuildMatrix: no outcome has probability above %e", eps)
		}
		if cols >= 0 && len(conditionals) != cols {
			return nil, fmt.Errorf("constraint.BuildMatrix: group %v has %d columns, want %d", g, len(conditionals), cols)
		}
		cols = len(conditionals)
		rows += conditionals[0].Size()
		blocks = append(blocks, conditionals)
	}

	P := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, conditionals := range blocks {
		for j, c := range conditionals {
			for i, p := range c.PMF() {
				P.Set(offset+i, j, p)
			}
		}
		offset += conditionals[0].Size()
	}
	log.V(2).Infof("BuildMatrix: %d groups, %d rows, %d columns", len(groups), rows, cols)
	return P, nil
}
