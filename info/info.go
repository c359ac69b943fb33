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

// Package info contains Shannon information functionals over discrete
// distributions.
//
// All functionals treat 0·log(0) as 0, and ignore entries that are negative
// due to rounding, so they never return NaN for a probability vector.
package info

import (
	"fmt"
	"math"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/dist"
	"gonum.org/v1/gonum/stat"
)

// Unit is an enum type. Its values are the supported units of information.
type Unit int

// Units of information.
const (
	Bits Unit = iota
	Nats
)

func (u Unit) String() string {
	switch u {
	case Bits:
		return "bits"
	case Nats:
		return "nats"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit is the inverse of Unit.String.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "bits":
		return Bits, nil
	case "nats":
		return Nats, nil
	}
	return 0, fmt.Errorf("unknown unit of information %q, want bits or nats", s)
}

// CheckUnit returns an error if u is not a known unit.
func CheckUnit(u Unit) error {
	if u != Bits && u != Nats {
		return fmt.Errorf("unknown unit of information %v", u)
	}
	return nil
}

// FromNats converts x, expressed in nats, to u.
func (u Unit) FromNats(x float64) float64 {
	if u == Bits {
		return x / math.Ln2
	}
	return x
}

// Entropy returns the Shannon entropy of the probability vector p in unit u.
func Entropy(p []float64, u Unit) float64 {
	clean := make([]float64, len(p))
	for i, v := range p {
		if v > 0 {
			clean[i] = v
		}
	}
	return u.FromNats(stat.Entropy(clean))
}

// GroupEntropy returns the joint entropy of the variables rvs of d.
func GroupEntropy(d *dist.Distribution, rvs []int, u Unit) (float64, error) {
	m, err := d.Marginal(rvs)
	if err != nil {
		return 0, fmt.Errorf("info.GroupEntropy: %w", err)
	}
	return Entropy(m.PMF(), u), nil
}

// MutualInformation returns I(A;B) between the variable groups a and b of d.
func MutualInformation(d *dist.Distribution, a, b []int, u Unit) (float64, error) {
	return CoInformation(d, [][]int{a, b}, u)
}

// CoInformation returns the co-information of the variable groups of d:
//
//	I(G₁;…;Gₖ) = −Σ_{∅≠S⊆{1…k}} (−1)^|S| H(∪_{i∈S} Gᵢ)
//
// For two groups it equals their mutual information, and for a single group
// its entropy.
func CoInformation(d *dist.Distribution, groups [][]int, u Unit) (float64, error) {
	if len(groups) == 0 {
		return 0, fmt.Errorf("info.CoInformation: no groups given")
	}
	if len(groups) > 16 {
		return 0, fmt.Errorf("info.CoInformation: %d groups given, at most 16 are supported", len(groups))
	}
	if err := checks.CheckGroups(groups, d.NumVars()); err != nil {
		return 0, fmt.Errorf("info.CoInformation: %w", err)
	}
	var total float64
	for mask := 1; mask < 1<<len(groups); mask++ {
		var union []int
		seen := make(map[int]bool)
		size := 0
		for i, g := range groups {
			if mask&(1<<i) == 0 {
				continue
			}
			size++
			for _, v := range g {
				if !seen[v] {
					seen[v] = true
					union = append(union, v)
				}
			}
		}
		h, err := GroupEntropy(d, union, Nats)
		if err != nil {
			return 0, fmt.Errorf("info.CoInformation: %w", err)
		}
		if size%2 == 1 {
			total += h
		} else {
			total -= h
		}
	}
	return u.FromNats(total), nil
}
