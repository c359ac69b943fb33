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

// Package disttestutils provides distributions and comparison helpers shared
// by the tests of this module.
//
// This package is not optimized for performance or speed and is only intended
// to be used in tests.
package disttestutils

import (
	"math"

	"github.com/MathisWetterwald/syndisc/dist"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Tolerance is the absolute tolerance used to compare information values.
const Tolerance = 1e-6

// ApproxEqual reports whether x and y are equal within Tolerance.
func ApproxEqual(x, y float64) bool {
	return cmp.Equal(x, y, cmpopts.EquateApprox(0, Tolerance))
}

// MustNew is dist.New for fixtures known to be valid.
func MustNew(outcomes []string, pmf []float64) *dist.Distribution {
	d, err := dist.New(outcomes, pmf)
	if err != nil {
		panic(err)
	}
	return d
}

// MustUniform is dist.Uniform for fixtures known to be valid.
func MustUniform(outcomes []string) *dist.Distribution {
	d, err := dist.Uniform(outcomes)
	if err != nil {
		panic(err)
	}
	return d
}

// Xor returns the distribution of two independent fair bits and their XOR.
func Xor() *dist.Distribution {
	return MustUniform([]string{"000", "011", "101", "110"})
}

// TernaryXor returns the distribution of two independent uniform trits and
// their sum modulo 3.
func TernaryXor() *dist.Distribution {
	return MustUniform([]string{"000", "011", "022", "101", "112", "120", "202", "210", "221"})
}

// Random returns a random distribution over n variables with k outcomes
// each.
func Random(n, k int) *dist.Distribution {
	d, err := dist.Random(n, k)
	if err != nil {
		panic(err)
	}
	return d
}

// IndependentInputs returns a distribution of three binary variables whose
// first two variables are independent fair bits, and whose third variable
// depends on them through the conditional distribution of the third variable
// of r given the first two.
func IndependentInputs(r *dist.Distribution) *dist.Distribution {
	_, pYgX, err := r.ConditionOn([]int{0, 1}, []int{2}, 0)
	if err != nil {
		panic(err)
	}
	u, err := dist.UniformDistribution(2, 2)
	if err != nil {
		panic(err)
	}
	d, err := dist.JoinFactors(u, pYgX, 0)
	if err != nil {
		panic(err)
	}
	return d
}

// SampleMean returns the mean of a slice, calculated as the average over the
// values in the slice.
func SampleMean(values []float64) float64 {
	var sum float64 = 0.0
	for _, v := range values {
		sum += v
	}
	return sum / math.Max(1, float64(len(values)))
}

// SampleVariance returns the variance of a slice, calculated as the average
// squared deviation from the sample mean.
func SampleVariance(values []float64) float64 {
	mean := SampleMean(values)
	var sumOfSquares float64 = 0.0
	for _, v := range values {
		sumOfSquares += math.Pow(v-mean, 2)
	}
	return sumOfSquares / math.Max(1, float64(len(values)))
}
