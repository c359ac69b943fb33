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

package pid

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/MathisWetterwald/syndisc/disclosure"
	"github.com/MathisWetterwald/syndisc/dist"
	"github.com/MathisWetterwald/syndisc/disttestutils"
	"github.com/MathisWetterwald/syndisc/info"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

var (
	unconstrained = Node{}
	fullJoint     = Node{Constraints: Antichain{{0, 1}}, Sources: Antichain{{0}}}
	synergy       = Node{Constraints: Antichain{{0}, {1}}}
)

func mustNew(t *testing.T, d *dist.Distribution, opt *disclosure.Options) *SDBeta {
	t.Helper()
	s, err := New(d, opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustMeasure(t *testing.T, s *SDBeta, node Node) float64 {
	t.Helper()
	v, err := s.Measure(node)
	if err != nil {
		t.Fatalf("Measure(%v): %v", node, err)
	}
	return v
}

func TestUnconstrainedIsMutualInformation(t *testing.T) {
	for i := 0; i < 5; i++ {
		d := disttestutils.Random(3, 2)
		want, err := info.CoInformation(d, [][]int{{0, 1}, {2}}, info.Bits)
		if err != nil {
			t.Fatalf("CoInformation: %v", err)
		}
		if got := mustMeasure(t, mustNew(t, d, nil), unconstrained); !disttestutils.ApproxEqual(got, want) {
			t.Errorf("Measure(%v) of %v = %v, want I(X0,X1;Y) = %v", unconstrained, d, got, want)
		}
	}
}

func TestFullJointConstraintIsZero(t *testing.T) {
	for i := 0; i < 5; i++ {
		d := disttestutils.Random(3, 2)
		if got := mustMeasure(t, mustNew(t, d, nil), fullJoint); !disttestutils.ApproxEqual(got, 0) {
			t.Errorf("Measure(%v) of %v = %v, want 0", fullJoint, d, got)
		}
	}
}

func TestCoalescingInvariance(t *testing.T) {
	d := disttestutils.Random(4, 2)
	c, err := d.Coalesce([][]int{{0, 1}, {2}, {3}})
	if err != nil {
		t.Fatalf("Coalesce: %v", err)
	}
	want := mustMeasure(t, mustNew(t, d, nil), Node{Constraints: Antichain{{0, 1}, {2}}})
	got := mustMeasure(t, mustNew(t, c, nil), Node{Constraints: Antichain{{0}, {1}}})
	if !disttestutils.ApproxEqual(got, want) {
		t.Errorf("Measure on the coalesced distribution = %v, want %v", got, want)
	}
}

func TestClosedForms(t *testing.T) {
	for _, tc := range []struct {
		desc string
		d    *dist.Distribution
		node Node
		want float64
	}{
		{"xor synergy", disttestutils.Xor(), synergy, 1},
		{"xor mutual information", disttestutils.Xor(), unconstrained, 1},
		{"xor full joint", disttestutils.Xor(), fullJoint, 0},
		{"independent variables", disttestutils.MustUniform([]string{"000", "001", "010", "011", "100", "101", "110", "111"}), synergy, 0},
		{"ternary independent variables", mustUniformCube(t, 3, 3), synergy, 0},
		{"ternary xor synergy", disttestutils.TernaryXor(), synergy, math.Log2(3)},
	} {
		if got := mustMeasure(t, mustNew(t, tc.d, nil), tc.node); !disttestutils.ApproxEqual(got, tc.want) {
			t.Errorf("Measure(%s, %v) = %v, want %v", tc.desc, tc.node, got, tc.want)
		}
	}
}

func mustUniformCube(t *testing.T, n, k int) *dist.Distribution {
	t.Helper()
	d, err := dist.UniformDistribution(n, k)
	if err != nil {
		t.Fatalf("UniformDistribution(%d, %d): %v", n, k, err)
	}
	return d
}

func TestTernaryXorCoInformation(t *testing.T) {
	d := disttestutils.TernaryXor()
	for _, tc := range []struct {
		groups [][]int
		want   float64
	}{
		{[][]int{{0}, {2}}, 0},
		{[][]int{{1}, {2}}, 0},
		{[][]int{{0, 1}, {2}}, math.Log2(3)},
	} {
		got, err := info.CoInformation(d, tc.groups, info.Bits)
		if err != nil {
			t.Fatalf("CoInformation(%v): %v", tc.groups, err)
		}
		if !disttestutils.ApproxEqual(got, tc.want) {
			t.Errorf("CoInformation(%v) = %v, want %v", tc.groups, got, tc.want)
		}
	}
	if got := mustMeasure(t, mustNew(t, d, nil), synergy); !disttestutils.ApproxEqual(got, math.Log2(3)) {
		t.Errorf("Measure(%v) = %v, want log2(3)", synergy, got)
	}
}

func TestChannelRecovery(t *testing.T) {
	d := disttestutils.IndependentInputs(disttestutils.Random(3, 2))
	s, ch, err := mustNew(t, d, nil).Disclosure(synergy)
	if err != nil {
		t.Fatalf("Disclosure: %v", err)
	}
	want := mat.NewDense(2, 4, []float64{
		1, 0, 0, 1,
		0, 1, 1, 0,
	})
	if !mat.EqualApprox(ch.PUgX, want, 1e-9) {
		t.Errorf("PUgX: got\n%v\nwant the XOR of the inputs\n%v", mat.Formatted(ch.PUgX), mat.Formatted(want))
	}

	// I(U;Y) computed from p(u,x,y) = p(u|x) p(x,y).
	pxy, err := d.Coalesce([][]int{{0, 1}, {2}})
	if err != nil {
		t.Fatalf("Coalesce: %v", err)
	}
	k, nx := ch.PUgX.Dims()
	ny := pxy.Shape()[1]
	pmf := make([]float64, k*nx*ny)
	for u := 0; u < k; u++ {
		for x := 0; x < nx; x++ {
			for y := 0; y < ny; y++ {
				pmf[(u*nx+x)*ny+y] = ch.PUgX.At(u, x) * pxy.Prob([]int{x, y})
			}
		}
	}
	joint, err := dist.NewDense([]int{k, nx, ny}, pmf)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	mi, err := info.MutualInformation(joint, []int{0}, []int{2}, info.Bits)
	if err != nil {
		t.Fatalf("MutualInformation: %v", err)
	}
	if !disttestutils.ApproxEqual(s, mi) {
		t.Errorf("Disclosure = %v, want I(U;Y) = %v", s, mi)
	}

	// The recovered channel is the XOR of the inputs, so S is also I(X0⊕X1;Y).
	xd, err := d.InsertRVF(func(o []int) int { return o[0] ^ o[1] }, 2)
	if err != nil {
		t.Fatalf("InsertRVF: %v", err)
	}
	mi, err = info.MutualInformation(xd, []int{3}, []int{2}, info.Bits)
	if err != nil {
		t.Fatalf("MutualInformation: %v", err)
	}
	if !disttestutils.ApproxEqual(s, mi) {
		t.Errorf("Disclosure = %v, want I(X0 xor X1;Y) = %v", s, mi)
	}
}

func TestMeasureIsDeterministic(t *testing.T) {
	m := mustNew(t, disttestutils.Random(3, 3), nil)
	var values []float64
	for i := 0; i < 10; i++ {
		values = append(values, mustMeasure(t, m, synergy))
	}
	for i, v := range values {
		if v != values[0] {
			t.Errorf("Measure run %d = %v, want %v as in the first run", i, v, values[0])
		}
	}
	if got := disttestutils.SampleVariance(values); got != 0 {
		t.Errorf("Measure: got sample variance %v over repeated runs, want 0", got)
	}
}

func TestMeasureAll(t *testing.T) {
	m := mustNew(t, disttestutils.Xor(), nil)
	nodes := []Node{synergy, unconstrained, fullJoint, {Constraints: Antichain{{0}}}}
	got, err := m.MeasureAll(context.Background(), nodes)
	if err != nil {
		t.Fatalf("MeasureAll: %v", err)
	}
	want := []float64{1, 1, 0, 1}
	if diff := cmp.Diff(want, got, cmp.Comparer(disttestutils.ApproxEqual)); diff != "" {
		t.Errorf("MeasureAll: diff (-want +got):\n%s", diff)
	}

	if _, err := m.MeasureAll(context.Background(), append(nodes, Node{Constraints: Antichain{{0}, {0, 1}}})); err == nil {
		t.Errorf("MeasureAll with a malformed node: got nil error, want error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.MeasureAll(ctx, nodes); !errors.Is(err, context.Canceled) {
		t.Errorf("MeasureAll with a canceled context: got err %v, want context.Canceled", err)
	}
}

func TestMalformedNodes(t *testing.T) {
	m := mustNew(t, disttestutils.Xor(), nil)
	for _, tc := range []struct {
		desc string
		node Node
	}{
		{"constraints not an antichain", Node{Constraints: Antichain{{0}, {0, 1}}}},
		{"constraint on the output", Node{Constraints: Antichain{{2}}}},
		{"negative variable", Node{Constraints: Antichain{{-1}}}},
		{"empty group", Node{Constraints: Antichain{{}}}},
		{"sources out of range", Node{Sources: Antichain{{5}}}},
		{"sources not an antichain", Node{Sources: Antichain{{1}, {1}}}},
	} {
		if _, err := m.Measure(tc.node); err == nil {
			t.Errorf("Measure: when %s got nil error, want error", tc.desc)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Errorf("New(nil): got nil error, want error")
	}
	if _, err := New(disttestutils.Xor(), &disclosure.Options{Output: []int{0, 1, 2}}); err == nil {
		t.Errorf("New without inputs: got nil error, want error")
	}
	if _, err := New(disttestutils.Xor(), &disclosure.Options{Output: []int{3}}); err == nil {
		t.Errorf("New with an out-of-range output: got nil error, want error")
	}
}

func TestOutputOption(t *testing.T) {
	// X0 XOR X1 = X2 is symmetric in its three variables, so every variable
	// can be the output and node positions follow the remaining inputs.
	for output := 0; output < 3; output++ {
		m := mustNew(t, disttestutils.Xor(), &disclosure.Options{Output: []int{output}, Unit: info.Nats})
		for _, tc := range []struct {
			node Node
			want float64
		}{
			{unconstrained, math.Ln2},
			{synergy, math.Ln2},
			{fullJoint, 0},
		} {
			if got := mustMeasure(t, m, tc.node); !disttestutils.ApproxEqual(got, tc.want) {
				t.Errorf("Measure(%v) with output %d = %v, want %v", tc.node, output, got, tc.want)
			}
		}
	}
}

func parity(outcome []int) int {
	p := 0
	for _, o := range outcome {
		p ^= o
	}
	return p
}

func TestNBitXor(t *testing.T) {
	for n := 2; n <= 5; n++ {
		if n == 5 && testing.Short() {
			t.Skip("skipping the 5-bit XOR in short mode")
		}
		u, err := dist.UniformDistribution(n, 2)
		if err != nil {
			t.Fatalf("UniformDistribution(%d, 2): %v", n, err)
		}
		d, err := u.InsertRVF(parity, 2)
		if err != nil {
			t.Fatalf("InsertRVF: %v", err)
		}
		node := Node{Constraints: make(Antichain, n)}
		for i := range node.Constraints {
			node.Constraints[i] = []int{i}
		}
		if got := mustMeasure(t, mustNew(t, d, nil), node); !disttestutils.ApproxEqual(got, 1) {
			t.Errorf("Measure(%v) of the %d-bit XOR = %v, want 1", node, n, got)
		}
	}
}

func TestString(t *testing.T) {
	for _, tc := range []struct {
		node Node
		want string
	}{
		{Node{}, "({}, {})"},
		{synergy, "({0}{1}, {})"},
		{Node{Constraints: Antichain{{0, 1}, {2}}, Sources: Antichain{{0}}}, "({0:1}{2}, {0})"},
	} {
		if got := tc.node.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
