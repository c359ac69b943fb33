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

// Package pid contains the synergistic-disclosure measure of partial
// information decomposition.
package pid

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/MathisWetterwald/syndisc/checks"
	"github.com/MathisWetterwald/syndisc/disclosure"
	"github.com/MathisWetterwald/syndisc/dist"
	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Antichain is a collection of variable groups, none of which is contained in
// another. Variables are positions in the list of inputs of the measure.
type Antichain [][]int

// String returns the antichain in the usual PID notation, e.g. {0:1}{2}.
func (a Antichain) String() string {
	var b strings.Builder
	for _, g := range a {
		b.WriteByte('{')
		for i, v := range g {
			if i > 0 {
				b.WriteByte(':')
			}
			fmt.Fprint(&b, v)
		}
		b.WriteByte('}')
	}
	if b.Len() == 0 {
		return "{}"
	}
	return b.String()
}

// Node identifies an atom of the synergistic-disclosure decomposition.
//
// Constraints lists the groups of inputs the auxiliary variable must be
// independent of: every group is preserved jointly, as one composite
// variable. Sources lists the source groups of the atom in the decomposition
// lattice; it is validated but does not change the disclosure value.
type Node struct {
	Constraints Antichain
	Sources     Antichain
}

func (n Node) String() string {
	return fmt.Sprintf("(%v, %v)", n.Constraints, n.Sources)
}

// SDBeta is the synergistic-disclosure measure of a fixed joint distribution.
//
// The distribution is only read, so an SDBeta may be shared between
// goroutines as long as its solver is safe for concurrent use.
type SDBeta struct {
	d      *dist.Distribution
	opt    disclosure.Options
	inputs int
}

// New returns the measure for the joint distribution d. The output variables
// and the numerical settings are taken from opt; a nil opt means defaults,
// with the last variable of d as the output.
func New(d *dist.Distribution, opt *disclosure.Options) (*SDBeta, error) {
	if d == nil {
		return nil, fmt.Errorf("pid.New: nil distribution")
	}
	var o disclosure.Options
	if opt != nil {
		o = *opt
		o.Output = append([]int(nil), opt.Output...)
	}
	inputs, err := o.Inputs(d.NumVars())
	if err != nil {
		return nil, fmt.Errorf("pid.New: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("pid.New: distribution has no input variable")
	}
	return &SDBeta{d: d, opt: o, inputs: len(inputs)}, nil
}

// Measure returns the synergistic disclosure of node.
func (s *SDBeta) Measure(node Node) (float64, error) {
	v, _, err := s.Disclosure(node)
	return v, err
}

// Disclosure returns the synergistic disclosure of node together with the
// optimal auxiliary channel.
func (s *SDBeta) Disclosure(node Node) (float64, *disclosure.Channel, error) {
	if err := s.checkNode(node); err != nil {
		return 0, nil, err
	}
	cons := make([][]int, len(node.Constraints))
	for i, g := range node.Constraints {
		cons[i] = append([]int(nil), g...)
	}
	v, ch, err := disclosure.Disclosure(s.d, cons, &s.opt)
	if err != nil {
		return 0, nil, fmt.Errorf("pid: node %v: %w", node, err)
	}
	log.V(1).Infof("pid: node %v has disclosure %g %v", node, v, s.opt.Unit)
	return v, ch, nil
}

func (s *SDBeta) checkNode(node Node) error {
	if err := checks.CheckAntichain(node.Constraints, s.inputs); err != nil {
		return fmt.Errorf("pid: node %v: constraints: %w", node, err)
	}
	if err := checks.CheckAntichain(node.Sources, s.inputs); err != nil {
		return fmt.Errorf("pid: node %v: sources: %w", node, err)
	}
	return nil
}

// MeasureAll returns the measure of every node, in order. Nodes are
// independent and are evaluated concurrently. The first error cancels the
// evaluations that have not started yet.
func (s *SDBeta) MeasureAll(ctx context.Context, nodes []Node) ([]float64, error) {
	values := make([]float64, len(nodes))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			v, err := s.Measure(node)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
