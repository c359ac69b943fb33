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

// Package rand provides the randomness used to draw random probability
// distributions.
//
// Random distributions are used to exercise disclosure invariants over many
// inputs, so the samples come from a cryptographically seeded buffered source
// shared by the whole process.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"sync"

	log "github.com/golang/glog"
)

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)
)

func readRandBuf(b []byte) (int, error) {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	return io.ReadFull(randBuf, b)
}

// U64 returns a uniformly random uint64.
func U64() uint64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// U8 returns a uniformly random uint8.
func U8() uint8 {
	var r [1]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return r[0]
}

// Uniform returns a uniformly random float64 in the open interval (0, 1).
//
// Every float64 in the interval can be returned: the mantissa is drawn
// uniformly and the exponent geometrically, so small values keep full
// precision. Zero is excluded since the output is fed into a logarithm.
func Uniform() float64 {
	i := U64() % (1 << 53)
	r := (1 + float64(i)/(1<<53)) / math.Pow(2, Geometric())
	if r == 0 {
		return 1
	}
	return r
}

// Geometric returns a sample from a geometric distribution with success
// probability 1/2, counting trials (so the smallest value is 1).
func Geometric() float64 {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var r uint8
	for r == 0 {
		r = U8()
		b += bits.LeadingZeros8(r)
	}
	return float64(b)
}

// Exponential returns a sample from the exponential distribution with rate 1.
func Exponential() float64 {
	return -math.Log(Uniform())
}

// Simplex returns a point drawn uniformly from the (n-1)-dimensional
// probability simplex, i.e. a sample of the flat Dirichlet distribution of
// order n. Every entry is strictly positive and the entries sum to 1.
func Simplex(n int) []float64 {
	p := make([]float64, n)
	var sum float64
	for i := range p {
		p[i] = Exponential()
		sum += p[i]
	}
	for i := range p {
		p[i] /= sum
	}
	return p
}
