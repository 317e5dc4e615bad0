// Package lsh is a banded locality-sensitive hashing index over MinHash
// signatures. It only proposes candidates; callers confirm them.
package lsh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrDuplicateKey   = errors.New("key already indexed")
	ErrSignatureWidth = errors.New("signature length does not match index")
)

const (
	falsePositiveWeight = 0.5
	falseNegativeWeight = 0.5
	integrationSteps    = 200
)

type Index struct {
	Threshold float64
	NumPerm   int
	Bands     int
	Rows      int

	tables []map[string][]string
	keys   map[string]struct{}
}

// New creates an index whose band/row split minimizes the weighted sum of
// false positive and false negative probability mass around threshold.
func New(threshold float64, numPerm int) (*Index, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("lsh threshold must be in (0, 1), got %v", threshold)
	}
	if numPerm < 2 {
		return nil, fmt.Errorf("lsh needs at least 2 permutations, got %d", numPerm)
	}

	b, r := OptimalParams(threshold, numPerm)
	idx := &Index{
		Threshold: threshold,
		NumPerm:   numPerm,
		Bands:     b,
		Rows:      r,
		tables:    make([]map[string][]string, b),
		keys:      make(map[string]struct{}),
	}
	for i := range idx.tables {
		idx.tables[i] = make(map[string][]string)
	}
	return idx, nil
}

func (idx *Index) Insert(key string, sig []uint64) error {
	if len(sig) != idx.NumPerm {
		return fmt.Errorf("%w: got %d, want %d", ErrSignatureWidth, len(sig), idx.NumPerm)
	}
	if _, ok := idx.keys[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	idx.keys[key] = struct{}{}
	for i := range idx.tables {
		h := idx.band(sig, i)
		idx.tables[i][h] = append(idx.tables[i][h], key)
	}
	return nil
}

// Query returns, sorted, every indexed key sharing at least one band with sig.
func (idx *Index) Query(sig []uint64) []string {
	if len(sig) != idx.NumPerm {
		return nil
	}
	found := make(map[string]struct{})
	for i := range idx.tables {
		for _, k := range idx.tables[i][idx.band(sig, i)] {
			found[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for k := range found {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (idx *Index) Len() int {
	return len(idx.keys)
}

func (idx *Index) band(sig []uint64, i int) string {
	buf := make([]byte, 8*idx.Rows)
	for j, v := range sig[i*idx.Rows : (i+1)*idx.Rows] {
		binary.LittleEndian.PutUint64(buf[j*8:], v)
	}
	return string(buf)
}

// OptimalParams searches every (bands, rows) with bands*rows <= numPerm.
func OptimalParams(threshold float64, numPerm int) (int, int) {
	minErr := math.Inf(1)
	bestB, bestR := 1, numPerm
	for b := 1; b <= numPerm; b++ {
		maxR := numPerm / b
		for r := 1; r <= maxR; r++ {
			fp := integrate(func(s float64) float64 {
				return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
			}, 0, threshold)
			fn := integrate(func(s float64) float64 {
				return math.Pow(1-math.Pow(s, float64(r)), float64(b))
			}, threshold, 1)
			e := fp*falsePositiveWeight + fn*falseNegativeWeight
			if e < minErr {
				minErr = e
				bestB, bestR = b, r
			}
		}
	}
	return bestB, bestR
}

// composite Simpson's rule
func integrate(f func(float64) float64, a, b float64) float64 {
	n := integrationSteps
	h := (b - a) / float64(n)
	sum := f(a) + f(b)
	for i := 1; i < n; i++ {
		x := a + float64(i)*h
		if i%2 == 1 {
			sum += 4 * f(x)
		} else {
			sum += 2 * f(x)
		}
	}
	return sum * h / 3
}
