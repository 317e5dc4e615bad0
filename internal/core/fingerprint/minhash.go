package fingerprint

import (
	"math/bits"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

const (
	mersennePrime uint64 = (1 << 61) - 1
	maxHash       uint64 = (1 << 32) - 1

	DefaultNumPerm     = 128
	DefaultSeed        = 1
	DefaultShingleSize = 3
)

// MinHasher produces fixed-length MinHash signatures. Two hashers with the
// same NumPerm and Seed produce identical signatures for the same text.
type MinHasher struct {
	NumPerm     int
	Seed        int64
	ShingleSize int

	a []uint64
	b []uint64
}

func NewMinHasher(numPerm int, seed int64) *MinHasher {
	if numPerm <= 0 {
		numPerm = DefaultNumPerm
	}
	r := rand.New(rand.NewSource(seed))
	m := &MinHasher{
		NumPerm:     numPerm,
		Seed:        seed,
		ShingleSize: DefaultShingleSize,
		a:           make([]uint64, numPerm),
		b:           make([]uint64, numPerm),
	}
	for i := 0; i < numPerm; i++ {
		m.a[i] = uint64(r.Int63n(int64(mersennePrime-1))) + 1
		m.b[i] = uint64(r.Int63n(int64(mersennePrime)))
	}
	return m
}

// Signature min-hashes the word shingles of text. Text without any shingle
// is treated as a single empty shingle.
func (m *MinHasher) Signature(text string) []uint64 {
	sig := make([]uint64, m.NumPerm)
	for i := range sig {
		sig[i] = maxHash
	}

	shingles := Shingles(text, m.ShingleSize)
	if len(shingles) == 0 {
		m.update(sig, "")
		return sig
	}
	for _, sh := range shingles {
		m.update(sig, sh)
	}
	return sig
}

func (m *MinHasher) update(sig []uint64, shingle string) {
	hv := xxhash.Sum64String(shingle) & maxHash
	for i := range sig {
		// (a*hv + b) mod p in 128-bit arithmetic
		hi, lo := bits.Mul64(m.a[i], hv)
		var carry uint64
		lo, carry = bits.Add64(lo, m.b[i], 0)
		hi += carry
		phv := bits.Rem64(hi, lo, mersennePrime) & maxHash
		if phv < sig[i] {
			sig[i] = phv
		}
	}
}

// Jaccard estimates the Jaccard similarity of the shingle sets behind two
// signatures of equal length.
func Jaccard(a, b []uint64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	eq := 0
	for i := range a {
		if a[i] == b[i] {
			eq++
		}
	}
	return float64(eq) / float64(len(a))
}
