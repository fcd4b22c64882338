// Package wordgen produces random lowercase words for driving a table.
package wordgen

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/frand"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Generator returns random words. A Generator is not safe for concurrent use.
type Generator struct {
	rng *frand.RNG
}

// New returns a generator. An empty seed draws from the system entropy
// source; any other seed yields the same words on every run.
func New(seed string) *Generator {
	if seed == "" {
		return &Generator{rng: frand.New()}
	}
	return &Generator{rng: frand.NewCustom(expandSeed(seed), 1024, 12)}
}

// expandSeed stretches seed into the 32 bytes frand needs by hashing it
// with four different suffixes.
func expandSeed(seed string) []byte {
	out := make([]byte, 32)
	d := xxhash.New()
	for i := 0; i < 4; i++ {
		d.Reset()
		_, _ = d.WriteString(seed)
		_, _ = d.Write([]byte{byte(i)})
		binary.LittleEndian.PutUint64(out[i*8:], d.Sum64())
	}
	return out
}

// Word returns a word of minLen to maxLen letters, both inclusive.
func (g *Generator) Word(minLen, maxLen int) string {
	n := minLen
	if maxLen > minLen {
		n += g.rng.Intn(maxLen - minLen + 1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(b)
}

// Intn returns a uniform integer in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// Shuffle pseudo-randomly permutes n elements using swap.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.rng.Shuffle(n, swap)
}
