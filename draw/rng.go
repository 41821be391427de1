package draw

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the shuffle randomness so tests can pin a seed.
type RandomSource interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
}

type cryptoSeededRNG struct {
	r *rand.Rand
}

func (c *cryptoSeededRNG) IntN(n int) int { return c.r.IntN(n) }

// DefaultRNG returns a PCG source seeded from crypto/rand. Falls back to
// the runtime's global source if the system entropy read fails.
func DefaultRNG() RandomSource {
	var buf [16]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return globalRNG{}
	}
	seed1 := binary.BigEndian.Uint64(buf[:8])
	seed2 := binary.BigEndian.Uint64(buf[8:])
	return &cryptoSeededRNG{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSeededRNG returns a reproducible source for tests.
func NewSeededRNG(seed uint64) RandomSource {
	return &cryptoSeededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int { return rand.IntN(n) }
