// Package tinymt implements the modified TinyMT32 generator used to roll
// Timeless Jewel transformations.
//
// The game keeps a five word state: word 0 is a call counter and words 1..4
// hold the generator state proper. Initialization, state transition and
// tempering differ from RFC 8682 and must be reproduced bit for bit, so every
// operation here works on uint32 with wraparound and no step is reordered.
package tinymt

const (
	init0 = 0x40336050
	init1 = 0xCFA3723C
	init2 = 0x3CAC5F6F
	init3 = 0x3793FDFF

	mat1 = 0x8F7011EE
	mat2 = 0xFC78FF1F
	tmat = 0x3793FDFF

	lowMask = 0x7FFFFFFF

	alphaRounds = 5
	bravoRounds = 4
	warmUp      = 8
)

// Generator is a single, independently seeded generator instance.
// It is not safe for concurrent use; create one per goroutine.
type Generator struct {
	state [5]uint32
}

// New returns a generator seeded with the pair the game uses for jewels:
// the passive node's graph id and the jewel seed.
func New(seedA, seedB uint32) *Generator {
	return NewFromSeeds(seedA, seedB)
}

// NewFromSeeds seeds a generator from any number of 32-bit words.
func NewFromSeeds(seeds ...uint32) *Generator {
	g := &Generator{}
	g.initialize(seeds)
	return g
}

func mixAlpha(v uint32) uint32 {
	return (v ^ (v >> 27)) * 0x19660D
}

func mixBravo(v uint32) uint32 {
	return (v ^ (v >> 27)) * 0x5D588B65
}

// slot maps a rotating 4-cycle index onto state words 1..4.
func slot(i uint32) int {
	return int(i%4) + 1
}

func (g *Generator) initialize(seeds []uint32) {
	g.state = [5]uint32{0, init0, init1, init2, init3}
	s := &g.state

	index := uint32(1)
	for _, seed := range seeds {
		round := mixAlpha(s[slot(index)] ^ s[slot(index+1)] ^ s[slot(index+3)])
		s[slot(index+1)] += round
		round += seed + index
		s[slot(index+2)] += round
		s[slot(index)] = round
		index = (index + 1) % 4
	}

	for i := 0; i < alphaRounds; i++ {
		round := mixAlpha(s[slot(index)] ^ s[slot(index+1)] ^ s[slot(index+3)])
		s[slot(index+1)] += round
		round += index
		s[slot(index+2)] += round
		s[slot(index)] = round
		index = (index + 1) % 4
	}

	for i := 0; i < bravoRounds; i++ {
		round := mixBravo(s[slot(index)] + s[slot(index+1)] + s[slot(index+3)])
		s[slot(index+1)] ^= round
		round -= index
		s[slot(index+2)] ^= round
		s[slot(index)] = round
		index = (index + 1) % 4
	}

	for i := 0; i < warmUp; i++ {
		g.advance()
	}
}

// advance is the only state transition; every other method reads state.
func (g *Generator) advance() {
	s := &g.state

	a := s[4]
	b := (s[1] & lowMask) ^ s[2] ^ s[3]

	a ^= a << 1
	b ^= (b >> 1) ^ a

	s[1] = s[2]
	s[2] = s[3]
	s[3] = a ^ (b << 10)
	s[4] = b

	if b&1 == 1 {
		s[2] ^= mat1
		s[3] ^= mat2
	}
	s[0]++
}

func (g *Generator) temper() uint32 {
	a := g.state[4]
	b := g.state[1] + (g.state[3] >> 8)
	a ^= b
	if b&1 == 1 {
		a ^= tmat
	}
	return a
}

// NextU32 advances the state and returns the tempered output.
func (g *Generator) NextU32() uint32 {
	g.advance()
	return g.temper()
}

// NextFloat01 returns a value in [0, 1).
func (g *Generator) NextFloat01() float64 {
	return float64(g.NextU32()) / 4294967296.0
}

// NextBounded returns a value in [0, exclusiveMax).
//
// The loop shape mirrors the game's Generate(exclusiveMaximumValue): bits are
// accumulated by doubling until the internal bound covers exclusiveMax-1,
// biased samples are rejected, and the survivor is reduced modulo
// exclusiveMax. With 32-bit words the accumulation collapses to a single draw,
// which is exactly what the game does as well.
func (g *Generator) NextBounded(exclusiveMax uint32) uint32 {
	if exclusiveMax <= 1 {
		return 0
	}

	maxValue := exclusiveMax - 1
	var bound, value uint32
	for {
		for {
			value = g.NextU32() | (2 * (value << 31))
			bound = 0xFFFFFFFF | (2 * (bound << 31))
			if bound >= maxValue {
				break
			}
		}
		if !(value/exclusiveMax >= bound && bound%exclusiveMax != maxValue) {
			break
		}
	}
	return value % exclusiveMax
}

// NextInRange returns a value in the inclusive range [lo, hi], using the
// game's signed offset arithmetic for Generate(minimum, maximum).
func (g *Generator) NextInRange(lo, hi uint32) uint32 {
	a := lo + 0x80000000
	b := hi + 0x80000000
	span := b - a + 1
	var roll uint32
	if span == 0 {
		// The full 32-bit range does not fit in an exclusive bound.
		roll = g.NextU32()
	} else {
		roll = g.NextBounded(span)
	}
	return roll + a + 0x80000000
}

// State returns a copy of the internal words: counter first, then state 1..4.
func (g *Generator) State() [5]uint32 {
	return g.state
}
