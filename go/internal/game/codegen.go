package game

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// CodeAlphabet omits I, O, 0 and 1.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// CodeGenerator produces candidate room codes. The registry checks uniqueness.
type CodeGenerator interface {
	Generate() string
}

// RandomCodeGenerator draws codes uniformly from CodeAlphabet.
type RandomCodeGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomCodeGenerator creates a generator; a nil rng seeds a fresh one.
func NewRandomCodeGenerator(rng *rand.Rand) *RandomCodeGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomCodeGenerator{rng: rng}
}

func (g *RandomCodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[g.rng.IntN(len(CodeAlphabet))])
	}
	return b.String()
}

// NormalizeCode trims and upper-cases a client-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
