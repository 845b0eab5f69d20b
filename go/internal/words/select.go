package words

import (
	"fmt"
	"math/rand/v2"
)

// InsufficientError reports a draw that asked for more words than were available.
type InsufficientError struct {
	Found int
	Need  int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("not enough words available: found %d, need %d", e.Found, e.Need)
}

// Select draws n entries uniformly at random without replacement.
// The input slice is not modified.
func Select(entries []Entry, n int, rng *rand.Rand) ([]Entry, error) {
	if n > len(entries) {
		return nil, &InsufficientError{Found: len(entries), Need: n}
	}
	pool := make([]Entry, len(entries))
	copy(pool, entries)

	// Partial Fisher-Yates: the first n slots end up holding the sample.
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n], nil
}
