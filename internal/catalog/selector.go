package catalog

import "math/rand/v2"

// Selector picks entries uniformly at random. Calls are independent.
type Selector struct {
	intn func(n int) int
}

func NewSelector() *Selector {
	return &Selector{intn: rand.IntN}
}

// Pick returns a random entry, or ErrEmpty when c has none.
func (s *Selector) Pick(c *Catalog) (Entry, error) {
	n := c.Len()
	if n == 0 {
		return Entry{}, ErrEmpty
	}
	return c.At(s.intn(n)), nil
}
