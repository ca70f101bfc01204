package eval

import (
	"strconv"
	"strings"
)

// counter is a multiset of string keys.
type counter map[string]int

// intersect returns the per-key minimum of two counters (clipped counts).
func (c counter) intersect(other counter) counter {
	out := make(counter)
	for key, n := range c {
		if m, ok := other[key]; ok {
			if m < n {
				n = m
			}
			out[key] = n
		}
	}
	return out
}

// merge folds other into c, keeping the per-key maximum. Distinct from
// intersect: BLEU reference merging takes the highest count any single
// reference attains, not a sum.
func (c counter) merge(other counter) {
	for key, n := range other {
		if n > c[key] {
			c[key] = n
		}
	}
}

// total returns the multiset size, counting multiplicity.
func (c counter) total() int {
	sum := 0
	for _, n := range c {
		sum += n
	}
	return sum
}

func countTokens(tokens []string) counter {
	c := make(counter, len(tokens))
	for _, t := range tokens {
		c[t]++
	}
	return c
}

// ngramSep joins tokens inside an n-gram key. The unit separator cannot occur
// in normalized tokens.
const ngramSep = "\x1f"

// ngramCounts counts every contiguous n-gram of order 1..maxOrder in tokens.
// Keys embed the order so clipped matches can be bucketed per order.
func ngramCounts(tokens []string, maxOrder int) counter {
	c := make(counter)
	for order := 1; order <= maxOrder; order++ {
		for i := 0; i+order <= len(tokens); i++ {
			key := strconv.Itoa(order) + ngramSep + strings.Join(tokens[i:i+order], ngramSep)
			c[key]++
		}
	}
	return c
}

// ngramOrder recovers the order encoded in an n-gram key.
func ngramOrder(key string) int {
	order, _ := strconv.Atoi(key[:strings.Index(key, ngramSep)])
	return order
}
