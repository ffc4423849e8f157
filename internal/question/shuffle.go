package question

import "sort"

// shuffleOptions permutes options deterministically from the question id, so
// a given question always presents its options in the same order, across
// sessions and across learners, without persisting per-question orderings.
//
// The permutation is a Fisher-Yates shuffle driven by a linear-congruential
// step seeded from the id. It is applied to a sorted copy of the options, not
// the incoming order, which makes normalization idempotent: feeding an
// already-canonical question through again reproduces the same ordering.
func shuffleOptions(id string, options []string) []string {
	shuffled := make([]string, len(options))
	copy(shuffled, options)
	sort.Strings(shuffled)

	seed := seedFromID(id)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := (seed*(i+1)*9301 + 49297) % 233280 * (i + 1) / 233280
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// seedFromID sums the code points of the id.
func seedFromID(id string) int {
	seed := 0
	for _, r := range id {
		seed += int(r)
	}
	return seed
}
