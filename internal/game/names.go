package game

import "math/rand"

// fillNames is the pool of handles assigned to programmatic players.
var fillNames = []string{
	"Blaze", "Bolt", "Comet", "Dart",
	"Flash", "Gale", "Jet", "Nimbus",
	"Quicksilver", "Rocket", "Sprint", "Streak",
	"Swift", "Tempest", "Whirl", "Zephyr",
}

// drawFillNames picks n distinct names from the pool, skipping any
// already taken. Draw order is random.
func drawFillNames(rng *rand.Rand, n int, taken map[string]bool) []string {
	pool := make([]string, 0, len(fillNames))
	for _, name := range fillNames {
		if !taken[name] {
			pool = append(pool, name)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
