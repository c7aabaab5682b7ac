package sim

import (
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// RNG is the randomness the speed model draws from
type RNG interface {
	Float64() float64
}

// NewRNG returns a PCG-backed generator derived from the engine seed and the
// vehicle id, so each vehicle's stream does not depend on which other vehicles run.
func NewRNG(seed int64, vehicleID string) RNG {
	h := fnv.New64a()
	_, _ = h.Write([]byte(vehicleID))
	return rand.New(rand.NewSource(uint64(seed) ^ h.Sum64()))
}
