package trial

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewRand returns a random source for shuffling and the seed it was built
// from. A zero seed draws a fresh one from crypto/rand; the returned seed
// is recorded with the session so the order can be reproduced.
func NewRand(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			return nil, 0, fmt.Errorf("read random seed: %w", err)
		}
		seed = int64(binary.LittleEndian.Uint64(b[:]))
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
