package firmware

import "math/rand"

// BootSeed is the constant the generator is first seeded with.
const BootSeed int64 = 100

// DeadSeed reproduces the boot-time generator dance: seed with seed,
// reseed with the first draw mod 16, then draw once more mod 16. The
// result is stored by the loop and never read; it has no effect on output.
func DeadSeed(seed int64) uint8 {
	r := rand.New(rand.NewSource(seed))
	r = rand.New(rand.NewSource(int64(r.Int() % 16)))
	return uint8(r.Int() % 16)
}
