package dhash

// Bases of the two polynomial hashes combined by the probe sequence.
const (
	PrimeA = 151
	PrimeB = 163
)

// polyHash treats key as a base-prime number whose digits are the key's
// bytes and returns it modulo capacity. Horner's rule keeps every
// intermediate value below capacity*prime+255.
func polyHash(key string, prime, capacity int) int {
	var (
		h   uint64
		p   = uint64(prime)
		mod = uint64(capacity)
	)
	for i := 0; i < len(key); i++ {
		h = (h*p + uint64(key[i])) % mod
	}
	return int(h)
}

// probe is the double-hashing sequence of a single key over a table of a
// given capacity. Both hashes are computed once per walk.
type probe struct {
	start    uint64
	step     uint64
	capacity uint64
}

func newProbe(key string, capacity int) probe {
	step := polyHash(key, PrimeB, capacity)
	if step == 0 {
		// a zero step would pin every attempt to the start bucket
		step = 1
	}
	return probe{
		start:    uint64(polyHash(key, PrimeA, capacity)),
		step:     uint64(step),
		capacity: uint64(capacity),
	}
}

// at returns the bucket examined on the given attempt. With a prime
// capacity, attempts 0..capacity-1 visit every bucket exactly once.
func (p probe) at(attempt int) int {
	return int((p.start + uint64(attempt)%p.capacity*p.step) % p.capacity)
}

// probeIndex returns the bucket key lands on at the given attempt.
func probeIndex(key string, capacity, attempt int) int {
	return newProbe(key, capacity).at(attempt)
}
