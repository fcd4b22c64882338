package dhash

// IsPrime reports whether n is prime using trial division by 2, 3 and
// numbers of the form 6k±1 up to the square root of n.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 || n == 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}

	for i := 5; i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// NextPrime returns the smallest prime greater than or equal to x.
// It scans linearly, which is fine since it only runs when a table is built.
func NextPrime(x int) int {
	if x < 2 {
		return 2
	}
	for !IsPrime(x) {
		x++
	}
	return x
}
