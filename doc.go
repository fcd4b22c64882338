/*
Package dhash provides an in-memory string to string hash table using open
addressing with double hashing.

Table owns copies of every key and value it stores. Buckets are addressed by
two polynomial string hashes: the first picks the starting bucket and the
second the stride, so keys that collide on their first bucket still follow
different probe paths.

Basic usage:

	import "github.com/theflywheel/dhash"

	tbl := dhash.MustNew()
	defer tbl.Destroy()

	tbl.Insert("js", "1995")
	tbl.Insert("py", "1991")

	if year, ok := tbl.Search("js"); ok {
		fmt.Println("js:", year)
	}

	tbl.Delete("py")

Features:

  - Arbitrary string keys and values, including empty strings
  - Prime bucket counts so every probe sequence visits every bucket
  - Tombstone deletion that keeps later entries on a probe path reachable
  - Automatic growing at 70% load and shrinking below 10%, tunable with Policy
  - Pluggable Allocator, including a byte budgeted one that treats exhaustion
    as fatal
  - Observer hooks for resize and probe length events

Implementation Details:

For a key k and capacity c, attempt i probes bucket

	(h(k, 151, c) + i*(h(k, 163, c) + 1)) mod c

where h is a Horner evaluation of the key bytes in the given base. A stride
that reduces to zero is replaced by one. Capacity is always the smallest
prime at or above the base size, which makes the first c attempts a
permutation of all buckets.

A rebuild allocates a fresh bucket array at the new base size, moves every
live entry into it through the same probe walk and drops tombstones. The new
array replaces the old one only after every entry has been placed.

A Table is not safe for concurrent use. Callers sharing one across goroutines
must serialise all method calls themselves.
*/
package dhash
