package dhash_test

import (
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/theflywheel/dhash"
	"github.com/theflywheel/dhash/internal/wordgen"
)

func words(n, minLen, maxLen int) []string {
	gen := wordgen.New("bench")
	out := make([]string, n)
	for i := range out {
		out[i] = gen.Word(minLen, maxLen)
	}
	return out
}

func BenchmarkInsert(b *testing.B) {
	keys := words(10_000, 12, 50)
	b.ReportAllocs()
	b.ResetTimer()

	tbl := dhash.MustNew()
	for i := 0; i < b.N; i++ {
		if i%len(keys) == 0 && i > 0 {
			b.StopTimer()
			tbl.Destroy()
			tbl = dhash.MustNew()
			b.StartTimer()
		}
		k := keys[i%len(keys)]
		tbl.Insert(k, k)
	}
}

func BenchmarkSearch(b *testing.B) {
	keys := words(10_000, 12, 50)
	tbl := dhash.MustNew()
	for _, k := range keys {
		tbl.Insert(k, k)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, ok := tbl.Search(keys[(i*31+17)%len(keys)]); !ok {
			b.Fatal("key not found")
		}
	}
}

func BenchmarkSearchMiss(b *testing.B) {
	keys := words(10_000, 12, 50)
	misses := words(1_000, 51, 60)
	tbl := dhash.MustNew()
	for _, k := range keys {
		tbl.Insert(k, k)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tbl.Search(misses[i%len(misses)])
	}
}

func BenchmarkDeleteReinsert(b *testing.B) {
	keys := words(10_000, 12, 50)
	tbl := dhash.MustNew()
	for _, k := range keys {
		tbl.Insert(k, k)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		k := keys[i%len(keys)]
		tbl.Delete(k)
		tbl.Insert(k, k)
	}
}

// BenchmarkHundredThousandWords measures a full fill, lookup and drain cycle
// over one hundred thousand random words, reporting per phase rates and the
// peak bytes held by the table.
func BenchmarkHundredThousandWords(b *testing.B) {
	const numKeys = 100_000
	keys := words(numKeys, 12, 50)
	runtime.GC()

	for n := 0; n < b.N; n++ {
		alloc := dhash.NewBudgetAllocator(math.MaxInt64, nil)
		tbl := dhash.MustNew(dhash.WithAllocator(alloc))

		writeStart := time.Now()
		for _, k := range keys {
			tbl.Insert(k, k)
		}
		writeTime := time.Since(writeStart)

		readStart := time.Now()
		for _, k := range keys {
			if v, ok := tbl.Search(k); !ok || v != k {
				b.Fatalf("lookup of %q failed", k)
			}
		}
		readTime := time.Since(readStart)

		stats := tbl.Stats()
		deleteStart := time.Now()
		for _, k := range keys {
			tbl.Delete(k)
		}
		deleteTime := time.Since(deleteStart)

		b.ReportMetric(float64(numKeys)/writeTime.Seconds(), "inserts/s")
		b.ReportMetric(float64(numKeys)/readTime.Seconds(), "lookups/s")
		b.ReportMetric(float64(numKeys)/deleteTime.Seconds(), "deletes/s")
		b.ReportMetric(float64(alloc.Peak())/numKeys, "peak-bytes/key")
		if n == 0 {
			b.Logf("filled to %d buckets after %d resizes, final %+v",
				stats.Capacity, stats.Resizes, tbl.Stats())
		}
		tbl.Destroy()
	}
}
