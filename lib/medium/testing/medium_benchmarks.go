package testing

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/ValentinKolb/localdb/lib/medium"
)

// RunMediumBenchmarks runs all benchmarks for a medium implementation
func RunMediumBenchmarks(b *testing.B, name string, factory medium.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, open(b, factory))
		})

		b.Run("SetExisting", func(b *testing.B) {
			benchmarkSetExisting(b, open(b, factory))
		})

		b.Run("SetLargeValue", func(b *testing.B) {
			benchmarkSetLargeValue(b, open(b, factory))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, open(b, factory))
		})

		b.Run("Keys", func(b *testing.B) {
			benchmarkKeys(b, open(b, factory))
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, open(b, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, m medium.IMedium) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetRaw(fmt.Sprintf("key-%d", i), "value")
	}
}

func benchmarkSetExisting(b *testing.B, m medium.IMedium) {
	mustSet(b, m, "existing", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetRaw("existing", "value")
	}
}

func benchmarkSetLargeValue(b *testing.B, m medium.IMedium) {
	large := strings.Repeat("x", 64*1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetRaw(fmt.Sprintf("large-%d", i%100), large)
	}
}

func benchmarkGet(b *testing.B, m medium.IMedium) {
	const keys = 1000
	for i := 0; i < keys; i++ {
		mustSet(b, m, fmt.Sprintf("key-%d", i), "value")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.GetRaw(fmt.Sprintf("key-%d", i%keys))
	}
}

func benchmarkKeys(b *testing.B, m medium.IMedium) {
	for i := 0; i < 1000; i++ {
		mustSet(b, m, fmt.Sprintf("tenant:key-%d", i), "value")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Keys()
	}
}

func benchmarkMixedUsage(b *testing.B, m medium.IMedium) {
	const keys = 100
	rnd := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", rnd.Intn(keys))
		switch op := rnd.Intn(10); {
		case op < 6: // 60% reads
			_, _, _ = m.GetRaw(key)
		case op < 9: // 30% writes
			_ = m.SetRaw(key, "value")
		default: // 10% deletes
			_ = m.RemoveRaw(key)
		}
	}
}
