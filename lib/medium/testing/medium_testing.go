package testing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/localdb/lib/medium"
)

// RunMediumTests runs the conformance test suite for an IMedium implementation.
// The factory must return a fresh, empty medium on every call.
func RunMediumTests(t *testing.T, name string, factory medium.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, open(t, factory))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, open(t, factory))
		})

		t.Run("ClearAll", func(t *testing.T) {
			testClearAll(t, open(t, factory))
		})

		t.Run("KeysOrdered", func(t *testing.T) {
			testKeysOrdered(t, open(t, factory))
		})

		t.Run("Count", func(t *testing.T) {
			testCount(t, open(t, factory))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, open(t, factory))
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, open(t, factory))
		})

		t.Run("ConcurrentWrites", func(t *testing.T) {
			testConcurrentWrites(t, open(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// open creates a medium and fails the test if that is not possible
func open(t testing.TB, factory medium.Factory) medium.IMedium {
	m, err := factory()
	if err != nil {
		t.Fatalf("failed to create medium: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func mustSet(t testing.TB, m medium.IMedium, key, value string) {
	if err := m.SetRaw(key, value); err != nil {
		t.Fatalf("SetRaw(%q) failed: %v", key, err)
	}
}

func mustKeys(t testing.TB, m medium.IMedium) []string {
	keys, err := m.Keys()
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, m medium.IMedium) {
	mustSet(t, m, "test-key", "test-value1")

	value, ok, err := m.GetRaw("test-key")
	if err != nil || !ok {
		t.Fatalf("Expected key to exist after SetRaw, ok=%v err=%v", ok, err)
	}
	if value != "test-value1" {
		t.Errorf("Expected value %q, got %q", "test-value1", value)
	}

	mustSet(t, m, "test-key", "test-value2")
	value, _, _ = m.GetRaw("test-key")
	if value != "test-value2" {
		t.Errorf("Expected overwritten value %q, got %q", "test-value2", value)
	}

	_, ok, err = m.GetRaw("nonexistent-key")
	if err != nil {
		t.Errorf("GetRaw on a missing key must not fail: %v", err)
	}
	if ok {
		t.Errorf("Expected nonexistent key to return loaded=false")
	}
}

func testRemove(t *testing.T, m medium.IMedium) {
	mustSet(t, m, "a", "1")
	mustSet(t, m, "b", "2")

	if err := m.RemoveRaw("a"); err != nil {
		t.Fatalf("RemoveRaw failed: %v", err)
	}
	if _, ok, _ := m.GetRaw("a"); ok {
		t.Errorf("Expected key a to be removed")
	}
	if _, ok, _ := m.GetRaw("b"); !ok {
		t.Errorf("Expected key b to survive removal of a")
	}

	if err := m.RemoveRaw("never-set"); err != nil {
		t.Errorf("Removing a missing key must not fail: %v", err)
	}
}

func testClearAll(t *testing.T, m medium.IMedium) {
	for i := 0; i < 10; i++ {
		mustSet(t, m, fmt.Sprintf("key-%d", i), "v")
	}

	if err := m.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if keys := mustKeys(t, m); len(keys) != 0 {
		t.Errorf("Expected no keys after ClearAll, got %v", keys)
	}

	// the medium is still usable
	mustSet(t, m, "after", "clear")
	if _, ok, _ := m.GetRaw("after"); !ok {
		t.Errorf("Expected medium to accept writes after ClearAll")
	}
}

func testKeysOrdered(t *testing.T, m medium.IMedium) {
	for _, k := range []string{"b", "A:x", "a", "A:a", "@@appId", "c"} {
		mustSet(t, m, k, k)
	}

	want := []string{"@@appId", "A:a", "A:x", "a", "b", "c"}
	got := mustKeys(t, m)

	if len(got) != len(want) {
		t.Fatalf("Expected %d keys, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected key %d to be %q, got %q (all keys: %v)", i, want[i], got[i], got)
		}
	}
}

func testCount(t *testing.T, m medium.IMedium) {
	if n, err := m.Count(); err != nil || n != 0 {
		t.Fatalf("Expected empty medium, got count=%d err=%v", n, err)
	}

	mustSet(t, m, "a", "1")
	mustSet(t, m, "b", "2")
	mustSet(t, m, "a", "3")

	if n, _ := m.Count(); n != 2 {
		t.Errorf("Expected count 2, got %d", n)
	}

	_ = m.RemoveRaw("a")
	if n, _ := m.Count(); n != 1 {
		t.Errorf("Expected count 1 after removal, got %d", n)
	}
}

func testEdgeCases(t *testing.T, m medium.IMedium) {
	// empty value is a legal value
	mustSet(t, m, "empty", "")
	if value, ok, _ := m.GetRaw("empty"); !ok || value != "" {
		t.Errorf("Expected empty value to be stored, ok=%v value=%q", ok, value)
	}

	// empty key
	mustSet(t, m, "", "empty-key")
	if value, ok, _ := m.GetRaw(""); !ok || value != "empty-key" {
		t.Errorf("Expected empty key to be stored, ok=%v value=%q", ok, value)
	}

	// unicode and separators
	key := "tenant:ключ/键 🔑"
	mustSet(t, m, key, "ünïcödé\nmulti\tline")
	if value, _, _ := m.GetRaw(key); value != "ünïcödé\nmulti\tline" {
		t.Errorf("Expected unicode value to round trip, got %q", value)
	}

	// large value
	large := make([]byte, 512*1024)
	for i := range large {
		large[i] = byte('a' + i%26)
	}
	mustSet(t, m, "large", string(large))
	if value, _, _ := m.GetRaw("large"); value != string(large) {
		t.Errorf("Expected large value to round trip (len %d), got len %d", len(large), len(value))
	}
}

func testClose(t *testing.T, m medium.IMedium) {
	mustSet(t, m, "a", "1")

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Closing twice must not fail: %v", err)
	}

	if _, _, err := m.GetRaw("a"); err == nil {
		t.Errorf("Expected GetRaw on a closed medium to fail")
	}
	if err := m.SetRaw("a", "2"); err == nil {
		t.Errorf("Expected SetRaw on a closed medium to fail")
	}
}

func testConcurrentWrites(t *testing.T, m medium.IMedium) {
	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := m.SetRaw(fmt.Sprintf("w%d-%d", w, i), "v"); err != nil {
					t.Errorf("concurrent SetRaw failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n, _ := m.Count(); n != workers*perWorker {
		t.Errorf("Expected %d keys after concurrent writes, got %d", workers*perWorker, n)
	}
}
