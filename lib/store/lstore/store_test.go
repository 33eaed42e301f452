package lstore

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

// TestSetGet tests that a value written with Set can be read back, regardless of prior state
func TestSetGet(t *testing.T) {
	s := NewLocalStore()

	for _, value := range []string{"first", "second", "with spaces in it", "ünïcödé"} {
		if err := s.Set("key", value); err != nil {
			t.Fatalf("Set() returned error: %v", err)
		}

		got, ok, err := s.Get("key")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !ok || got != value {
			t.Errorf("Get() = (%q, %v), want (%q, true)", got, ok, value)
		}
	}
}

// TestGetMissing tests that reading an absent key reports not found
func TestGetMissing(t *testing.T) {
	s := NewLocalStore()

	got, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if ok || got != "" {
		t.Errorf("Get() = (%q, %v), want (\"\", false)", got, ok)
	}
}

// TestDelete tests that Delete returns the previous value once and removes the key
func TestDelete(t *testing.T) {
	s := NewLocalStore()
	_ = s.Set("foo", "bar")

	value, ok, err := s.Delete("foo")
	if err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if !ok || value != "bar" {
		t.Errorf("Delete() = (%q, %v), want (\"bar\", true)", value, ok)
	}

	if _, ok, _ := s.Get("foo"); ok {
		t.Errorf("Get() after Delete() found the key")
	}

	value, ok, _ = s.Delete("foo")
	if ok || value != "" {
		t.Errorf("second Delete() = (%q, %v), want (\"\", false)", value, ok)
	}
}

// TestExistsMatchesGet tests that Exists reports exactly what Get reports
func TestExistsMatchesGet(t *testing.T) {
	s := NewLocalStore()

	check := func(key string) {
		t.Helper()
		_, loaded, _ := s.Get(key)
		exists, _ := s.Exists(key)
		if exists != loaded {
			t.Errorf("Exists(%q) = %v, Get found = %v", key, exists, loaded)
		}
	}

	check("a")
	_ = s.Set("a", "1")
	check("a")
	_ = s.Set("a", "2")
	check("a")
	_, _, _ = s.Delete("a")
	check("a")
}

// TestKeysCompleteness tests that Keys returns exactly the present keys, each once
func TestKeysCompleteness(t *testing.T) {
	s := NewLocalStore()

	keys, _ := s.Keys()
	if len(keys) != 0 {
		t.Fatalf("Keys() on empty store = %v, want empty", keys)
	}

	_ = s.Set("a", "1")
	_ = s.Set("b", "2")
	_ = s.Set("c", "3")
	_ = s.Set("a", "4")
	_, _, _ = s.Delete("b")
	_, _, _ = s.Delete("missing")

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys() returned error: %v", err)
	}
	sort.Strings(keys)

	want := []string{"a", "c"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

// TestConcurrentDistinctKeys tests that concurrent writes to distinct keys all persist
func TestConcurrentDistinctKeys(t *testing.T) {
	s := NewLocalStore()

	const numWriters = 100
	var wg sync.WaitGroup
	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < numWriters; i++ {
		value, ok, _ := s.Get(fmt.Sprintf("key-%d", i))
		if !ok || value != fmt.Sprintf("value-%d", i) {
			t.Errorf("key-%d = (%q, %v)", i, value, ok)
		}
	}

	keys, _ := s.Keys()
	if len(keys) != numWriters {
		t.Errorf("Keys() returned %d keys, want %d", len(keys), numWriters)
	}
}

// TestConcurrentSameKey tests that concurrent writes to one key leave exactly one of the written values
func TestConcurrentSameKey(t *testing.T) {
	s := NewLocalStore()

	const numWriters = 100
	attempted := make(map[string]bool, numWriters)
	for i := 0; i < numWriters; i++ {
		attempted[fmt.Sprintf("value-%d", i)] = true
	}

	var wg sync.WaitGroup
	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set("shared", fmt.Sprintf("value-%d", i))
		}(i)
	}
	wg.Wait()

	value, ok, _ := s.Get("shared")
	if !ok {
		t.Fatalf("shared key missing after concurrent writes")
	}
	if !attempted[value] {
		t.Errorf("shared key holds %q which was never written", value)
	}

	keys, _ := s.Keys()
	if len(keys) != 1 {
		t.Errorf("Keys() = %v, want exactly one key", keys)
	}
}

// TestConcurrentMixedOperations runs readers and writers in parallel (meant for -race)
func TestConcurrentMixedOperations(t *testing.T) {
	s := NewLocalStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%10)
				switch (g + i) % 5 {
				case 0:
					_ = s.Set(key, fmt.Sprintf("v%d", i))
				case 1:
					_, _, _ = s.Get(key)
				case 2:
					_, _, _ = s.Delete(key)
				case 3:
					_, _ = s.Exists(key)
				case 4:
					_, _ = s.Keys()
				}
			}
		}(g)
	}
	wg.Wait()

	keys, _ := s.Keys()
	for _, k := range keys {
		if ok, _ := s.Exists(k); !ok {
			t.Errorf("key %q listed by Keys() but Exists() is false", k)
		}
	}
}
