package count

import "testing"

func TestCounterDefaultZero(t *testing.T) {
	c := New[string]()

	if c.Get("missing") != 0 {
		t.Errorf("Expected 0 for unseen key, got %d", c.Get("missing"))
	}
	if c.Has("missing") {
		t.Error("Unseen key should not be present")
	}
}

func TestCounterIncAndTotal(t *testing.T) {
	c := New[string]()
	c.Inc("a")
	c.Inc("a")
	c.Add("b", 3)

	if c.Get("a") != 2 {
		t.Errorf("Expected count 2 for 'a', got %d", c.Get("a"))
	}
	if c.Total() != 5 {
		t.Errorf("Expected total 5, got %d", c.Total())
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 distinct keys, got %d", c.Len())
	}
}

func TestCounterMostCommonOrder(t *testing.T) {
	c := New[string]()
	c.Add("first", 2)
	c.Add("second", 5)
	c.Add("third", 2)

	entries := c.MostCommon()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Key != "second" {
		t.Errorf("Expected 'second' first, got %q", entries[0].Key)
	}

	// ties keep insertion order
	if entries[1].Key != "first" || entries[2].Key != "third" {
		t.Errorf("Expected tie order [first third], got [%s %s]",
			entries[1].Key, entries[2].Key)
	}
}

func TestCounterKeysInsertionOrder(t *testing.T) {
	c := New[int]()
	for _, k := range []int{7, 3, 9, 3, 7} {
		c.Inc(k)
	}

	keys := c.Keys()
	want := []int{7, 3, 9}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Expected key %d at position %d, got %d", k, i, keys[i])
		}
	}
}
