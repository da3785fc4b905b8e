package canvas

import "testing"

func TestTicker_AddAndTick(t *testing.T) {
	tk := NewTicker()
	var got []float64
	tk.Add(func(d float64) { got = append(got, d) })

	tk.Tick(16.7)

	if len(got) != 1 || got[0] != 16.7 {
		t.Errorf("tick deltas = %v, want [16.7]", got)
	}
}

func TestTicker_Remove(t *testing.T) {
	tk := NewTicker()
	calls := 0
	id := tk.Add(func(d float64) { calls++ })

	tk.Tick(16)
	tk.Remove(id)
	tk.Tick(16)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if tk.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tk.Len())
	}
}

func TestTicker_SelfRemovalDuringTick(t *testing.T) {
	tk := NewTicker()
	calls := 0
	var id int
	id = tk.Add(func(d float64) {
		calls++
		tk.Remove(id)
	})

	tk.Tick(16)
	tk.Tick(16)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTicker_RemovalOfLaterEntryDuringTick(t *testing.T) {
	tk := NewTicker()
	secondCalls := 0
	var secondID int
	tk.Add(func(d float64) { tk.Remove(secondID) })
	secondID = tk.Add(func(d float64) { secondCalls++ })

	tk.Tick(16)

	if secondCalls != 0 {
		t.Errorf("removed entry ran %d times, want 0", secondCalls)
	}
}

func TestTicker_OrderFollowsRegistration(t *testing.T) {
	tk := NewTicker()
	var order []int
	tk.Add(func(d float64) { order = append(order, 1) })
	tk.Add(func(d float64) { order = append(order, 2) })
	tk.Add(func(d float64) { order = append(order, 3) })

	tk.Tick(16)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}
