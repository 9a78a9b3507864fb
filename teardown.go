package vkb

// destructor is one named step in a teardown walk.
type destructor struct {
	name string
	fn   func()
}

// teardownList is an explicit destructor list. Steps are added in creation
// order and executed in reverse, so teardown order is stated once and does
// not depend on struct field order.
type teardownList struct {
	items []destructor
}

func (t *teardownList) add(name string, fn func()) {
	t.items = append(t.items, destructor{name: name, fn: fn})
}

// run executes the destructors in reverse add order and returns the names
// in execution order.
func (t *teardownList) run() []string {
	order := make([]string, 0, len(t.items))
	for i := len(t.items) - 1; i >= 0; i-- {
		t.items[i].fn()
		order = append(order, t.items[i].name)
	}
	t.items = nil
	return order
}
