package notify

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotifier_SyncDeliveryOrder(t *testing.T) {
	n := New[string]()
	defer n.Close()

	var got []string
	n.Subscribe(func(v string) { got = append(got, "first:"+v) })
	n.Subscribe(func(v string) { got = append(got, "second:"+v) })

	n.Notify("a")
	n.Notify("b")

	want := []string{"first:a", "second:a", "first:b", "second:b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := New[int]()
	defer n.Close()

	count := 0
	sub := n.Subscribe(func(int) { count++ })
	n.Notify(1)
	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Notify(2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}
}

func TestNotifier_ObserverMayUnsubscribeItself(t *testing.T) {
	n := New[int]()
	defer n.Close()

	calls := 0
	var sub *Subscription
	sub = n.Subscribe(func(int) {
		calls++
		sub.Unsubscribe()
	})
	n.Notify(1)
	n.Notify(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNotifier_PanicIsContained(t *testing.T) {
	n := New[int]()
	defer n.Close()

	reached := false
	n.Subscribe(func(int) { panic("boom") })
	n.Subscribe(func(int) { reached = true })
	n.Notify(1)

	if !reached {
		t.Error("observer after a panicking one should still run")
	}
}

func TestNotifier_Async(t *testing.T) {
	n := New[int](WithAsync(8))

	var mu sync.Mutex
	var got []int
	n.Subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		n.Notify(i)
	}
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("async delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_NotifyAfterClose(t *testing.T) {
	n := New[int]()
	called := false
	n.Subscribe(func(int) { called = true })
	n.Close()
	n.Close()
	n.Notify(1)
	if called {
		t.Error("Notify after Close should not deliver")
	}
}
