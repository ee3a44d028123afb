package promise

import (
	"sync"
	"testing"
	"time"
)

func TestBasicCompleteThenWait(t *testing.T) {
	p := New[int]()

	waitDone := make(chan struct{})
	go func() {
		p.Wait()
		close(waitDone)
	}()

	time.Sleep(time.Millisecond * 10)
	p.Set(42)

	<-waitDone

	if v := p.Get(); v != 42 {
		t.Errorf("expected 42, was: %v", v)
	}
	if !p.IsDone() {
		t.Errorf("expected IsDone")
	}
}

func TestListenersFireWithValue(t *testing.T) {
	p := New[int]()

	var lock sync.Mutex
	var got []int

	for range 3 {
		p.IfDone(func(v int) {
			lock.Lock()
			defer lock.Unlock()
			got = append(got, v)
		})
	}

	p.Set(7)

	lock.Lock()
	defer lock.Unlock()
	if len(got) != 3 || got[0] != 7 || got[1] != 7 || got[2] != 7 {
		t.Errorf("expected [7 7 7], was: %+v", got)
	}
}

func TestLateListenerSynchronous(t *testing.T) {
	p := New[string]()
	p.Set("done")

	var got string
	var called bool
	p.IfDone(func(v string) {
		called = true
		got = v
	})

	if !called {
		t.Errorf("expected listener to be invoked synchronously")
	}
	if got != "done" {
		t.Errorf("expected done, was: %v", got)
	}
}

func TestDoubleSetPanics(t *testing.T) {
	p := New[int]()
	p.Set(1)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on second Set")
		}
	}()
	p.Set(2)
}

func TestGetBeforeSecondSetSeesFirstValue(t *testing.T) {
	p := New[int]()
	p.Set(1)

	if v := p.Get(); v != 1 {
		t.Errorf("expected 1, was: %v", v)
	}
}

func TestTimeoutThenComplete(t *testing.T) {
	p := New[int]()

	start := time.Now()
	p.WaitFor(time.Millisecond * 50)
	elapsed := time.Since(start)

	if elapsed < time.Millisecond*50 {
		t.Errorf("expected WaitFor to block at least 50ms, was: %v", elapsed)
	}
	if !p.IsIdle() {
		t.Errorf("expected still idle after timeout")
	}

	p.Set(9)
	if v := p.Get(); v != 9 {
		t.Errorf("expected 9, was: %v", v)
	}
}

func TestCancelRacesWithSet(t *testing.T) {
	for range 50 {
		p := New[int]()

		var wg sync.WaitGroup
		var cancelled, setPanicked bool

		wg.Add(2)
		go func() {
			defer wg.Done()
			cancelled = p.Cancel()
		}()
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					setPanicked = true
				}
			}()
			p.Set(5)
		}()
		wg.Wait()

		switch {
		case p.IsDone():
			if v := p.Get(); v != 5 {
				t.Errorf("expected 5, was: %v", v)
			}
			if cancelled {
				t.Errorf("cancel must not report true if set won")
			}
		case p.IsCancelled():
			if v := p.Get(); v != 0 {
				t.Errorf("expected zero value, was: %v", v)
			}
			if !cancelled {
				t.Errorf("cancel must report true if it won")
			}
			if !setPanicked {
				t.Errorf("set must panic if cancel won")
			}
		default:
			t.Errorf("expected exactly one terminal state")
		}
	}
}

func TestCancelAfterSetReturnsFalse(t *testing.T) {
	p := New[int]()
	p.Set(1)

	if p.Cancel() {
		t.Errorf("cancel must return false once already done")
	}
	if v := p.Get(); v != 1 {
		t.Errorf("expected 1, was: %v", v)
	}
}

func TestWaitForZeroOnIdle(t *testing.T) {
	p := New[int]()
	p.WaitFor(0)
	if !p.IsIdle() {
		t.Errorf("expected still idle")
	}
}

func TestWaitForNegativeDeadline(t *testing.T) {
	p := New[int]()

	done := make(chan struct{})
	go func() {
		p.WaitFor(-time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Errorf("expected WaitFor to return promptly for an already-elapsed deadline")
	}
}

func TestRegistrationOrderPreserved(t *testing.T) {
	p := New[int]()

	var order []string
	p.IfDone(func(int) { order = append(order, "a") })
	p.IfDone(func(int) { order = append(order, "b") })
	p.IfDone(func(int) { order = append(order, "c") })

	p.Set(1)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected [a b c], was: %+v", order)
	}
}

func TestIsDoneIdempotent(t *testing.T) {
	p := New[int]()
	p.Set(1)

	for range 3 {
		if !p.IsDone() {
			t.Errorf("expected IsDone to stay true")
		}
	}
}

func TestPanickingListenerDoesNotDropSiblings(t *testing.T) {
	p := New[int]()

	var secondRan bool
	p.IfDone(func(int) { panic("boom") })
	p.IfDone(func(int) { secondRan = true })

	p.Set(1)

	if !secondRan {
		t.Errorf("expected sibling listener to run despite a panicking listener")
	}
}

func TestCancelInvokesListenersWithZeroValue(t *testing.T) {
	p := New[int]()

	var got int
	var called bool
	p.IfDone(func(v int) {
		called = true
		got = v
	})

	p.Cancel()

	if !called {
		t.Errorf("expected listener to run on cancel")
	}
	if got != 0 {
		t.Errorf("expected zero value, was: %v", got)
	}
}
