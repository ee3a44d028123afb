package netconn

import "testing"

func TestInFlightResolvesFIFO(t *testing.T) {
	f := NewInFlight[int]()

	p1 := f.Push()
	p2 := f.Push()
	p3 := f.Push()

	if !f.Resolve(1) {
		t.Errorf("expected a pending entry")
	}
	if !f.Resolve(2) {
		t.Errorf("expected a pending entry")
	}
	if !f.Resolve(3) {
		t.Errorf("expected a pending entry")
	}

	if v := p1.Get(); v != 1 {
		t.Errorf("expected p1=1, was: %v", v)
	}
	if v := p2.Get(); v != 2 {
		t.Errorf("expected p2=2, was: %v", v)
	}
	if v := p3.Get(); v != 3 {
		t.Errorf("expected p3=3, was: %v", v)
	}
}

func TestInFlightResolveWithNothingPending(t *testing.T) {
	f := NewInFlight[int]()
	if f.Resolve(1) {
		t.Errorf("expected no pending entry")
	}
}

func TestInFlightCancelAll(t *testing.T) {
	f := NewInFlight[int]()

	p1 := f.Push()
	p2 := f.Push()

	f.CancelAll()

	p1.Wait()
	p2.Wait()
	if !p1.IsCancelled() || !p2.IsCancelled() {
		t.Errorf("expected both cancelled")
	}
	if f.Len() != 0 {
		t.Errorf("expected empty after CancelAll")
	}
}
