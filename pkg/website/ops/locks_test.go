package ops

import "testing"

func TestIdentityLocks_TryAcquire(t *testing.T) {
	locks := newIdentityLocks()

	if !locks.tryAcquire("a") {
		t.Fatal("tryAcquire(a) = false, want true")
	}
	if locks.tryAcquire("a") {
		t.Error("tryAcquire(a) while held = true, want false")
	}
	if !locks.tryAcquire("b") {
		t.Error("tryAcquire(b) = false, want true")
	}

	locks.release("a")
	if !locks.tryAcquire("a") {
		t.Error("tryAcquire(a) after release = false, want true")
	}
}

func TestIdentityLocks_AllOrNothing(t *testing.T) {
	locks := newIdentityLocks()

	if !locks.tryAcquire("a") {
		t.Fatal("tryAcquire(a) = false, want true")
	}

	// The pair must fail as a whole and leave "b" unheld.
	if locks.tryAcquire("a", "b") {
		t.Fatal("tryAcquire(a, b) with a held = true, want false")
	}
	if !locks.tryAcquire("b") {
		t.Error("tryAcquire(b) = false, want true; partial acquisition leaked")
	}
}

func TestIdentityLocks_DuplicatesAndEmpty(t *testing.T) {
	locks := newIdentityLocks()

	if !locks.tryAcquire("a", "a", "") {
		t.Fatal("tryAcquire(a, a, \"\") = false, want true")
	}
	locks.release("a", "a", "")
	if !locks.tryAcquire("a") {
		t.Error("tryAcquire(a) after release = false, want true")
	}
}
