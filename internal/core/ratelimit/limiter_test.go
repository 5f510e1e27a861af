package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestLimiter_FirstRequestAdmitted(t *testing.T) {
	l := New(5, 60*time.Second)

	ok, retry := l.Admit(42, time.Now())
	if !ok {
		t.Fatalf("expected first request to be admitted")
	}
	if retry != 0 {
		t.Errorf("expected zero retryAfter on admit, got %v", retry)
	}
}

func TestLimiter_DeniesOverLimit(t *testing.T) {
	l := New(5, 60*time.Second)
	now := time.Now()

	for i := 0; i < 5; i++ {
		ok, _ := l.Admit(7, now.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("request %d unexpectedly denied", i+1)
		}
	}

	ok, retry := l.Admit(7, now.Add(5*time.Second))
	if ok {
		t.Fatalf("expected 6th request within window to be denied")
	}
	if retry <= 0 {
		t.Errorf("expected positive retryAfter, got %v", retry)
	}
	// oldest admission was at now, so the wait is window - 5s + 1s padding.
	if want := 56 * time.Second; retry != want {
		t.Errorf("expected retryAfter %v, got %v", want, retry)
	}
}

func TestLimiter_AdmitsAfterWindowExpires(t *testing.T) {
	l := New(2, 60*time.Second)
	now := time.Now()

	l.Admit(7, now)
	l.Admit(7, now.Add(time.Second))

	ok, retry := l.Admit(7, now.Add(2*time.Second))
	if ok {
		t.Fatalf("expected denial while window is full")
	}

	// After waiting retryAfter the oldest timestamp has left the window.
	ok, _ = l.Admit(7, now.Add(2*time.Second).Add(retry))
	if !ok {
		t.Fatalf("expected admission after waiting retryAfter")
	}
}

func TestLimiter_ActorsIndependent(t *testing.T) {
	l := New(1, 60*time.Second)
	now := time.Now()

	if ok, _ := l.Admit(1, now); !ok {
		t.Fatalf("actor 1 first request denied")
	}
	if ok, _ := l.Admit(2, now); !ok {
		t.Fatalf("actor 2 should not be affected by actor 1's history")
	}
	if ok, _ := l.Admit(1, now); ok {
		t.Fatalf("actor 1 second request should be denied")
	}
}

func TestLimiter_ZeroLimitDeniesEverything(t *testing.T) {
	l := New(0, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		ok, retry := l.Admit(7, now.Add(time.Duration(i)*time.Second))
		if ok {
			t.Fatalf("request %d admitted despite zero limit", i+1)
		}
		if want := time.Minute + time.Second; retry != want {
			t.Errorf("expected full-window retryAfter %v, got %v", want, retry)
		}
	}
}

func TestLimiter_ConcurrentSameActor(t *testing.T) {
	l := New(50, time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Admit(9, now); ok {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != 50 {
		t.Fatalf("expected exactly 50 admissions under concurrency, got %d", count)
	}
}
