package frontier

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFrontier_Add(t *testing.T) {
	t.Run("claims each URL once", func(t *testing.T) {
		f := New()

		if !f.Add("https://example.com/page") {
			t.Fatal("first Add() = false, want true")
		}
		if f.Add("https://example.com/page") {
			t.Error("second Add() = true, want false")
		}
		if f.Added() != 1 {
			t.Errorf("Added() = %d, want 1", f.Added())
		}
	})

	t.Run("concurrent adds admit exactly one", func(t *testing.T) {
		f := New()

		var admitted int32
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if f.Add("https://example.com/contested") {
					atomic.AddInt32(&admitted, 1)
				}
			}()
		}
		wg.Wait()

		if admitted != 1 {
			t.Errorf("admitted = %d, want 1", admitted)
		}
		if f.Added() != 1 {
			t.Errorf("Added() = %d, want 1", f.Added())
		}
	})

	t.Run("rejects after stop", func(t *testing.T) {
		f := New()
		f.Stop()

		if f.Add("https://example.com/late") {
			t.Error("Add() after Stop() = true, want false")
		}
		if f.Claimed("https://example.com/late") {
			t.Error("rejected URL should not be claimed")
		}
	})

	t.Run("pre-claimed URLs are rejected", func(t *testing.T) {
		f := New("https://example.com/old1", "https://example.com/old2")

		if f.Add("https://example.com/old1") {
			t.Error("Add() of pre-claimed URL = true, want false")
		}
		if !f.Claimed("https://example.com/old2") {
			t.Error("Claimed() of pre-claimed URL = false, want true")
		}
		if !f.Add("https://example.com/new") {
			t.Error("Add() of fresh URL = false, want true")
		}
	})
}

func TestFrontier_Next(t *testing.T) {
	t.Run("pops in FIFO order", func(t *testing.T) {
		f := New()
		urls := []string{
			"https://example.com/page1",
			"https://example.com/page2",
			"https://example.com/page3",
		}
		for _, u := range urls {
			f.Add(u)
		}

		for i, want := range urls {
			task, ok := f.Next()
			if !ok {
				t.Fatalf("Next() #%d ok = false, want true", i)
			}
			if task.URL != want {
				t.Errorf("Next() #%d = %s, want %s", i, task.URL, want)
			}
		}
	})

	t.Run("blocks until a task arrives", func(t *testing.T) {
		f := New()

		got := make(chan Task, 1)
		go func() {
			task, ok := f.Next()
			if ok {
				got <- task
			}
		}()

		time.Sleep(20 * time.Millisecond)
		f.Add("https://example.com/page")

		select {
		case task := <-got:
			if task.URL != "https://example.com/page" {
				t.Errorf("Next() = %s, want https://example.com/page", task.URL)
			}
		case <-time.After(time.Second):
			t.Fatal("Next() did not wake after Add()")
		}
	})

	t.Run("returns false once stopped", func(t *testing.T) {
		f := New()

		released := make(chan bool, 3)
		for range 3 {
			go func() {
				_, ok := f.Next()
				released <- ok
			}()
		}

		time.Sleep(20 * time.Millisecond)
		f.Stop()

		for i := range 3 {
			select {
			case ok := <-released:
				if ok {
					t.Errorf("Next() #%d ok = true after Stop(), want false", i)
				}
			case <-time.After(time.Second):
				t.Fatal("Next() still blocked after Stop()")
			}
		}
	})
}

func TestFrontier_Done(t *testing.T) {
	t.Run("stops when the last task completes", func(t *testing.T) {
		f := New()
		f.Add("https://example.com/page1")
		f.Add("https://example.com/page2")

		f.Next()
		f.Next()
		f.Done()
		if f.Stopped() {
			t.Fatal("frontier stopped with a task still in flight")
		}
		f.Done()
		if !f.Stopped() {
			t.Fatal("frontier did not stop after last Done()")
		}
		if f.Processed() != 2 {
			t.Errorf("Processed() = %d, want 2", f.Processed())
		}
	})

	t.Run("in-flight task can still extend the run", func(t *testing.T) {
		f := New()
		f.Add("https://example.com/seed")

		f.Next()
		if !f.Add("https://example.com/child") {
			t.Fatal("Add() during in-flight task = false, want true")
		}
		f.Done()
		if f.Stopped() {
			t.Fatal("frontier stopped with the child still queued")
		}

		f.Next()
		f.Done()
		if !f.Stopped() {
			t.Fatal("frontier did not stop after draining")
		}
	})

	t.Run("releases every blocked consumer", func(t *testing.T) {
		f := New()
		f.Add("https://example.com/only")

		var wg sync.WaitGroup
		var falseCount int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					_, ok := f.Next()
					if !ok {
						atomic.AddInt32(&falseCount, 1)
						return
					}
					f.Done()
				}
			}()
		}
		wg.Wait()

		if falseCount != 5 {
			t.Errorf("workers released = %d, want 5", falseCount)
		}
	})
}

func TestFrontier_StopIfIdle(t *testing.T) {
	t.Run("stops an empty frontier", func(t *testing.T) {
		f := New()
		if !f.StopIfIdle() {
			t.Error("StopIfIdle() on empty frontier = false, want true")
		}
		if !f.Stopped() {
			t.Error("frontier should be stopped")
		}
	})

	t.Run("leaves a busy frontier alone", func(t *testing.T) {
		f := New()
		f.Add("https://example.com/page")

		if f.StopIfIdle() {
			t.Error("StopIfIdle() with queued task = true, want false")
		}
		if f.Stopped() {
			t.Error("frontier should still be running")
		}
	})
}

func TestFrontier_Stop(t *testing.T) {
	f := New()
	for i := range 10 {
		f.Add(fmt.Sprintf("https://example.com/page%d", i))
	}

	f.Stop()
	f.Stop() // idempotent

	if _, ok := f.Next(); ok {
		t.Error("Next() after Stop() ok = true, want false")
	}
	if !f.Claimed("https://example.com/page0") {
		t.Error("Stop() should keep claims")
	}
	if f.Active() != 10 {
		t.Errorf("Active() = %d, want 10 (backlog dropped, not processed)", f.Active())
	}
}

func TestFrontier_Counters(t *testing.T) {
	f := New()
	f.Add("https://example.com/page1")
	f.Add("https://example.com/page2")
	f.Add("https://example.com/page1") // duplicate, not counted

	if f.Added() != 2 {
		t.Errorf("Added() = %d, want 2", f.Added())
	}
	if f.Active() != 2 {
		t.Errorf("Active() = %d, want 2", f.Active())
	}

	f.Next()
	f.Done()

	if f.Processed() != 1 {
		t.Errorf("Processed() = %d, want 1", f.Processed())
	}
	if f.Active() != 1 {
		t.Errorf("Active() = %d, want 1", f.Active())
	}
}
